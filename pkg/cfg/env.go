package cfg

import (
	"os"
	"strings"
)

// String returns the trimmed env value for key, or def when unset or blank.
func String(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}
