package logger

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_ProdWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	cleanup := Setup("prod", dir)
	log.Printf("[agrigeo] hello from test")
	cleanup()

	b, err := os.ReadFile(filepath.Join(dir, logFile))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "hello from test") {
		t.Fatalf("log file missing line: %q", string(b))
	}
}

func TestSetup_DevUsesStdout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	cleanup := Setup("dev", dir)
	defer cleanup()

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("dev setup created log dir: %v", err)
	}
}
