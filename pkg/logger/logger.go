package logger

import (
	"log"
	"os"
	"path/filepath"
)

const logFile = "agrigeo.log"

// Setup configures the std logger. Outside prod it writes to stdout; in prod
// it appends to <dir>/agrigeo.log, falling back to stdout when the file
// cannot be opened. The returned func closes the file.
func Setup(env, dir string) func() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	if env != "prod" {
		log.SetOutput(os.Stdout)
		return func() {}
	}

	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.SetOutput(os.Stdout)
		log.Printf("[logger] failed to create log dir, fallback to stdout: %v", err)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(dir, logFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.SetOutput(os.Stdout)
		log.Printf("[logger] failed to open log file, fallback to stdout: %v", err)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stdout)
		_ = f.Close()
	}
}
