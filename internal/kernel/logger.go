package kernel

import (
	"log"
	"os"
)

// Logger is the kernel's minimal diagnostic sink. The teacher's own
// components log via the stdlib log package and fmt.Fprintf(os.Stderr, ...)
// rather than a structured logging library; Logger keeps that same shape
// but as an interface so tests can capture output instead of writing to
// stderr.
type Logger interface {
	Printf(format string, args ...any)
}

// StdLogger writes through a *log.Logger, the teacher's default.
type StdLogger struct {
	l *log.Logger
}

// NewStdLogger returns a Logger writing to stderr with a "minikernel: "
// prefix, mirroring the teacher's printk-style diagnostics.
func NewStdLogger() StdLogger {
	return StdLogger{l: log.New(os.Stderr, "minikernel: ", log.LstdFlags)}
}

func (s StdLogger) Printf(format string, args ...any) {
	s.l.Printf(format, args...)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// printk is the HAL-facing diagnostic hook (§6); it routes through the
// configured Logger instead of writing straight to a console.
func (k *Kernel) printk(format string, args ...any) {
	k.log.Printf(format, args...)
}
