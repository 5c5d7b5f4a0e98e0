package thread

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("component", "thread")

// SetLogger replaces the logger used by role loops.
func SetLogger(l *slog.Logger) {
	logger = l.With("component", "thread")
}
