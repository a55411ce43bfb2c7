package middleware

import (
	"io"
	"log/slog"
)

// discardLogger returns a logger that writes nowhere, for middleware tests
// that need a non-nil logger
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
