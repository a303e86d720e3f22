package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Device records the device name under the key "device".
func Device(name string) slog.Attr {
	return slog.String("device", name)
}

// Dialect records the dialect under the key "os_type".
func Dialect(name string) slog.Attr {
	return slog.String("os_type", name)
}

// RunID records the indexing run identifier under the key "run_id".
func RunID(id string) slog.Attr {
	return slog.String("run_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
