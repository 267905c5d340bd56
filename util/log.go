package util

import (
	"errors"
	"log/slog"
)

// LogLevel selects the level to log the operation result with: the errors listed as expected
// are the client's problem and logged as warnings.
func LogLevel(err error, expected ...error) (lvl slog.Level) {
	switch {
	case err == nil:
		lvl = slog.LevelInfo
	default:
		lvl = slog.LevelError
		for _, e := range expected {
			if errors.Is(err, e) {
				lvl = slog.LevelWarn
				break
			}
		}
	}
	return
}
