package telemetry

import (
	"log/slog"
	"os"
)

// InitLogger устанавливает глобальный slog-логгер с JSON-выводом
func InitLogger() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
