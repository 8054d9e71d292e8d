package platform

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/nats-io/nats-server/v2/server"
)

// InitLogger installs the global slog JSON logger writing to w.
func InitLogger(w io.Writer, cfg *LogConfig) {
	level, _ := ParseLevel(cfg.Level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: cfg.AddSource, Level: level})
	slog.SetDefault(slog.New(handler))
}

// natsLoggerAdapter implements nats-server Logger interface using slog.
type natsLoggerAdapter struct {
	logger *slog.Logger
}

func NewNATSServerLogger(logger *slog.Logger) server.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &natsLoggerAdapter{logger: logger.With("component", "nats")}
}

// Logger interface V2 methods
func (nl *natsLoggerAdapter) Noticef(format string, v ...interface{}) {
	nl.logger.Debug(fmt.Sprintf(format, v...))
}
func (nl *natsLoggerAdapter) Warnf(format string, v ...interface{}) {
	nl.logger.Warn(fmt.Sprintf(format, v...))
}
func (nl *natsLoggerAdapter) Errorf(format string, v ...interface{}) {
	nl.logger.Error(fmt.Sprintf(format, v...))
}
func (nl *natsLoggerAdapter) Fatalf(format string, v ...interface{}) {
	nl.logger.Error("NATS FATAL: " + fmt.Sprintf(format, v...))
}
func (nl *natsLoggerAdapter) Debugf(format string, v ...interface{}) {
	nl.logger.Debug(fmt.Sprintf(format, v...))
}
func (nl *natsLoggerAdapter) Tracef(format string, v ...interface{}) {
	nl.logger.Debug("NATS TRACE: " + fmt.Sprintf(format, v...))
}
