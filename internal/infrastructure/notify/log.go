package notify

import (
	"log/slog"

	"github.com/omarkov/insight-session/internal/core/ports"
)

// LogNotifier surfaces transient user-facing messages through the structured
// log. Command surfaces that have a richer channel can wrap or replace it.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("channel", "notification")}
}

func (n *LogNotifier) Notify(level ports.NotifyLevel, message string) {
	switch level {
	case ports.NotifyError:
		n.logger.Error(message)
	case ports.NotifyWarn:
		n.logger.Warn(message)
	default:
		n.logger.Info(message)
	}
}
