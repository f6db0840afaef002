package daemon

import (
	"context"
	"log/slog"
)

// LogNotifier surfaces distraction alerts through the structured log. Desktop
// notification transports can replace it without touching the tracker.
type LogNotifier struct{}

// Notify implements aggregate.Notifier.
func (LogNotifier) Notify(ctx context.Context, title, message string) error {
	slog.Info("notification", "title", title, "message", message)
	return nil
}
