// Package notifier delivers human-readable trade notifications.
package notifier

import (
	"context"

	"go.uber.org/zap"
)

// Notifier sends a best-effort message for an account. Delivery failures
// are logged by implementations and never propagated: notification problems
// must not affect trading state.
type Notifier interface {
	Notify(ctx context.Context, accountID, message string)
}

// LogNotifier writes notifications to the log. Used when no chat channel is
// configured.
type LogNotifier struct {
	l *zap.Logger
}

// NewLogNotifier returns a log-backed notifier.
func NewLogNotifier(l *zap.Logger) *LogNotifier {
	return &LogNotifier{l: l}
}

// Notify logs the message.
func (n *LogNotifier) Notify(_ context.Context, accountID, message string) {
	n.l.Info("notification", zap.String("account", accountID), zap.String("message", message))
}
