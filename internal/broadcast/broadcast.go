// Package broadcast emits document change notifications to integration
// subscribers. Delivery is fire-and-forget, at-least-once; the default
// implementation records events on the structured log, where an outbox
// relay can pick them up.
package broadcast

import (
	"context"
	"log/slog"

	caseSvc "casedocs/internal/domain/services/casework"
)

// LogBroadcaster implements the Broadcaster interface by writing one
// structured log entry per event. Consumers tail the log stream; a
// dropped entry is re-emitted on the caller's retry, never deduplicated
// here.
type LogBroadcaster struct {
	logger *slog.Logger
}

// NewLogBroadcaster creates a log-backed broadcaster.
func NewLogBroadcaster(logger *slog.Logger) *LogBroadcaster {
	return &LogBroadcaster{logger: logger}
}

// BroadcastDocument emits one document change event.
func (b *LogBroadcaster) BroadcastDocument(ctx context.Context, guid string, version int, eventType caseSvc.BroadcastEventType) {
	b.logger.Info("document broadcast",
		"guid", guid,
		"version", version,
		"event_type", string(eventType),
	)
}
