package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/esscera_store/internal/events"
	"github.com/Skotchmaster/esscera_store/internal/logging"
)

const publishTimeout = 5 * time.Second

// publish never fails the caller; lost events are only logged.
func publish(ctx context.Context, p events.Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("publish_event_error", "topic", topic, "key", key, "error", err)
	}
}
