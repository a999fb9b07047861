package ports

import (
	"context"

	"github.com/webx403/webx403-go/core"
)

// EventPublisher publishes authentication decisions to downstream consumers
type EventPublisher interface {
	PublishAuthEvent(ctx context.Context, event core.AuthEvent) error
}
