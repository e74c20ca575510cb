package port

import (
	"context"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
)

type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg []byte) error
}

type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg []byte, reason string) error
}

// HeartbeatPublisher forwards pipeline progress to the heartbeat topic.
// Implementations must be cheap; the pipeline drops heartbeats rather than
// block on them.
type HeartbeatPublisher interface {
	PublishHeartbeat(ctx context.Context, hb entity.Heartbeat) error
}
