package port

import (
	"context"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
)

// Detector is the external detection collaborator. Detections come back
// without timestamps; the aggregator stamps them with the frame's offset.
// Stateless and synchronous per call.
type Detector interface {
	Detect(ctx context.Context, frame entity.Frame) ([]entity.Detection, error)
}
