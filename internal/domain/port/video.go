package port

import (
	"context"
	"errors"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
)

var (
	// ErrUnsupportedSource is returned when a video file is missing,
	// corrupt, or not a container the decoder understands.
	ErrUnsupportedSource = errors.New("unsupported video source")

	// ErrOutOfRange is returned by Seek for a frame index at or beyond the
	// source's frame count.
	ErrOutOfRange = errors.New("frame index out of range")
)

// VideoSource exposes a decoded video: its metadata and a lazy, finite,
// non-restartable stream of frames in strictly increasing index order.
type VideoSource interface {
	Metadata() entity.VideoMetadata

	// Next blocks for the next decoded frame. It returns io.EOF once the
	// stream is exhausted, after which the decoder is released. A cancelled
	// context surfaces as the context error.
	Next(ctx context.Context) (entity.Frame, error)

	// Seek positions the stream at the given frame index, so that the next
	// call to Next returns it.
	Seek(frameIndex int) error

	// Close releases the decoder deterministically. Safe to call more than
	// once and after exhaustion.
	Close() error
}

// VideoOpener opens a video container from a local path.
type VideoOpener interface {
	Open(ctx context.Context, path string) (VideoSource, error)
}
