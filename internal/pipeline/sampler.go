package pipeline

import (
	"context"
	"fmt"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/port"
)

// SampledFrame pairs a decoded frame with its offset into the video.
type SampledFrame struct {
	Frame entity.Frame
	// Timestamp = frame index / fps, in seconds.
	Timestamp float64
}

// SampledStream is a lazy, finite sequence of sampled frames. Next returns
// io.EOF once the underlying source is exhausted.
type SampledStream interface {
	Next(ctx context.Context) (SampledFrame, error)
}

// Sampler pulls frames from a video source and emits every Nth one, where N
// is the skip cadence. Skipped frames are decoded and dropped immediately,
// never buffered. For a source with a known frame count the sampler emits
// exactly ceil(frameCount/skip) frames, always starting at index 0.
type Sampler struct {
	src  port.VideoSource
	skip int
	fps  float64
}

func NewSampler(src port.VideoSource, skip int) (*Sampler, error) {
	if skip < 1 {
		return nil, fmt.Errorf("sampler skip must be >= 1, got %d", skip)
	}
	meta := src.Metadata()
	if meta.FPS <= 0 {
		return nil, fmt.Errorf("sampler requires positive fps, got %g", meta.FPS)
	}
	return &Sampler{src: src, skip: skip, fps: meta.FPS}, nil
}

// Next returns the next sampled frame. Frames whose index is not a multiple
// of the skip cadence are discarded on the spot.
func (s *Sampler) Next(ctx context.Context) (SampledFrame, error) {
	for {
		frame, err := s.src.Next(ctx)
		if err != nil {
			return SampledFrame{}, err
		}
		if frame.Index%s.skip != 0 {
			continue
		}
		return SampledFrame{
			Frame:     frame,
			Timestamp: float64(frame.Index) / s.fps,
		}, nil
	}
}

// SampleCount is the number of frames a full pass over frameCount frames
// yields at the given cadence.
func SampleCount(frameCount, skip int) int {
	if frameCount <= 0 || skip < 1 {
		return 0
	}
	return (frameCount + skip - 1) / skip
}
