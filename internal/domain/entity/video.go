package entity

import "fmt"

// VideoMetadata describes a video container as reported by the decoder.
// Immutable once computed on source open.
type VideoMetadata struct {
	FPS        float64
	FrameCount int
	Width      int
	Height     int
	// Duration in seconds, frame_count/fps.
	Duration float64
}

func (m VideoMetadata) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// Frame is one decoded raster image plus its ordinal index within the
// source. The buffer is owned by the consumer only for the duration of the
// detection call and must not be retained afterwards.
type Frame struct {
	Index  int
	Width  int
	Height int
	// Data is packed RGB24, Width*Height*3 bytes.
	Data []byte
}
