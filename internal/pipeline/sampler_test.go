package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/port"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory port.VideoSource producing frameCount tiny
// frames at the given rate.
type fakeSource struct {
	meta   entity.VideoMetadata
	next   int
	closed bool
}

func newFakeSource(frameCount int, fps float64) *fakeSource {
	return &fakeSource{
		meta: entity.VideoMetadata{
			FPS:        fps,
			FrameCount: frameCount,
			Width:      4,
			Height:     2,
			Duration:   float64(frameCount) / fps,
		},
	}
}

func (s *fakeSource) Metadata() entity.VideoMetadata { return s.meta }

func (s *fakeSource) Next(ctx context.Context) (entity.Frame, error) {
	if err := ctx.Err(); err != nil {
		return entity.Frame{}, err
	}
	if s.closed || s.next >= s.meta.FrameCount {
		s.closed = true
		return entity.Frame{}, io.EOF
	}
	f := entity.Frame{
		Index:  s.next,
		Width:  s.meta.Width,
		Height: s.meta.Height,
		Data:   make([]byte, s.meta.Width*s.meta.Height*3),
	}
	s.next++
	return f, nil
}

func (s *fakeSource) Seek(frameIndex int) error {
	if frameIndex < 0 || frameIndex >= s.meta.FrameCount {
		return port.ErrOutOfRange
	}
	s.next = frameIndex
	return nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

func drainSampler(t *testing.T, s *pipeline.Sampler) []pipeline.SampledFrame {
	t.Helper()
	var out []pipeline.SampledFrame
	for {
		sf, err := s.Next(context.Background())
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, sf)
	}
}

func TestSamplerCadence(t *testing.T) {
	src := newFakeSource(300, 30)
	s, err := pipeline.NewSampler(src, 5)
	require.NoError(t, err)

	sampled := drainSampler(t, s)
	require.Len(t, sampled, 60)

	for i, sf := range sampled {
		assert.Equal(t, i*5, sf.Frame.Index)
		assert.InDelta(t, float64(i*5)/30.0, sf.Timestamp, 1e-9)
	}
	assert.Equal(t, 295, sampled[len(sampled)-1].Frame.Index)
	assert.InDelta(t, 9.8333, sampled[len(sampled)-1].Timestamp, 0.001)
}

func TestSamplerSkipLargerThanFrameCount(t *testing.T) {
	src := newFakeSource(10, 25)
	s, err := pipeline.NewSampler(src, 100)
	require.NoError(t, err)

	sampled := drainSampler(t, s)
	require.Len(t, sampled, 1)
	assert.Equal(t, 0, sampled[0].Frame.Index)
	assert.Equal(t, 0.0, sampled[0].Timestamp)
}

func TestSamplerEmptySource(t *testing.T) {
	s, err := pipeline.NewSampler(newFakeSource(0, 30), 3)
	require.NoError(t, err)

	_, err = s.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestSamplerEmissionCount(t *testing.T) {
	cases := []struct {
		frameCount, skip, want int
	}{
		{0, 1, 0},
		{1, 1, 1},
		{10, 1, 10},
		{10, 3, 4},
		{10, 10, 1},
		{10, 11, 1},
		{300, 5, 60},
		{7, 2, 4},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("n%d_skip%d", tc.frameCount, tc.skip), func(t *testing.T) {
			s, err := pipeline.NewSampler(newFakeSource(tc.frameCount, 30), tc.skip)
			require.NoError(t, err)
			assert.Len(t, drainSampler(t, s), tc.want)
			assert.Equal(t, tc.want, pipeline.SampleCount(tc.frameCount, tc.skip))
		})
	}
}

func TestSamplerDeterministic(t *testing.T) {
	indices := func() []int {
		s, err := pipeline.NewSampler(newFakeSource(47, 24), 7)
		require.NoError(t, err)
		var out []int
		for _, sf := range drainSampler(t, s) {
			out = append(out, sf.Frame.Index)
		}
		return out
	}

	assert.Equal(t, indices(), indices())
}

func TestSamplerRejectsBadSkip(t *testing.T) {
	_, err := pipeline.NewSampler(newFakeSource(10, 30), 0)
	assert.Error(t, err)

	_, err = pipeline.NewSampler(newFakeSource(10, 30), -3)
	assert.Error(t, err)
}

func TestSamplerRejectsZeroFPS(t *testing.T) {
	_, err := pipeline.NewSampler(newFakeSource(10, 0), 1)
	assert.Error(t, err)
}
