package ffmpeg

import (
	"context"
	"testing"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeOutput(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "audio", "sample_rate": "48000"},
			{"codec_type": "video", "width": 1280, "height": 720,
			 "r_frame_rate": "30/1", "nb_frames": "300", "duration": "10.000000"}
		]
	}`)

	meta, err := parseProbeOutput(data)
	require.NoError(t, err)
	assert.Equal(t, 30.0, meta.FPS)
	assert.Equal(t, 300, meta.FrameCount)
	assert.Equal(t, 1280, meta.Width)
	assert.Equal(t, 720, meta.Height)
	assert.InDelta(t, 10.0, meta.Duration, 1e-9)
	assert.Equal(t, "1280x720", meta.Resolution())
}

func TestParseProbeOutputDerivesFrameCount(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "video", "width": 640, "height": 480,
			 "r_frame_rate": "25/1", "duration": "4.2"}
		]
	}`)

	meta, err := parseProbeOutput(data)
	require.NoError(t, err)
	assert.Equal(t, 105, meta.FrameCount)
}

func TestParseProbeOutputNoVideoStream(t *testing.T) {
	data := []byte(`{"streams": [{"codec_type": "audio"}]}`)
	_, err := parseProbeOutput(data)
	assert.Error(t, err)
}

func TestParseProbeOutputBadDimensions(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "video", "width": 0, "height": 720,
			 "r_frame_rate": "30/1", "nb_frames": "10"}
		]
	}`)
	_, err := parseProbeOutput(data)
	assert.Error(t, err)
}

func TestParseRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"25/1", 25},
		{"30000/1001", 29.97002997002997},
		{"24", 24},
	}
	for _, tc := range cases {
		got, err := parseRate(tc.in)
		require.NoError(t, err, tc.in)
		assert.InDelta(t, tc.want, got, 1e-9, tc.in)
	}

	_, err := parseRate("30/0")
	assert.Error(t, err)
	_, err = parseRate("abc")
	assert.Error(t, err)
}

func TestProbeMissingFile(t *testing.T) {
	_, err := Probe(context.Background(), "/nonexistent/video.mp4")
	assert.ErrorIs(t, err, port.ErrUnsupportedSource)
}
