package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/port"
)

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	NBFrames   string `json:"nb_frames"`
	Duration   string `json:"duration"`
}

// Probe reads container metadata with ffprobe. A missing, corrupt, or
// unsupported file fails with port.ErrUnsupportedSource.
func Probe(ctx context.Context, videoPath string) (entity.VideoMetadata, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return entity.VideoMetadata{}, fmt.Errorf("%w: %s: %v", port.ErrUnsupportedSource, videoPath, err)
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_streams",
		"-print_format", "json",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return entity.VideoMetadata{}, fmt.Errorf("%w: ffprobe %s: %v", port.ErrUnsupportedSource, videoPath, err)
	}

	meta, err := parseProbeOutput(output)
	if err != nil {
		return entity.VideoMetadata{}, fmt.Errorf("%w: %s: %v", port.ErrUnsupportedSource, videoPath, err)
	}
	return meta, nil
}

func parseProbeOutput(data []byte) (entity.VideoMetadata, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return entity.VideoMetadata{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var stream *probeStream
	for i := range out.Streams {
		if out.Streams[i].CodecType == "video" {
			stream = &out.Streams[i]
			break
		}
	}
	if stream == nil {
		return entity.VideoMetadata{}, fmt.Errorf("no video stream")
	}

	fps, err := parseRate(stream.RFrameRate)
	if err != nil {
		return entity.VideoMetadata{}, err
	}
	if fps <= 0 {
		return entity.VideoMetadata{}, fmt.Errorf("non-positive frame rate %q", stream.RFrameRate)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return entity.VideoMetadata{}, fmt.Errorf("invalid dimensions %dx%d", stream.Width, stream.Height)
	}

	frameCount := 0
	if stream.NBFrames != "" {
		frameCount, err = strconv.Atoi(stream.NBFrames)
		if err != nil {
			return entity.VideoMetadata{}, fmt.Errorf("parse nb_frames %q: %w", stream.NBFrames, err)
		}
	} else if stream.Duration != "" {
		// Some containers omit nb_frames; derive it from the stream
		// duration assuming constant frame rate.
		seconds, err := strconv.ParseFloat(strings.TrimSpace(stream.Duration), 64)
		if err != nil {
			return entity.VideoMetadata{}, fmt.Errorf("parse duration %q: %w", stream.Duration, err)
		}
		frameCount = int(math.Round(seconds * fps))
	}
	if frameCount < 0 {
		return entity.VideoMetadata{}, fmt.Errorf("negative frame count %d", frameCount)
	}

	return entity.VideoMetadata{
		FPS:        fps,
		FrameCount: frameCount,
		Width:      stream.Width,
		Height:     stream.Height,
		Duration:   float64(frameCount) / fps,
	}, nil
}

// parseRate parses an ffprobe rational like "30000/1001" or "25/1".
func parseRate(s string) (float64, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	if d == 0 {
		return 0, fmt.Errorf("frame rate %q has zero denominator", s)
	}
	return n / d, nil
}
