package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/port"
	"go.uber.org/zap"
)

// Opener opens local video files through an ffmpeg decode pipe.
type Opener struct {
	logger *zap.Logger
}

func NewOpener(logger *zap.Logger) *Opener {
	return &Opener{logger: logger}
}

func (o *Opener) Open(ctx context.Context, path string) (port.VideoSource, error) {
	meta, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	s := &Source{
		path:      path,
		meta:      meta,
		frameSize: meta.Width * meta.Height * 3,
		logger:    o.logger,
	}
	if err := s.start(ctx, 0); err != nil {
		return nil, err
	}

	o.logger.Info("video source opened",
		zap.String("path", path),
		zap.String("resolution", meta.Resolution()),
		zap.Float64("fps", meta.FPS),
		zap.Int("frame_count", meta.FrameCount),
		zap.Float64("duration_secs", meta.Duration),
	)
	return s, nil
}

// Source decodes frames lazily from ffmpeg's stdout as packed RGB24. The
// stream is finite and non-restartable; Close kills the decoder process
// and is idempotent.
type Source struct {
	path      string
	meta      entity.VideoMetadata
	frameSize int
	logger    *zap.Logger

	ctx    context.Context
	cmd    *exec.Cmd
	stdout io.ReadCloser
	next   int
	closed bool
}

func (s *Source) Metadata() entity.VideoMetadata {
	return s.meta
}

func (s *Source) start(ctx context.Context, fromFrame int) error {
	args := []string{"-v", "error"}
	if fromFrame > 0 {
		// -ss before -i seeks on the demuxer, which is fast and lands on
		// the requested frame for constant-rate sources.
		offset := float64(fromFrame) / s.meta.FPS
		args = append(args, "-ss", fmt.Sprintf("%.6f", offset))
	}
	args = append(args,
		"-i", s.path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start ffmpeg: %v", port.ErrUnsupportedSource, err)
	}

	s.ctx = ctx
	s.cmd = cmd
	s.stdout = stdout
	s.next = fromFrame
	s.closed = false
	return nil
}

func (s *Source) Next(ctx context.Context) (entity.Frame, error) {
	if s.closed {
		return entity.Frame{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		s.release()
		return entity.Frame{}, err
	}

	buf := make([]byte, s.frameSize)
	if _, err := io.ReadFull(s.stdout, buf); err != nil {
		s.release()
		if ctx.Err() != nil {
			return entity.Frame{}, ctx.Err()
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return entity.Frame{}, io.EOF
		}
		return entity.Frame{}, fmt.Errorf("read frame %d: %w", s.next, err)
	}

	frame := entity.Frame{
		Index:  s.next,
		Width:  s.meta.Width,
		Height: s.meta.Height,
		Data:   buf,
	}
	s.next++
	return frame, nil
}

// Seek repositions the stream so the next frame returned has the given
// index. The running decoder is replaced with one started at the offset.
func (s *Source) Seek(frameIndex int) error {
	if frameIndex < 0 || frameIndex >= s.meta.FrameCount {
		return fmt.Errorf("%w: frame %d of %d", port.ErrOutOfRange, frameIndex, s.meta.FrameCount)
	}
	ctx := s.ctx
	s.release()
	return s.start(ctx, frameIndex)
}

func (s *Source) Close() error {
	s.release()
	return nil
}

// release tears down the decoder process. Called on exhaustion, error,
// seek, and Close; safe to call repeatedly.
func (s *Source) release() {
	if s.closed {
		return
	}
	s.closed = true
	if s.stdout != nil {
		s.stdout.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	}
	s.cmd = nil
	s.stdout = nil
}
