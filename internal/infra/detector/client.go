package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
	"go.uber.org/zap"
)

// Client calls an external detection service over HTTP. Each frame is
// posted as a multipart JPEG to <baseURL>/predict; the response is a JSON
// array of raw detections.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type detectionPayload struct {
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	Box         [4]int  `json:"box"` // [x, y, w, h]
	WatchlistID string  `json:"watchlist_id,omitempty"`
	PlateText   string  `json:"plate_text,omitempty"`
}

func (c *Client) Detect(ctx context.Context, frame entity.Frame) ([]entity.Detection, error) {
	imageData, err := encodeJPEG(frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", frame.Index, err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", "image/jpeg")

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("detector returned %s: %s", resp.Status, body)
	}

	var payloads []detectionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("decode detector response: %w", err)
	}

	detections := make([]entity.Detection, 0, len(payloads))
	for _, p := range payloads {
		detections = append(detections, entity.Detection{
			Type:       entity.ParseDetectionType(p.Type),
			Confidence: p.Confidence,
			Box: entity.BoundingBox{
				X: p.Box[0], Y: p.Box[1], W: p.Box[2], H: p.Box[3],
			},
			WatchlistID: p.WatchlistID,
			PlateText:   p.PlateText,
		})
	}

	c.logger.Debug("frame detected",
		zap.Int("frame_index", frame.Index),
		zap.Int("detections", len(detections)),
	)
	return detections, nil
}

// encodeJPEG converts a packed RGB24 frame to JPEG for the wire.
func encodeJPEG(frame entity.Frame) ([]byte, error) {
	if len(frame.Data) < frame.Width*frame.Height*3 {
		return nil, fmt.Errorf("frame buffer too short: %d bytes for %dx%d", len(frame.Data), frame.Width, frame.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			src := (y*frame.Width + x) * 3
			dst := img.PixOffset(x, y)
			img.Pix[dst] = frame.Data[src]
			img.Pix[dst+1] = frame.Data[src+1]
			img.Pix[dst+2] = frame.Data[src+2]
			img.Pix[dst+3] = 0xff
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
