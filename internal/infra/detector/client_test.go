package detector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testFrame() entity.Frame {
	return entity.Frame{
		Index:  3,
		Width:  8,
		Height: 4,
		Data:   make([]byte, 8*4*3),
	}
}

func TestClientDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "frame.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"type": "person", "confidence": 0.92, "box": [120, 80, 200, 350]},
			{"type": "person", "confidence": 0.88, "box": [450, 100, 180, 320], "watchlist_id": "WL-2847"},
			{"type": "truck", "confidence": 0.91, "box": [50, 400, 300, 200], "plate_text": "DL-7XYZ-1234"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	detections, err := client.Detect(context.Background(), testFrame())
	require.NoError(t, err)
	require.Len(t, detections, 3)

	assert.Equal(t, entity.DetectionTypePerson, detections[0].Type)
	assert.Equal(t, 0.92, detections[0].Confidence)
	assert.Equal(t, entity.BoundingBox{X: 120, Y: 80, W: 200, H: 350}, detections[0].Box)

	assert.Equal(t, "WL-2847", detections[1].WatchlistID)

	// Unknown classes fall back to "other".
	assert.Equal(t, entity.DetectionTypeOther, detections[2].Type)
	assert.Equal(t, "DL-7XYZ-1234", detections[2].PlateText)
}

func TestClientDetectEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	detections, err := client.Detect(context.Background(), testFrame())
	require.NoError(t, err)
	assert.Empty(t, detections)
}

func TestClientDetectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	_, err := client.Detect(context.Background(), testFrame())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestEncodeJPEGRejectsShortBuffer(t *testing.T) {
	frame := entity.Frame{Index: 0, Width: 8, Height: 8, Data: make([]byte, 10)}
	_, err := encodeJPEG(frame)
	assert.Error(t, err)
}
