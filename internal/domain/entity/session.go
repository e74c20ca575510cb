package entity

import (
	"errors"

	"github.com/google/uuid"
)

// ErrSessionNotProcessed is returned when a report is requested for a
// session whose sampled stream was never fully consumed.
var ErrSessionNotProcessed = errors.New("session not processed")

// Session is the mutable aggregate of one video-processing run. It is
// created empty, populated incrementally while the sampled stream is
// consumed, and frozen once the stream is exhausted. A cancelled run leaves
// the session partial and unfrozen; nothing is rolled back.
type Session struct {
	ID         uuid.UUID
	Detections []Detection
	Alerts     []Alert
	Processed  bool

	SampledFrames    int
	DetectorFailures int
}

func NewSession() *Session {
	return &Session{
		ID:         uuid.New(),
		Detections: []Detection{},
		Alerts:     []Alert{},
	}
}

// Append records a detection and any alerts derived from it. Callers append
// in timestamp order; the session does not reorder.
func (s *Session) Append(d Detection) {
	s.Detections = append(s.Detections, d)
	s.Alerts = append(s.Alerts, DeriveAlerts(d)...)
}

// Freeze marks the session complete. Only the component that exhausted the
// sampled stream may call this.
func (s *Session) Freeze() {
	s.Processed = true
}
