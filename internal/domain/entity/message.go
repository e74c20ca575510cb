package entity

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRequestMessage is the inbound message from the analysis.request
// queue. FrameSkip and ConfidenceThreshold override the worker defaults
// when set; a pointer distinguishes an explicit threshold of 0 (keep every
// detection) from an absent field.
type AnalysisRequestMessage struct {
	JobID               uuid.UUID `json:"job_id"`
	UserID              string    `json:"user_id"`
	VideoKey            string    `json:"video_key"`
	FrameSkip           int       `json:"frame_skip,omitempty"`
	ConfidenceThreshold *float64  `json:"confidence_threshold,omitempty"`
	UserEmail           string    `json:"user_email,omitempty"`
}

// AnalysisStatusMessage is the outbound message published to the
// analysis.status queue after every job state change.
type AnalysisStatusMessage struct {
	JobID          uuid.UUID `json:"job_id"`
	UserID         string    `json:"user_id"`
	Status         JobStatus `json:"status"`
	VideoKey       string    `json:"video_key"`
	ReportKey      string    `json:"report_key,omitempty"`
	DetectionCount int       `json:"detection_count,omitempty"`
	AlertCount     int       `json:"alert_count,omitempty"`
	Duration       float64   `json:"duration_seconds,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Attempt        int       `json:"attempt"`
	MaxAttempts    int       `json:"max_attempts"`
}

// Heartbeat is the progress event published to Kafka while a job is being
// processed.
type Heartbeat struct {
	JobID uuid.UUID `json:"job_id"`
	// FrameIndex is the index of the last sampled frame.
	FrameIndex int `json:"frame_index"`
	// Timestamp is the video offset of that frame in seconds.
	Timestamp float64   `json:"timestamp"`
	SentAt    time.Time `json:"sent_at"`
}
