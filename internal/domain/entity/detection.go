package entity

import "fmt"

type DetectionType string

const (
	DetectionTypePerson  DetectionType = "person"
	DetectionTypeVehicle DetectionType = "vehicle"
	DetectionTypeWeapon  DetectionType = "weapon"
	DetectionTypeOther   DetectionType = "other"
)

// ParseDetectionType maps a detector-reported class to a known type,
// falling back to "other" for classes the system does not track.
func ParseDetectionType(s string) DetectionType {
	switch DetectionType(s) {
	case DetectionTypePerson, DetectionTypeVehicle, DetectionTypeWeapon:
		return DetectionType(s)
	default:
		return DetectionTypeOther
	}
}

// BoundingBox is the pixel region of a detection, (x, y) top-left.
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Detection is one model-reported object instance in a sampled frame.
// Immutable once appended to a session.
type Detection struct {
	Type       DetectionType `json:"type"`
	Confidence float64       `json:"confidence"`
	// Timestamp is the offset into the video in seconds.
	Timestamp   float64     `json:"timestamp"`
	Box         BoundingBox `json:"bounding_box"`
	WatchlistID string      `json:"watchlist_id,omitempty"`
	PlateText   string      `json:"plate_text,omitempty"`
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities lists all severities in escalation order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Alert is a human-facing notification escalated from a detection.
type Alert struct {
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Timestamp  float64  `json:"timestamp"`
	Confidence float64  `json:"confidence"`
}

// DeriveAlerts applies the escalation rules to a single detection. The only
// rule currently defined is the watchlist match, which yields exactly one
// HIGH alert; detections matching no rule yield none.
func DeriveAlerts(d Detection) []Alert {
	if d.WatchlistID == "" {
		return nil
	}
	return []Alert{{
		Severity:   SeverityHigh,
		Message:    fmt.Sprintf("WATCHLIST MATCH: Individual %s detected", d.WatchlistID),
		Timestamp:  d.Timestamp,
		Confidence: d.Confidence,
	}}
}
