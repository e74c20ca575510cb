package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDetectionType(t *testing.T) {
	assert.Equal(t, DetectionTypePerson, ParseDetectionType("person"))
	assert.Equal(t, DetectionTypeVehicle, ParseDetectionType("vehicle"))
	assert.Equal(t, DetectionTypeWeapon, ParseDetectionType("weapon"))
	assert.Equal(t, DetectionTypeOther, ParseDetectionType("bicycle"))
	assert.Equal(t, DetectionTypeOther, ParseDetectionType(""))
}

func TestDeriveAlertsWatchlistMatch(t *testing.T) {
	d := Detection{
		Type:        DetectionTypePerson,
		Confidence:  0.88,
		Timestamp:   12.0,
		WatchlistID: "WL-2847",
	}

	alerts := DeriveAlerts(d)
	require.Len(t, alerts, 1)
	assert.Equal(t, SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 12.0, alerts[0].Timestamp)
	assert.Equal(t, 0.88, alerts[0].Confidence)
	assert.Contains(t, alerts[0].Message, "WL-2847")
}

func TestDeriveAlertsNoRuleMatch(t *testing.T) {
	d := Detection{
		Type:       DetectionTypeVehicle,
		Confidence: 0.91,
		Timestamp:  18.0,
		PlateText:  "DL-7XYZ-1234",
	}
	assert.Empty(t, DeriveAlerts(d))
}

func TestSessionAppendDerivesAlerts(t *testing.T) {
	s := NewSession()
	s.Append(Detection{Type: DetectionTypePerson, Confidence: 0.92, Timestamp: 5.0})
	s.Append(Detection{Type: DetectionTypePerson, Confidence: 0.88, Timestamp: 12.0, WatchlistID: "WL-2847"})

	assert.Len(t, s.Detections, 2)
	require.Len(t, s.Alerts, 1)
	assert.Equal(t, SeverityHigh, s.Alerts[0].Severity)
	assert.False(t, s.Processed)

	s.Freeze()
	assert.True(t, s.Processed)
}
