package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
	"github.com/samber/lo"
)

// Report is the persisted artifact of one analysis run.
type Report struct {
	Timestamp  time.Time          `json:"timestamp"`
	Detections []entity.Detection `json:"detections"`
	Alerts     []entity.Alert     `json:"alerts"`
	Summary    Summary            `json:"summary"`
}

type Summary struct {
	TotalDetections  int                     `json:"total_detections"`
	CriticalAlerts   int                     `json:"critical_alerts"`
	AlertsBySeverity map[entity.Severity]int `json:"alerts_by_severity"`
}

// Exporter serializes frozen sessions. Exporting the same session twice
// yields identical content except for the export timestamp.
type Exporter struct {
	now func() time.Time
}

func NewExporter() *Exporter {
	return &Exporter{now: time.Now}
}

// NewExporterWithClock fixes the export timestamp, for deterministic output.
func NewExporterWithClock(now func() time.Time) *Exporter {
	return &Exporter{now: now}
}

// Export builds the report document for a frozen session. A session that
// was never fully processed fails with entity.ErrSessionNotProcessed and
// produces no document.
func (e *Exporter) Export(sess *entity.Session) (*Report, error) {
	if !sess.Processed {
		return nil, fmt.Errorf("export session %s: %w", sess.ID, entity.ErrSessionNotProcessed)
	}

	bySeverity := lo.CountValuesBy(sess.Alerts, func(a entity.Alert) entity.Severity {
		return a.Severity
	})
	// Zero-fill so every severity is present in the document.
	for _, sev := range entity.Severities() {
		if _, ok := bySeverity[sev]; !ok {
			bySeverity[sev] = 0
		}
	}

	return &Report{
		Timestamp:  e.now().UTC(),
		Detections: sess.Detections,
		Alerts:     sess.Alerts,
		Summary: Summary{
			TotalDetections:  len(sess.Detections),
			CriticalAlerts:   bySeverity[entity.SeverityCritical],
			AlertsBySeverity: bySeverity,
		},
	}, nil
}

// ExportJSON renders the report as an indented UTF-8 JSON document.
func (e *Exporter) ExportJSON(sess *entity.Session) ([]byte, error) {
	report, err := e.Export(sess)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}
