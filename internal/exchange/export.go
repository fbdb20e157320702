package exchange

import (
	"time"

	"github.com/google/uuid"

	"github.com/averyross/scorecard/internal/models"
)

// AllExport is the full-store exchange payload.
type AllExport struct {
	Schema      string                        `json:"schema"`
	Days        map[string]*models.DayEntry   `json:"days"`
	Weeks       map[string]*models.WeekRecord `json:"weeks"`
	Definitions []models.MetricDefinition     `json:"metric_definitions,omitempty"`
	Meta        models.ExportMeta             `json:"meta"`
}

// NewExportMeta stamps a payload with provenance.
func NewExportMeta(now func() time.Time) models.ExportMeta {
	if now == nil {
		now = time.Now
	}
	return models.ExportMeta{
		ExportedAtISO: now().UTC().Format(time.RFC3339),
		ExportID:      uuid.NewString(),
	}
}

// BuildDayExport returns a standalone copy of a day entry suitable for
// exchange: current schema tag plus the definition snapshot that governed the
// day, filled in when the entry predates snapshotting.
func BuildDayExport(entry *models.DayEntry, defs []models.MetricDefinition) *models.DayEntry {
	out := *entry
	out.Schema = DaySchema()
	if len(out.Definitions) == 0 {
		out.Definitions = defs
	}
	return &out
}

// BuildAllExport wraps the whole store with the full catalog.
func BuildAllExport(sc *models.Scorecard, defs []models.MetricDefinition, now func() time.Time) *AllExport {
	return &AllExport{
		Schema:      AllSchema(),
		Days:        sc.Days,
		Weeks:       sc.Weeks,
		Definitions: defs,
		Meta:        NewExportMeta(now),
	}
}
