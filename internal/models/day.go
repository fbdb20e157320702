package models

// DayInfo identifies the calendar position of a day entry.
type DayInfo struct {
	ISODate    string `json:"iso_date"`
	WeekMonday string `json:"week_monday"`
}

// EntryMeta carries save/migration metadata for a day entry.
type EntryMeta struct {
	DefinitionsVersion    int    `json:"metric_definitions_version,omitempty"`
	SavedAtISO            string `json:"saved_at_iso,omitempty"`
	MigratedToMetricMapV3 bool   `json:"migrated_to_metric_map_v3,omitempty"`
	MigratedAtISO         string `json:"migrated_at_iso,omitempty"`
}

// DayEntry is one saved day. Metrics maps metric_id to a typed value, only for
// metrics that were active on that day. Definitions is a denormalized snapshot
// of the version rows in force that day so exports stay readable without the
// catalog.
//
// Value types inside Metrics after JSON decoding: float64 for numeric metrics,
// bool for binary metrics, string for text and select_single (nil when unset),
// and a slice of option values for select_multi.
type DayEntry struct {
	Schema      string             `json:"schema"`
	Day         DayInfo            `json:"day"`
	Metrics     map[string]any     `json:"metrics"`
	Definitions []MetricDefinition `json:"metric_definitions,omitempty"`
	Meta        EntryMeta          `json:"meta"`
}

// MetricValue returns the stored value for a metric, or fallback when the
// entry has no value for it.
func (e *DayEntry) MetricValue(metricID string, fallback any) any {
	if e == nil || e.Metrics == nil {
		return fallback
	}
	if v, ok := e.Metrics[metricID]; ok {
		return v
	}
	return fallback
}

// WeekStructure holds the three weekly discipline flags. It is independent of
// day entries: a week may have structure set with zero logged days.
type WeekStructure struct {
	PrioritiesDefined bool `json:"priorities_defined"`
	TwoCompleted      bool `json:"two_completed"`
	WeeklyReviewDone  bool `json:"weekly_review_done"`
}

// Score counts the true flags (0–3).
func (w WeekStructure) Score() int {
	n := 0
	for _, b := range []bool{w.PrioritiesDefined, w.TwoCompleted, w.WeeklyReviewDone} {
		if b {
			n++
		}
	}
	return n
}

// WeekMeta carries update metadata for a week record.
type WeekMeta struct {
	UpdatedAtISO string `json:"updated_at_iso,omitempty"`
}

// WeekRecord is the persisted per-week state, keyed by the week's Monday.
type WeekRecord struct {
	Structure WeekStructure `json:"structure"`
	Meta      WeekMeta      `json:"meta"`
}

// Scorecard is the full day/week store as persisted.
type Scorecard struct {
	Days  map[string]*DayEntry   `json:"days"`
	Weeks map[string]*WeekRecord `json:"weeks"`
}

// NewScorecard returns an empty store with initialized maps.
func NewScorecard() *Scorecard {
	return &Scorecard{
		Days:  make(map[string]*DayEntry),
		Weeks: make(map[string]*WeekRecord),
	}
}
