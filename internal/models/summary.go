package models

// WeekInfo identifies the span a weekly summary covers.
type WeekInfo struct {
	StartMonday string `json:"start_monday"`
	EndSunday   string `json:"end_sunday"`
	Timezone    string `json:"timezone"`
}

// MetricAggregate is one metric's weekly rollup. Value depends on the
// aggregation rule (nil when the rule is none or no values were logged);
// ValueCount is the rule-specific count documented on each rule.
type MetricAggregate struct {
	MetricID    string      `json:"metric_id"`
	Aggregation Aggregation `json:"aggregation"`
	Value       any         `json:"value"`
	ValueCount  int         `json:"value_count"`
}

// PhysiologySummary carries the fixed convenience fields dashboard tiles and
// older exports expect. Derived strictly from the generic aggregate map.
type PhysiologySummary struct {
	SleepAvgHours      *float64 `json:"sleep_avg_hours"`
	SleepDaysLogged    int      `json:"sleep_days_logged"`
	CaffeineAvgDrinks  *float64 `json:"caffeine_avg_drinks"`
	CaffeineDaysLogged int      `json:"caffeine_days_logged"`
	SugarBingeDays     int      `json:"sugar_binge_days"`
	MovementDays       int      `json:"movement_days"`
}

// ExecutionSummary carries the fixed deep-work convenience totals.
type ExecutionSummary struct {
	DeepWorkTechnicalTotal float64 `json:"deep_work_sessions_technical_total"`
	DeepWorkCreativeTotal  float64 `json:"deep_work_sessions_creative_total"`
}

// StructureSummary is the week-structure flags plus their score.
type StructureSummary struct {
	WeekStructure
	Score int `json:"score"`
}

// SummaryBody is the computed portion of a week summary. Metrics is the
// generic per-metric aggregate map; the named sections are convenience views
// derived from it, so the two can never disagree.
type SummaryBody struct {
	DaysLogged int                        `json:"days_logged"`
	Metrics    map[string]MetricAggregate `json:"metrics"`
	Physiology PhysiologySummary          `json:"physiology"`
	Execution  ExecutionSummary           `json:"execution"`
	Structure  StructureSummary           `json:"structure"`
}

// ExportMeta tags exchange payloads with provenance.
type ExportMeta struct {
	ExportedAtISO string `json:"exported_at_iso,omitempty"`
	ExportID      string `json:"export_id,omitempty"`
}

// WeekSummary is the full weekly rollup, also the week-scope exchange payload.
type WeekSummary struct {
	Schema      string             `json:"schema"`
	Week        WeekInfo           `json:"week"`
	Summary     SummaryBody        `json:"summary"`
	Days        []*DayEntry        `json:"days"`
	Definitions []MetricDefinition `json:"metric_definitions,omitempty"`
	Meta        ExportMeta         `json:"meta"`
}
