package exchange

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/averyross/scorecard/internal/apperrors"
	"github.com/averyross/scorecard/internal/constants"
	"github.com/averyross/scorecard/internal/logger"
	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/utils"
)

// Target is the store surface an import writes into. The day store implements
// it; tests substitute a recorder.
type Target interface {
	UpsertEntry(entry *models.DayEntry)
	MergeWeek(weekMonday string, rec models.WeekRecord)
	SetStructure(weekMonday string, st models.WeekStructure)
	Persist() error
}

// Report summarizes what an import applied.
type Report struct {
	Scope    string
	Key      string
	Days     int
	Weeks    int
	Migrated int
}

// Engine applies exchange payloads to a target store. Decoding happens fully
// before any write, so a payload that fails partway leaves the store as it
// was. Only one import may run at a time.
type Engine struct {
	mu     sync.Mutex
	target Target
	now    func() time.Time
}

func NewEngine(target Target, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{target: target, now: now}
}

// Import parses a schema-tagged payload and merges it into the target. The
// payload's declared scope picks the merge strategy; versions newer than this
// build supports are rejected outright.
func (e *Engine) Import(data []byte) (*Report, error) {
	if !e.mu.TryLock() {
		return nil, apperrors.Validationf("an import is already in progress")
	}
	defer e.mu.Unlock()

	var env struct {
		Schema string `json:"schema"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperrors.Parse(err)
	}

	tag, err := ParseSchemaTag(env.Schema)
	if err != nil {
		return nil, err
	}

	var report *Report
	switch tag.Scope {
	case constants.ScopeDay:
		report, err = e.importDay(data)
	case constants.ScopeWeek:
		report, err = e.importWeek(data)
	case constants.ScopeAll:
		report, err = e.importAll(data)
	}
	if err != nil {
		return nil, err
	}

	if err := e.target.Persist(); err != nil {
		return nil, err
	}
	logger.Info("import applied", "scope", report.Scope, "key", report.Key,
		"days", report.Days, "weeks", report.Weeks, "migrated", report.Migrated)
	return report, nil
}

func (e *Engine) importDay(data []byte) (*Report, error) {
	entry, migrated, err := DecodeDayEntry(data, e.now)
	if err != nil {
		return nil, err
	}

	e.target.UpsertEntry(entry)
	report := &Report{Scope: constants.ScopeDay, Key: entry.Day.ISODate, Days: 1}
	if migrated {
		report.Migrated = 1
	}
	return report, nil
}

func (e *Engine) importWeek(data []byte) (*Report, error) {
	var payload struct {
		Week struct {
			StartMonday string `json:"start_monday"`
		} `json:"week"`
		Summary struct {
			Structure *models.WeekStructure `json:"structure"`
		} `json:"summary"`
		Days []json.RawMessage `json:"days"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, apperrors.Parse(err)
	}

	entries := make([]*models.DayEntry, 0, len(payload.Days))
	migrated := 0
	for _, raw := range payload.Days {
		entry, changed, err := DecodeDayEntry(raw, e.now)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		if changed {
			migrated++
		}
	}

	monday := payload.Week.StartMonday
	if monday == "" && len(entries) > 0 {
		monday = entries[0].Day.WeekMonday
	}
	if monday == "" {
		return nil, &apperrors.ParseError{Msg: "week payload missing week.start_monday"}
	}
	if !utils.ValidDate(monday) {
		return nil, apperrors.Validationf("week start %q is not a valid date", monday)
	}

	for _, entry := range entries {
		e.target.UpsertEntry(entry)
	}
	report := &Report{Scope: constants.ScopeWeek, Key: monday, Days: len(entries), Migrated: migrated}
	if payload.Summary.Structure != nil {
		e.target.SetStructure(monday, *payload.Summary.Structure)
		report.Weeks = 1
	}
	return report, nil
}

func (e *Engine) importAll(data []byte) (*Report, error) {
	var payload struct {
		Days  map[string]json.RawMessage    `json:"days"`
		Weeks map[string]*models.WeekRecord `json:"weeks"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, apperrors.Parse(err)
	}

	days, migrated, err := MigrateDays(payload.Days, e.now)
	if err != nil {
		return nil, err
	}

	for _, entry := range days {
		e.target.UpsertEntry(entry)
	}
	weeks := 0
	for monday, rec := range payload.Weeks {
		if rec == nil || !utils.ValidDate(monday) {
			continue
		}
		e.target.MergeWeek(monday, *rec)
		weeks++
	}

	return &Report{Scope: constants.ScopeAll, Key: constants.ScopeAll,
		Days: len(days), Weeks: weeks, Migrated: migrated}, nil
}
