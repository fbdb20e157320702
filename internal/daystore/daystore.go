// Package daystore owns the persisted day entries and week records. All writes
// validate against the catalog's effective definitions before anything is
// persisted.
package daystore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/averyross/scorecard/internal/apperrors"
	"github.com/averyross/scorecard/internal/catalog"
	"github.com/averyross/scorecard/internal/codec"
	"github.com/averyross/scorecard/internal/constants"
	"github.com/averyross/scorecard/internal/exchange"
	"github.com/averyross/scorecard/internal/logger"
	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/storage"
	"github.com/averyross/scorecard/internal/utils"
)

// Store is the day/week record store backed by one storage blob. Day entries
// written by older builds are upgraded to the current shape on load.
type Store struct {
	provider storage.Provider
	cat      *catalog.Catalog
	now      func() time.Time
	sc       *models.Scorecard
}

// rawScorecard defers day decoding so older entry shapes can be migrated
// individually.
type rawScorecard struct {
	Days  map[string]json.RawMessage    `json:"days"`
	Weeks map[string]*models.WeekRecord `json:"weeks"`
}

// Load reads the scorecard blob and migrates any day entries still in an older
// shape. A corrupt blob is reported and replaced with an empty store rather
// than blocking startup; backups cover recovery.
func Load(provider storage.Provider, cat *catalog.Catalog, now func() time.Time) (*Store, error) {
	if now == nil {
		now = time.Now
	}
	s := &Store{provider: provider, cat: cat, now: now, sc: models.NewScorecard()}

	data, ok, err := provider.GetBlob(constants.StoreBlobKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s, nil
	}

	var raw rawScorecard
	if err := json.Unmarshal(data, &raw); err != nil {
		corrupt := &apperrors.CorruptionError{Key: constants.StoreBlobKey, Err: err}
		logger.Warn("scorecard blob unreadable, starting empty", "error", corrupt)
		return s, nil
	}

	days, migrated, err := exchange.MigrateDays(raw.Days, now)
	if err != nil {
		logger.Warn("scorecard day migration failed, starting empty", "error", err)
		return s, nil
	}
	s.sc.Days = days
	for monday, rec := range raw.Weeks {
		if rec != nil {
			s.sc.Weeks[monday] = rec
		}
	}

	if migrated > 0 {
		logger.Info("migrated day entries to current shape", "count", migrated)
		if err := s.Persist(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Scorecard exposes the in-memory state for read paths (summaries, exports).
func (s *Store) Scorecard() *models.Scorecard {
	return s.sc
}

// Get returns the entry for a date, if one was saved.
func (s *Store) Get(dayISO string) (*models.DayEntry, bool) {
	entry, ok := s.sc.Days[dayISO]
	return entry, ok
}

// Save validates raw form values against the definitions effective on the
// date and persists the resulting entry. The first validation failure aborts
// the whole save; nothing is written. Metrics not active on the date are
// ignored.
func (s *Store) Save(dayISO string, raw map[string]string) (*models.DayEntry, error) {
	if !utils.ValidDate(dayISO) {
		return nil, apperrors.Validationf("date %q is not a valid date", dayISO)
	}

	defs := s.cat.ResolveActive(dayISO)
	if len(defs) == 0 {
		return nil, apperrors.Validationf("no metrics are active on %s", dayISO)
	}

	metrics := make(map[string]any, len(defs))
	for _, def := range defs {
		value := codec.Parse(def, raw[def.MetricID])
		if err := codec.Validate(def, value); err != nil {
			return nil, fmt.Errorf("%s: %w", dayISO, err)
		}
		metrics[def.MetricID] = value
	}

	monday, err := utils.WeekMonday(dayISO)
	if err != nil {
		return nil, err
	}

	entry := &models.DayEntry{
		Schema:      exchange.DaySchema(),
		Day:         models.DayInfo{ISODate: dayISO, WeekMonday: monday},
		Metrics:     metrics,
		Definitions: defs,
		Meta: models.EntryMeta{
			DefinitionsVersion: constants.CatalogVersion,
			SavedAtISO:         s.now().UTC().Format(time.RFC3339),
		},
	}

	s.sc.Days[dayISO] = entry
	if err := s.Persist(); err != nil {
		delete(s.sc.Days, dayISO)
		return nil, err
	}
	return entry, nil
}

// Delete removes a saved day entry. Deleting a day that was never saved is
// reported, not silently ignored.
func (s *Store) Delete(dayISO string) error {
	entry, ok := s.sc.Days[dayISO]
	if !ok {
		return apperrors.NotFoundf("no entry saved for %s", dayISO)
	}

	delete(s.sc.Days, dayISO)
	if err := s.Persist(); err != nil {
		s.sc.Days[dayISO] = entry
		return err
	}
	return nil
}

// WeekRecord returns the persisted record for a week's Monday, if any.
func (s *Store) WeekRecord(weekMonday string) (models.WeekRecord, bool) {
	rec, ok := s.sc.Weeks[weekMonday]
	if !ok || rec == nil {
		return models.WeekRecord{}, false
	}
	return *rec, true
}

// SetWeekStructure records the weekly structure flags for the week starting at
// weekMonday. The date must actually be a Monday.
func (s *Store) SetWeekStructure(weekMonday string, st models.WeekStructure) error {
	monday, err := utils.WeekMonday(weekMonday)
	if err != nil {
		return apperrors.Validationf("week start %q is not a valid date", weekMonday)
	}
	if monday != weekMonday {
		return apperrors.Validationf("week start %s is not a Monday (week begins %s)", weekMonday, monday)
	}

	prev, had := s.sc.Weeks[weekMonday]
	s.SetStructure(weekMonday, st)
	if err := s.Persist(); err != nil {
		if had {
			s.sc.Weeks[weekMonday] = prev
		} else {
			delete(s.sc.Weeks, weekMonday)
		}
		return err
	}
	return nil
}

// UpsertEntry replaces the entry for the day in memory. Part of the import
// target surface; callers persist separately.
func (s *Store) UpsertEntry(entry *models.DayEntry) {
	s.sc.Days[entry.Day.ISODate] = entry
}

// MergeWeek replaces the week record in memory.
func (s *Store) MergeWeek(weekMonday string, rec models.WeekRecord) {
	if rec.Meta.UpdatedAtISO == "" {
		rec.Meta.UpdatedAtISO = s.now().UTC().Format(time.RFC3339)
	}
	s.sc.Weeks[weekMonday] = &rec
}

// SetStructure sets the structure flags in memory, stamping the update time.
func (s *Store) SetStructure(weekMonday string, st models.WeekStructure) {
	s.sc.Weeks[weekMonday] = &models.WeekRecord{
		Structure: st,
		Meta:      models.WeekMeta{UpdatedAtISO: s.now().UTC().Format(time.RFC3339)},
	}
}

// Persist writes the full scorecard blob.
func (s *Store) Persist() error {
	data, err := json.Marshal(s.sc)
	if err != nil {
		return err
	}
	return s.provider.SetBlob(constants.StoreBlobKey, data)
}
