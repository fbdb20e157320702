// Package catalog manages the versioned store of metric definitions. A metric
// may be redefined over time; every historical day is always interpreted
// against the version row in force on that day, and edits are forward-only.
package catalog

import (
	"encoding/json"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/averyross/scorecard/internal/apperrors"
	"github.com/averyross/scorecard/internal/constants"
	"github.com/averyross/scorecard/internal/logger"
	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/storage"
	"github.com/averyross/scorecard/internal/utils"
)

var metricIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

type blob struct {
	Version      int                       `json:"version"`
	Definitions  []models.MetricDefinition `json:"definitions"`
	UpdatedAtISO string                    `json:"updated_at_iso,omitempty"`
}

// Catalog owns the full ordered collection of metric version rows. It is an
// explicit object injected into operations, never package state. Mutations
// build a replacement row slice and persist once; on failure the previous
// slice stays in place.
type Catalog struct {
	store storage.Provider
	now   func() time.Time
	defs  []models.MetricDefinition
}

// Load reads the catalog blob, normalizing older representations in place and
// seeding the default set when no catalog exists. A corrupt blob is reported
// through the logger and replaced by the seeded defaults rather than crashing.
func Load(store storage.Provider, now func() time.Time) (*Catalog, error) {
	if now == nil {
		now = time.Now
	}
	c := &Catalog{store: store, now: now}

	data, ok, err := store.GetBlob(constants.CatalogBlobKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.defs = withVersionIDs(DefaultDefinitions())
		if err := c.persist(); err != nil {
			return nil, err
		}
		return c, nil
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil || b.Definitions == nil {
		corrupt := &apperrors.CorruptionError{Key: constants.CatalogBlobKey, Err: err}
		logger.Warn("catalog blob unreadable, reseeding defaults", "error", corrupt)
		c.defs = withVersionIDs(DefaultDefinitions())
		if err := c.persist(); err != nil {
			return nil, err
		}
		return c, nil
	}

	defs, changed := normalize(b.Definitions)
	c.defs = defs
	if changed || b.Version != constants.CatalogVersion {
		if err := c.persist(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// normalize remaps legacy type/aggregation tokens, degrades anything still
// unrecognized, and backfills missing fields. Returns the normalized rows and
// whether anything changed.
func normalize(defs []models.MetricDefinition) ([]models.MetricDefinition, bool) {
	out := make([]models.MetricDefinition, len(defs))
	changed := false

	for i, def := range defs {
		if mapped, ok := legacyTypeMap[string(def.Type)]; ok {
			def.Type = mapped
			changed = true
		}
		if !def.Type.Known() {
			def.Type = models.TypeTextShort
			changed = true
		}
		if mapped, ok := legacyAggMap[string(def.Aggregation)]; ok {
			def.Aggregation = mapped
			changed = true
		}
		if !def.Aggregation.Known() {
			def.Aggregation = models.AggNone
			changed = true
		}
		if def.VersionID == "" {
			def.VersionID = uuid.NewString()
			changed = true
		}
		out[i] = def
	}

	sortRows(out)
	return out, changed
}

func withVersionIDs(defs []models.MetricDefinition) []models.MetricDefinition {
	for i := range defs {
		defs[i].VersionID = uuid.NewString()
	}
	return defs
}

func sortRows(defs []models.MetricDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].MetricID != defs[j].MetricID {
			return defs[i].MetricID < defs[j].MetricID
		}
		return defs[i].ActiveFrom < defs[j].ActiveFrom
	})
}

func (c *Catalog) persist() error {
	b := blob{
		Version:      constants.CatalogVersion,
		Definitions:  c.defs,
		UpdatedAtISO: c.now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return c.store.SetBlob(constants.CatalogBlobKey, data)
}

// Definitions returns a copy of every version row, ordered by
// (metric_id, active_from).
func (c *Catalog) Definitions() []models.MetricDefinition {
	out := make([]models.MetricDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Resolve returns the effective definition for a metric on a date: the row
// whose window contains the date with the maximal active_from. The boolean is
// false when no version row governs that date.
func (c *Catalog) Resolve(metricID, dayISO string) (models.MetricDefinition, bool) {
	var best models.MetricDefinition
	found := false
	for _, def := range c.defs {
		if def.MetricID != metricID || !def.ActiveOn(dayISO) {
			continue
		}
		if !found || def.ActiveFrom > best.ActiveFrom {
			best = def
			found = true
		}
	}
	return best, found
}

// ResolveActive returns the effective definitions for every metric active on
// the date, one per distinct metric_id, sorted by (group, metric_id).
func (c *Catalog) ResolveActive(dayISO string) []models.MetricDefinition {
	seen := make(map[string]bool)
	var out []models.MetricDefinition
	for _, def := range c.defs {
		if seen[def.MetricID] || !def.ActiveOn(dayISO) {
			continue
		}
		if resolved, ok := c.Resolve(def.MetricID, dayISO); ok {
			out = append(out, resolved)
			seen[def.MetricID] = true
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].MetricID < out[j].MetricID
	})
	return out
}

// AppendVersion records a new version row for a metric effective from the
// given date. Definitions cannot be rewritten retroactively: effectiveFrom
// before today fails validation and leaves the catalog untouched. The
// currently open row, if any, is closed the day before the new row starts.
func (c *Catalog) AppendVersion(def models.MetricDefinition, effectiveFrom string) error {
	if !metricIDPattern.MatchString(def.MetricID) {
		return apperrors.Validationf("metric id %q must be lowercase alphanumeric with underscores", def.MetricID)
	}
	if !utils.ValidDate(effectiveFrom) {
		return apperrors.Validationf("effective date %q is not a valid date", effectiveFrom)
	}
	if today := utils.Today(c.now); effectiveFrom < today {
		return apperrors.Validationf("effective date %s is before today (%s); definitions are forward-only", effectiveFrom, today)
	}
	if !def.Type.Known() {
		return apperrors.Validationf("unknown metric type %q", def.Type)
	}
	if !def.Aggregation.Known() {
		return apperrors.Validationf("unknown aggregation %q", def.Aggregation)
	}
	isSelect := def.Type == models.TypeSelectSingle || def.Type == models.TypeSelectMulti
	if isSelect && len(def.Options) == 0 {
		return apperrors.Validationf("metric %s needs at least one option", def.MetricID)
	}
	if !isSelect {
		def.Options = nil
	}

	next := make([]models.MetricDefinition, 0, len(c.defs)+1)
	for _, row := range c.defs {
		if row.MetricID == def.MetricID && row.Open() {
			if row.ActiveFrom > effectiveFrom {
				return apperrors.Validationf("metric %s already has a version starting %s", def.MetricID, row.ActiveFrom)
			}
			closeOn, err := utils.AddDays(effectiveFrom, -1)
			if err != nil {
				return err
			}
			row.ActiveTo = &closeOn
		}
		next = append(next, row)
	}

	def.ActiveFrom = effectiveFrom
	def.ActiveTo = nil
	def.VersionID = uuid.NewString()
	next = append(next, def)
	sortRows(next)

	prev := c.defs
	c.defs = next
	if err := c.persist(); err != nil {
		c.defs = prev
		return err
	}
	return nil
}

// Retire closes a metric's open version row so it stops applying after
// retireFrom (inclusive). History is preserved; nothing is deleted.
func (c *Catalog) Retire(metricID, retireFrom string) error {
	if !utils.ValidDate(retireFrom) {
		return apperrors.Validationf("retire date %q is not a valid date", retireFrom)
	}
	if today := utils.Today(c.now); retireFrom < today {
		return apperrors.Validationf("retire date %s is before today (%s); definitions are forward-only", retireFrom, today)
	}

	next := make([]models.MetricDefinition, len(c.defs))
	copy(next, c.defs)

	idx := -1
	for i, row := range next {
		if row.MetricID == metricID && row.Open() && row.ActiveFrom <= retireFrom {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperrors.NotFoundf("metric %s has no open version as of %s", metricID, retireFrom)
	}

	closeOn := retireFrom
	next[idx].ActiveTo = &closeOn

	prev := c.defs
	c.defs = next
	if err := c.persist(); err != nil {
		c.defs = prev
		return err
	}
	return nil
}

// Snapshot returns every version row whose validity window intersects
// [startISO, endISO], deduplicated by (metric_id, active_from) and sorted the
// same way. Used to embed schema context into exports.
func (c *Catalog) Snapshot(startISO, endISO string) []models.MetricDefinition {
	type key struct{ id, from string }
	seen := make(map[key]bool)
	var out []models.MetricDefinition

	for _, def := range c.defs {
		if def.ActiveFrom > endISO {
			continue
		}
		if def.ActiveTo != nil && *def.ActiveTo < startISO {
			continue
		}
		k := key{def.MetricID, def.ActiveFrom}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, def)
	}

	sortRows(out)
	return out
}

// CheckInvariants verifies that each metric's version rows form a sequence of
// non-overlapping windows with at most one open row, which must be the most
// recent. Used by diagnostics.
func (c *Catalog) CheckInvariants() []string {
	byMetric := make(map[string][]models.MetricDefinition)
	for _, def := range c.defs {
		byMetric[def.MetricID] = append(byMetric[def.MetricID], def)
	}

	var problems []string
	for id, rows := range byMetric {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].ActiveFrom < rows[j].ActiveFrom })
		openSeen := false
		for i, row := range rows {
			if row.Open() {
				if openSeen {
					problems = append(problems, "metric "+id+" has more than one open version")
				}
				openSeen = true
				if i != len(rows)-1 {
					problems = append(problems, "metric "+id+" has an open version that is not the most recent")
				}
			}
			if i > 0 {
				prev := rows[i-1]
				if prev.ActiveTo == nil || *prev.ActiveTo >= row.ActiveFrom {
					problems = append(problems, "metric "+id+" has overlapping versions at "+row.ActiveFrom)
				}
			}
		}
	}
	sort.Strings(problems)
	return problems
}
