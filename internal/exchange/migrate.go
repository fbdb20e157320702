// Package exchange translates schema-tagged JSON payloads between earlier
// generations of the scorecard format and the current internal shape. It sits
// beside the catalog and the day store: payloads pass through here before they
// enter the store, and store blobs recorded by older builds are upgraded here
// on load.
package exchange

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/averyross/scorecard/internal/apperrors"
	"github.com/averyross/scorecard/internal/codec"
	"github.com/averyross/scorecard/internal/constants"
	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/utils"
)

// legacyField maps one dotted field path of the v2 day shape to its current
// metric_id. The table is the complete legacy surface; absent fields default
// to the type-appropriate empty value.
type legacyField struct {
	path     string
	metricID string
	typ      models.MetricType
}

var legacyDayFields = []legacyField{
	{"reflection.one_sentence", "one_sentence", models.TypeTextShort},
	{"physiology.sleep_hours", "sleep_hours", models.TypeNumberFloat},
	{"physiology.caffeine_drinks", "caffeine_drinks", models.TypeNumberFloat},
	{"physiology.sugar_binge", "sugar_binge", models.TypeBinaryYesNo},
	{"physiology.movement_20m", "movement_20m", models.TypeBinaryYesNo},
	{"physiology.weight_optional", "weight_optional", models.TypeNumberFloat},
	{"execution.deep_work_tech", "deep_work_tech", models.TypeNumberInt},
	{"execution.deep_work_creative", "deep_work_creative", models.TypeNumberInt},
	{"execution.artifact_technical", "artifact_technical", models.TypeTextShort},
	{"execution.artifact_creative", "artifact_creative", models.TypeTextShort},
}

// SchemaTag is a parsed "family.scope.vN" payload tag.
type SchemaTag struct {
	Family  string
	Scope   string
	Version int
}

// ParseSchemaTag splits and validates a payload's schema string. Unknown
// families and scopes fail with SchemaError; versions above what this build
// supports fail closed, never best-effort.
func ParseSchemaTag(schema string) (SchemaTag, error) {
	parts := strings.Split(schema, ".")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "v") {
		return SchemaTag{}, apperrors.Schemaf(schema, "unrecognized schema tag %q", schema)
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v"))
	if err != nil || version < 1 {
		return SchemaTag{}, apperrors.Schemaf(schema, "unrecognized schema version in %q", schema)
	}

	tag := SchemaTag{Family: parts[0], Scope: parts[1], Version: version}
	if tag.Family != constants.SchemaFamily {
		return SchemaTag{}, apperrors.Schemaf(schema, "unrecognized schema family %q", tag.Family)
	}

	var max int
	switch tag.Scope {
	case constants.ScopeDay:
		max = constants.MaxDayVersion
	case constants.ScopeWeek:
		max = constants.MaxWeekVersion
	case constants.ScopeAll:
		max = constants.MaxAllVersion
	default:
		return SchemaTag{}, apperrors.Schemaf(schema, "unrecognized schema scope %q", tag.Scope)
	}
	if tag.Version > max {
		return SchemaTag{}, apperrors.Schemaf(schema,
			"schema %q is newer than this build supports (max %s.v%d)", schema, tag.Scope, max)
	}

	return tag, nil
}

// DaySchema is the current day-scope schema tag.
func DaySchema() string {
	return fmt.Sprintf("%s.%s.v%d", constants.SchemaFamily, constants.ScopeDay, constants.MaxDayVersion)
}

// WeekSchema is the current week-scope schema tag.
func WeekSchema() string {
	return fmt.Sprintf("%s.%s.v%d", constants.SchemaFamily, constants.ScopeWeek, constants.MaxWeekVersion)
}

// AllSchema is the current all-scope schema tag.
func AllSchema() string {
	return fmt.Sprintf("%s.%s.v%d", constants.SchemaFamily, constants.ScopeAll, constants.MaxAllVersion)
}

// DecodeDayEntry upgrades a raw day payload to the current shape. Known
// versions are attempted newest first; the first shape that matches wins.
// The migrated flag reports whether the entry changed shape, which makes
// re-running migration over an already-current entry a no-op.
func DecodeDayEntry(raw json.RawMessage, now func() time.Time) (*models.DayEntry, bool, error) {
	var entry models.DayEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, apperrors.Parse(err)
	}

	// Current shape: a metrics map (with or without tag) or the migration
	// marker means the entry already went through the v3 upgrade.
	if entry.Metrics != nil || entry.Meta.MigratedToMetricMapV3 || entry.Schema == DaySchema() {
		if entry.Day.ISODate == "" {
			return nil, false, &apperrors.ParseError{Msg: "day payload missing day.iso_date"}
		}
		changed := backfillEntry(&entry)
		return &entry, changed, nil
	}

	return decodeLegacyDay(raw, now)
}

// decodeLegacyDay runs the static legacy field-path mapping over a v2-shaped
// payload.
func decodeLegacyDay(raw json.RawMessage, now func() time.Time) (*models.DayEntry, bool, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, apperrors.Parse(err)
	}

	iso := lookupString(doc, "day.iso_date")
	if iso == "" {
		return nil, false, &apperrors.ParseError{Msg: "day payload missing day.iso_date"}
	}

	metrics := make(map[string]any, len(legacyDayFields))
	for _, f := range legacyDayFields {
		v, ok := lookupPath(doc, f.path)
		if !ok || v == nil {
			metrics[f.metricID] = typeDefault(f.typ)
			continue
		}
		metrics[f.metricID] = coerceLegacy(f.typ, v)
	}

	entry := &models.DayEntry{
		Schema:  DaySchema(),
		Day:     models.DayInfo{ISODate: iso, WeekMonday: lookupString(doc, "day.week_monday")},
		Metrics: metrics,
		Meta: models.EntryMeta{
			MigratedToMetricMapV3: true,
			MigratedAtISO:         now().UTC().Format(time.RFC3339),
		},
	}
	backfillEntry(entry)
	return entry, true, nil
}

// backfillEntry fills auxiliary fields added in later sub-revisions of the
// current shape. Returns whether anything was missing.
func backfillEntry(entry *models.DayEntry) bool {
	changed := false
	if entry.Schema != DaySchema() {
		entry.Schema = DaySchema()
		changed = true
	}
	if entry.Day.WeekMonday == "" {
		if monday, err := utils.WeekMonday(entry.Day.ISODate); err == nil {
			entry.Day.WeekMonday = monday
			changed = true
		}
	}
	if entry.Metrics == nil {
		entry.Metrics = make(map[string]any)
		changed = true
	}
	return changed
}

// MigrateDays upgrades every day blob of a loaded store, newest shape first.
// Already-migrated entries pass through untouched, so the operation is
// idempotent.
func MigrateDays(raw map[string]json.RawMessage, now func() time.Time) (map[string]*models.DayEntry, int, error) {
	days := make(map[string]*models.DayEntry, len(raw))
	migrated := 0

	for iso, data := range raw {
		entry, changed, err := DecodeDayEntry(data, now)
		if err != nil {
			return nil, 0, fmt.Errorf("day %s: %w", iso, err)
		}
		if entry.Day.ISODate == "" {
			entry.Day.ISODate = iso
		}
		days[iso] = entry
		if changed {
			migrated++
		}
	}

	return days, migrated, nil
}

func typeDefault(t models.MetricType) any {
	switch t {
	case models.TypeNumberInt, models.TypeNumberFloat, models.TypeSelectSingle:
		return nil
	case models.TypeSelectMulti:
		return []string{}
	case models.TypeBinaryYesNo, models.TypeBinaryPosNeg:
		return false
	default:
		return ""
	}
}

func coerceLegacy(t models.MetricType, v any) any {
	switch t {
	case models.TypeNumberInt, models.TypeNumberFloat:
		if f, ok := codec.AsFloat(v); ok {
			return f
		}
		return nil
	case models.TypeBinaryYesNo, models.TypeBinaryPosNeg:
		return truthy(v)
	case models.TypeSelectMulti:
		if s := codec.AsStringSlice(v); s != nil {
			return s
		}
		return []string{}
	default:
		if s, ok := codec.AsString(v); ok {
			return s
		}
		return fmt.Sprint(v)
	}
}

// truthy mirrors the loose boolean coercion legacy payloads were written
// under: null, false, zero, and the empty string are false.
func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != ""
	}
	return true
}

func lookupPath(doc map[string]any, dotted string) (any, bool) {
	parts := strings.Split(dotted, ".")
	var cur any = doc
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func lookupString(doc map[string]any, dotted string) string {
	v, ok := lookupPath(doc, dotted)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
