// Package summary computes weekly rollups. A summary is derived entirely from
// the day entries and the catalog; nothing here is persisted.
package summary

import (
	"sort"
	"time"

	"github.com/averyross/scorecard/internal/apperrors"
	"github.com/averyross/scorecard/internal/catalog"
	"github.com/averyross/scorecard/internal/codec"
	"github.com/averyross/scorecard/internal/exchange"
	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/utils"
)

// Summarize rolls up one week, Monday through Sunday. Each day's values are
// interpreted against the definitions effective on that day; the aggregation
// rule for a metric comes from its latest definition in force during the week,
// so a mid-week redefinition aggregates under the newer rule.
func Summarize(cat *catalog.Catalog, sc *models.Scorecard, weekMonday string, now func() time.Time) (*models.WeekSummary, error) {
	if now == nil {
		now = time.Now
	}

	monday, err := utils.WeekMonday(weekMonday)
	if err != nil {
		return nil, apperrors.Validationf("week start %q is not a valid date", weekMonday)
	}
	if monday != weekMonday {
		return nil, apperrors.Validationf("week start %s is not a Monday (week begins %s)", weekMonday, monday)
	}

	dates, err := utils.WeekDates(monday)
	if err != nil {
		return nil, err
	}
	sunday := dates[len(dates)-1]

	var days []*models.DayEntry
	ruleDef := make(map[string]models.MetricDefinition)
	values := make(map[string][]any)
	loggedDays := make(map[string]int)

	for _, date := range dates {
		defs := cat.ResolveActive(date)
		entry, logged := sc.Days[date]
		if logged {
			days = append(days, entry)
		}
		for _, def := range defs {
			ruleDef[def.MetricID] = def
			if !logged {
				continue
			}
			loggedDays[def.MetricID]++
			v := entry.MetricValue(def.MetricID, nil)
			if !isEmptyValue(v) {
				values[def.MetricID] = append(values[def.MetricID], v)
			}
		}
	}

	metrics := make(map[string]models.MetricAggregate, len(ruleDef))
	for id, def := range ruleDef {
		metrics[id] = aggregate(def, values[id], loggedDays[id])
	}

	structure := models.WeekStructure{}
	if rec, ok := sc.Weeks[monday]; ok && rec != nil {
		structure = rec.Structure
	}

	body := models.SummaryBody{
		DaysLogged: len(days),
		Metrics:    metrics,
		Physiology: physiologyView(metrics),
		Execution:  executionView(metrics),
		Structure:  models.StructureSummary{WeekStructure: structure, Score: structure.Score()},
	}

	return &models.WeekSummary{
		Schema:      exchange.WeekSchema(),
		Week:        models.WeekInfo{StartMonday: monday, EndSunday: sunday, Timezone: utils.Timezone()},
		Summary:     body,
		Days:        days,
		Definitions: cat.Snapshot(monday, sunday),
		Meta:        exchange.NewExportMeta(now),
	}, nil
}

// aggregate applies one metric's rule to its week of values. The switch is
// exhaustive over the closed rule set.
func aggregate(def models.MetricDefinition, vals []any, logged int) models.MetricAggregate {
	agg := models.MetricAggregate{MetricID: def.MetricID, Aggregation: def.Aggregation}

	switch def.Aggregation {
	case models.AggAverage:
		nums := floats(vals)
		agg.ValueCount = len(nums)
		if len(nums) > 0 {
			agg.Value = mean(nums)
		}
	case models.AggSum:
		nums := floats(vals)
		agg.ValueCount = len(nums)
		agg.Value = total(nums)
	case models.AggCountTrue:
		// ValueCount here is how many days were logged at all, so a
		// dashboard can show "2 of 5 logged days".
		count := 0
		for _, v := range vals {
			if codec.AsBool(v) {
				count++
			}
		}
		agg.Value = float64(count)
		agg.ValueCount = logged
	case models.AggCountSelected:
		// Array values contribute their element count, scalar values
		// contribute 1 each.
		count := 0
		for _, v := range vals {
			if selections := codec.AsStringSlice(v); selections != nil {
				count += len(selections)
			} else {
				count++
			}
		}
		agg.Value = float64(count)
		agg.ValueCount = len(vals)
	case models.AggLatest:
		agg.ValueCount = len(vals)
		if len(vals) > 0 {
			agg.Value = vals[len(vals)-1]
		}
	case models.AggNone:
		agg.ValueCount = len(vals)
	}

	return agg
}

// physiologyView derives the fixed physiology tile fields from the generic
// aggregate map so the two can never drift apart.
func physiologyView(metrics map[string]models.MetricAggregate) models.PhysiologySummary {
	view := models.PhysiologySummary{}

	if a, ok := metrics["sleep_hours"]; ok {
		view.SleepAvgHours = asFloatPtr(a.Value)
		view.SleepDaysLogged = a.ValueCount
	}
	if a, ok := metrics["caffeine_drinks"]; ok {
		view.CaffeineAvgDrinks = asFloatPtr(a.Value)
		view.CaffeineDaysLogged = a.ValueCount
	}
	if a, ok := metrics["sugar_binge"]; ok {
		if f, found := codec.AsFloat(a.Value); found {
			view.SugarBingeDays = int(f)
		}
	}
	if a, ok := metrics["movement_20m"]; ok {
		if f, found := codec.AsFloat(a.Value); found {
			view.MovementDays = int(f)
		}
	}
	return view
}

func executionView(metrics map[string]models.MetricAggregate) models.ExecutionSummary {
	view := models.ExecutionSummary{}
	if a, ok := metrics["deep_work_tech"]; ok {
		if f, found := codec.AsFloat(a.Value); found {
			view.DeepWorkTechnicalTotal = f
		}
	}
	if a, ok := metrics["deep_work_creative"]; ok {
		if f, found := codec.AsFloat(a.Value); found {
			view.DeepWorkCreativeTotal = f
		}
	}
	return view
}

func floats(vals []any) []float64 {
	var out []float64
	for _, v := range vals {
		if f, ok := codec.AsFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func mean(nums []float64) float64 {
	return total(nums) / float64(len(nums))
}

func total(nums []float64) float64 {
	sum := 0.0
	for _, f := range nums {
		sum += f
	}
	return sum
}

func asFloatPtr(v any) *float64 {
	if f, ok := codec.AsFloat(v); ok {
		return &f
	}
	return nil
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}

// MetricOrder returns the metric ids of a summary sorted for stable display,
// grouped the way the catalog groups them.
func MetricOrder(metrics map[string]models.MetricAggregate) []string {
	ids := make([]string, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
