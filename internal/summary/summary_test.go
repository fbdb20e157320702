package summary

import (
	"testing"
	"time"

	"github.com/averyross/scorecard/internal/catalog"
	"github.com/averyross/scorecard/internal/constants"
	"github.com/averyross/scorecard/internal/daystore"
	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/storage"
)

func fixedClock(dateStr string) func() time.Time {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newWeekFixture(t *testing.T) (*catalog.Catalog, *daystore.Store) {
	t.Helper()
	provider := storage.NewMemoryStore()
	if err := provider.Init(); err != nil {
		t.Fatal(err)
	}
	clock := fixedClock("2024-05-20")
	cat, err := catalog.Load(provider, clock)
	if err != nil {
		t.Fatal(err)
	}
	store, err := daystore.Load(provider, cat, clock)
	if err != nil {
		t.Fatal(err)
	}
	return cat, store
}

func TestSummarizeAverageAndCounts(t *testing.T) {
	cat, store := newWeekFixture(t)

	// Monday and Wednesday logged, partial values.
	if _, err := store.Save("2024-05-20", map[string]string{
		"sleep_hours": "7.0", "sugar_binge": "true", "deep_work_tech": "2", "one_sentence": "a",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("2024-05-22", map[string]string{
		"sleep_hours": "8.0", "deep_work_tech": "1", "one_sentence": "b",
	}); err != nil {
		t.Fatal(err)
	}

	sum, err := Summarize(cat, store.Scorecard(), "2024-05-20", fixedClock("2024-05-26"))
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}

	if sum.Week.StartMonday != "2024-05-20" || sum.Week.EndSunday != "2024-05-26" {
		t.Errorf("week span = %+v", sum.Week)
	}
	if sum.Summary.DaysLogged != 2 {
		t.Errorf("days logged = %d", sum.Summary.DaysLogged)
	}
	if len(sum.Days) != 2 || sum.Days[0].Day.ISODate != "2024-05-20" {
		t.Errorf("days should be ascending, got %d entries", len(sum.Days))
	}

	sleep := sum.Summary.Metrics["sleep_hours"]
	if sleep.Value != 7.5 || sleep.ValueCount != 2 {
		t.Errorf("sleep aggregate = %+v", sleep)
	}
	if sum.Summary.Physiology.SleepAvgHours == nil || *sum.Summary.Physiology.SleepAvgHours != 7.5 {
		t.Errorf("physiology view = %+v", sum.Summary.Physiology)
	}

	sugar := sum.Summary.Metrics["sugar_binge"]
	if sugar.Value != 1.0 {
		t.Errorf("sugar count = %v", sugar.Value)
	}
	if sugar.ValueCount != 2 {
		t.Errorf("count_true value_count should be the logged-day count, got %d", sugar.ValueCount)
	}

	tech := sum.Summary.Metrics["deep_work_tech"]
	if tech.Value != 3.0 || tech.ValueCount != 2 {
		t.Errorf("deep work sum = %+v", tech)
	}
	if sum.Summary.Execution.DeepWorkTechnicalTotal != 3.0 {
		t.Errorf("execution view = %+v", sum.Summary.Execution)
	}

	// latest takes the last value in ascending date order.
	latest := sum.Summary.Metrics["one_sentence"]
	if latest.Value != "b" || latest.ValueCount != 2 {
		t.Errorf("latest aggregate = %+v", latest)
	}
}

func TestSummarizeEmptyWeek(t *testing.T) {
	cat, store := newWeekFixture(t)

	sum, err := Summarize(cat, store.Scorecard(), "2024-05-20", fixedClock("2024-05-26"))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Summary.DaysLogged != 0 {
		t.Errorf("days logged = %d", sum.Summary.DaysLogged)
	}
	sleep := sum.Summary.Metrics["sleep_hours"]
	if sleep.Value != nil || sleep.ValueCount != 0 {
		t.Errorf("empty week average should be nil, got %+v", sleep)
	}
	if sum.Summary.Structure.Score != 0 {
		t.Errorf("structure score = %d", sum.Summary.Structure.Score)
	}
}

func TestSummarizeStructure(t *testing.T) {
	cat, store := newWeekFixture(t)
	st := models.WeekStructure{PrioritiesDefined: true, TwoCompleted: true}
	if err := store.SetWeekStructure("2024-05-20", st); err != nil {
		t.Fatal(err)
	}

	sum, err := Summarize(cat, store.Scorecard(), "2024-05-20", fixedClock("2024-05-26"))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Summary.Structure.Score != 2 || !sum.Summary.Structure.PrioritiesDefined {
		t.Errorf("structure = %+v", sum.Summary.Structure)
	}
}

func TestSummarizeRejectsNonMonday(t *testing.T) {
	cat, store := newWeekFixture(t)
	if _, err := Summarize(cat, store.Scorecard(), "2024-05-21", nil); err == nil {
		t.Error("non-Monday week start should fail")
	}
}

func TestSummarizeCountSelected(t *testing.T) {
	cat, store := newWeekFixture(t)

	def := models.MetricDefinition{
		MetricID: "focus_blocks", Label: "Focus blocks", Group: "Execution",
		Type: models.TypeSelectMulti, Aggregation: models.AggCountSelected,
		Options: []models.Option{
			{Value: "morning", Label: "Morning"},
			{Value: "afternoon", Label: "Afternoon"},
			{Value: "evening", Label: "Evening"},
		},
	}
	if err := cat.AppendVersion(def, "2024-05-20"); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Save("2024-05-20", map[string]string{"focus_blocks": "morning,evening"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("2024-05-21", map[string]string{"focus_blocks": "afternoon"}); err != nil {
		t.Fatal(err)
	}

	sum, err := Summarize(cat, store.Scorecard(), "2024-05-20", fixedClock("2024-05-26"))
	if err != nil {
		t.Fatal(err)
	}
	focus := sum.Summary.Metrics["focus_blocks"]
	if focus.Value != 3.0 {
		t.Errorf("count_selected should total selected options, got %v", focus.Value)
	}
	if focus.ValueCount != 2 {
		t.Errorf("value_count = %d", focus.ValueCount)
	}
}

func TestSummarizeUsesLatestRuleAcrossRedefinition(t *testing.T) {
	cat, store := newWeekFixture(t)

	if _, err := store.Save("2024-05-20", map[string]string{"caffeine_drinks": "2"}); err != nil {
		t.Fatal(err)
	}

	// Mid-week the rule changes from average to sum.
	def := models.MetricDefinition{
		MetricID: "caffeine_drinks", Label: "Caffeine", Unit: "drinks",
		Type: models.TypeNumberFloat, Aggregation: models.AggSum, Group: "Physiology",
	}
	if err := cat.AppendVersion(def, "2024-05-22"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("2024-05-23", map[string]string{"caffeine_drinks": "3"}); err != nil {
		t.Fatal(err)
	}

	sum, err := Summarize(cat, store.Scorecard(), "2024-05-20", fixedClock("2024-05-26"))
	if err != nil {
		t.Fatal(err)
	}
	caffeine := sum.Summary.Metrics["caffeine_drinks"]
	if caffeine.Aggregation != models.AggSum {
		t.Errorf("rule should come from the latest in-week definition, got %s", caffeine.Aggregation)
	}
	if caffeine.Value != 5.0 {
		t.Errorf("sum across the redefinition = %v", caffeine.Value)
	}

	// The snapshot embeds both version rows.
	rows := 0
	for _, row := range sum.Definitions {
		if row.MetricID == "caffeine_drinks" {
			rows++
		}
	}
	if rows != 2 {
		t.Errorf("expected both caffeine rows in snapshot, got %d", rows)
	}
}
