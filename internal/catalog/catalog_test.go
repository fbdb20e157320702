package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/averyross/scorecard/internal/apperrors"
	"github.com/averyross/scorecard/internal/constants"
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

func loadTestCatalog(t *testing.T, today string) (*Catalog, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	if err := store.Init(); err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	cat, err := Load(store, fixedClock(today))
	if err != nil {
		t.Fatalf("catalog load failed: %v", err)
	}
	return cat, store
}

func TestLoadSeedsDefaults(t *testing.T) {
	cat, store := loadTestCatalog(t, "2024-06-01")

	defs := cat.Definitions()
	if len(defs) != len(DefaultDefinitions()) {
		t.Fatalf("expected %d seeded rows, got %d", len(DefaultDefinitions()), len(defs))
	}

	if _, ok, _ := store.GetBlob(constants.CatalogBlobKey); !ok {
		t.Error("seeded catalog was not persisted")
	}

	for _, def := range defs {
		if def.VersionID == "" {
			t.Errorf("seeded row %s has no version id", def.MetricID)
		}
	}
}

func TestLoadNormalizesLegacyTokens(t *testing.T) {
	store := storage.NewMemoryStore()
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	legacy := `{"version":1,"definitions":[
		{"metric_id":"sleep_hours","label":"Sleep","type":"number","aggregation":"avg","active_from":"2024-01-01","active_to":null,"input_attrs":{}},
		{"metric_id":"mystery","label":"Mystery","type":"hologram","aggregation":"quantile","active_from":"2024-01-01","active_to":null,"input_attrs":{}}
	]}`
	if err := store.SetBlob(constants.CatalogBlobKey, []byte(legacy)); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(store, fixedClock("2024-06-01"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	sleep, ok := cat.Resolve("sleep_hours", "2024-06-01")
	if !ok {
		t.Fatal("sleep_hours not resolved")
	}
	if sleep.Type != models.TypeNumberFloat {
		t.Errorf("legacy 'number' should remap to number_float, got %s", sleep.Type)
	}
	if sleep.Aggregation != models.AggAverage {
		t.Errorf("legacy 'avg' should remap to average, got %s", sleep.Aggregation)
	}

	mystery, ok := cat.Resolve("mystery", "2024-06-01")
	if !ok {
		t.Fatal("mystery not resolved")
	}
	if mystery.Type != models.TypeTextShort {
		t.Errorf("unrecognized type should degrade to text_short, got %s", mystery.Type)
	}
	if mystery.Aggregation != models.AggNone {
		t.Errorf("unrecognized aggregation should degrade to none, got %s", mystery.Aggregation)
	}
}

func TestLoadCorruptBlobFallsBackToDefaults(t *testing.T) {
	store := storage.NewMemoryStore()
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	if err := store.SetBlob(constants.CatalogBlobKey, []byte(`{"definitions":`)); err != nil {
		// The memory store accepts any bytes; only the JSON file store insists
		// on valid JSON.
		t.Fatal(err)
	}

	cat, err := Load(store, fixedClock("2024-06-01"))
	if err != nil {
		t.Fatalf("load should recover from corruption: %v", err)
	}
	if len(cat.Definitions()) != len(DefaultDefinitions()) {
		t.Errorf("expected seeded defaults after corruption, got %d rows", len(cat.Definitions()))
	}
}

func TestResolveUsesMaximalActiveFrom(t *testing.T) {
	cat, _ := loadTestCatalog(t, "2024-06-01")

	newVersion := models.MetricDefinition{
		MetricID: "sleep_hours", Label: "Sleep (tracked)", Unit: "hours",
		Type: models.TypeNumberFloat, Aggregation: models.AggAverage, Group: "Physiology",
	}
	if err := cat.AppendVersion(newVersion, "2024-06-15"); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	before, ok := cat.Resolve("sleep_hours", "2024-06-14")
	if !ok || before.Label != "Sleep" {
		t.Errorf("day before cutover should resolve the old row, got %+v ok=%v", before, ok)
	}

	after, ok := cat.Resolve("sleep_hours", "2024-06-15")
	if !ok || after.Label != "Sleep (tracked)" {
		t.Errorf("cutover day should resolve the new row, got %+v ok=%v", after, ok)
	}
}

func TestAppendVersionForwardOnlyGuard(t *testing.T) {
	cat, _ := loadTestCatalog(t, "2024-06-01")
	before := cat.Definitions()

	def := models.MetricDefinition{
		MetricID: "sleep_hours", Label: "Sleep v2",
		Type: models.TypeNumberFloat, Aggregation: models.AggAverage,
	}
	err := cat.AppendVersion(def, "2024-05-31")
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for backdated append, got %v", err)
	}

	after := cat.Definitions()
	if len(after) != len(before) {
		t.Error("failed append must leave the catalog unchanged")
	}
}

func TestAppendVersionClosesPreviousOpenRow(t *testing.T) {
	cat, _ := loadTestCatalog(t, "2024-06-01")

	def := models.MetricDefinition{
		MetricID: "caffeine_drinks", Label: "Caffeine (cups)", Unit: "cups",
		Type: models.TypeNumberFloat, Aggregation: models.AggAverage, Group: "Physiology",
	}
	if err := cat.AppendVersion(def, "2024-06-10"); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	open := 0
	for _, row := range cat.Definitions() {
		if row.MetricID != "caffeine_drinks" {
			continue
		}
		if row.Open() {
			open++
			if row.ActiveFrom != "2024-06-10" {
				t.Errorf("open row should be the new one, got active_from %s", row.ActiveFrom)
			}
		} else if row.ActiveTo == nil || *row.ActiveTo != "2024-06-09" {
			t.Errorf("previous row should close the day before cutover, got %v", row.ActiveTo)
		}
	}
	if open != 1 {
		t.Errorf("expected exactly one open row, got %d", open)
	}

	if problems := cat.CheckInvariants(); len(problems) != 0 {
		t.Errorf("invariant check failed: %v", problems)
	}
}

func TestAppendVersionRejectsBadMetricID(t *testing.T) {
	cat, _ := loadTestCatalog(t, "2024-06-01")
	def := models.MetricDefinition{
		MetricID: "Sleep Hours!", Label: "Bad",
		Type: models.TypeNumberFloat, Aggregation: models.AggNone,
	}
	var verr *apperrors.ValidationError
	if err := cat.AppendVersion(def, "2024-06-01"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for bad metric id, got %v", err)
	}
}

func TestAppendVersionRequiresOptionsForSelect(t *testing.T) {
	cat, _ := loadTestCatalog(t, "2024-06-01")
	def := models.MetricDefinition{
		MetricID: "mood", Label: "Mood",
		Type: models.TypeSelectSingle, Aggregation: models.AggLatest,
	}
	var verr *apperrors.ValidationError
	if err := cat.AppendVersion(def, "2024-06-01"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for select without options, got %v", err)
	}

	def.Options = []models.Option{{Value: "calm", Label: "Calm"}}
	if err := cat.AppendVersion(def, "2024-06-01"); err != nil {
		t.Errorf("select with options should append: %v", err)
	}
}

func TestRetire(t *testing.T) {
	cat, _ := loadTestCatalog(t, "2024-06-01")

	if err := cat.Retire("sleep_hours", "2024-06-01"); err != nil {
		t.Fatalf("retire failed: %v", err)
	}

	if _, ok := cat.Resolve("sleep_hours", "2024-06-01"); !ok {
		t.Error("metric should still resolve on the retire date itself")
	}
	if _, ok := cat.Resolve("sleep_hours", "2024-06-02"); ok {
		t.Error("metric should no longer resolve after the retire date")
	}
}

func TestRetireForwardOnlyGuard(t *testing.T) {
	cat, _ := loadTestCatalog(t, "2024-06-01")
	var verr *apperrors.ValidationError
	if err := cat.Retire("sleep_hours", "2024-05-01"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for backdated retire, got %v", err)
	}
}

func TestRetireUnknownMetric(t *testing.T) {
	cat, _ := loadTestCatalog(t, "2024-06-01")
	var nerr *apperrors.NotFoundError
	if err := cat.Retire("does_not_exist", "2024-06-01"); !errors.As(err, &nerr) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestResolveActiveSortedByGroupThenID(t *testing.T) {
	cat, _ := loadTestCatalog(t, "2024-06-01")
	defs := cat.ResolveActive("2024-06-01")

	for i := 1; i < len(defs); i++ {
		prev, cur := defs[i-1], defs[i]
		if prev.Group > cur.Group || (prev.Group == cur.Group && prev.MetricID > cur.MetricID) {
			t.Errorf("definitions out of order: %s/%s before %s/%s", prev.Group, prev.MetricID, cur.Group, cur.MetricID)
		}
	}

	seen := make(map[string]bool)
	for _, def := range defs {
		if seen[def.MetricID] {
			t.Errorf("metric %s resolved more than once", def.MetricID)
		}
		seen[def.MetricID] = true
	}
}

func TestSnapshotIntersectsRange(t *testing.T) {
	cat, _ := loadTestCatalog(t, "2024-06-01")

	def := models.MetricDefinition{
		MetricID: "sleep_hours", Label: "Sleep v2", Unit: "hours",
		Type: models.TypeNumberFloat, Aggregation: models.AggAverage, Group: "Physiology",
	}
	if err := cat.AppendVersion(def, "2024-06-15"); err != nil {
		t.Fatal(err)
	}

	// A week spanning the cutover sees both sleep rows.
	snap := cat.Snapshot("2024-06-10", "2024-06-16")
	sleepRows := 0
	for _, row := range snap {
		if row.MetricID == "sleep_hours" {
			sleepRows++
		}
	}
	if sleepRows != 2 {
		t.Errorf("expected both sleep_hours rows in snapshot, got %d", sleepRows)
	}

	// A week entirely after the cutover sees only the new row.
	snap = cat.Snapshot("2024-06-17", "2024-06-23")
	for _, row := range snap {
		if row.MetricID == "sleep_hours" && row.ActiveFrom != "2024-06-15" {
			t.Errorf("closed row should not appear for a post-cutover range: %+v", row)
		}
	}
}
