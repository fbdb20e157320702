package catalog

import "github.com/averyross/scorecard/internal/models"

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

// legacyTypeMap remaps metric type tokens written by earlier catalog
// generations. Anything unrecognized even after remapping degrades to
// text_short so old data always stays viewable.
var legacyTypeMap = map[string]models.MetricType{
	"number":  models.TypeNumberFloat,
	"integer": models.TypeNumberInt,
	"boolean": models.TypeBinaryYesNo,
	"text":    models.TypeTextShort,
	"select":  models.TypeSelectSingle,
}

// legacyAggMap remaps aggregation tokens from earlier generations.
// Unrecognized rules degrade to none.
var legacyAggMap = map[string]models.Aggregation{
	"avg": models.AggAverage,
}

// DefaultDefinitions returns the seed catalog used when no persisted catalog
// exists. All rows open on 2024-01-01, the date the scorecard practice
// started.
func DefaultDefinitions() []models.MetricDefinition {
	return []models.MetricDefinition{
		{
			MetricID: "one_sentence", Label: "One-sentence reflection",
			Type: models.TypeTextShort, Aggregation: models.AggLatest,
			Group: "Reflection", ActiveFrom: "2024-01-01",
			InputAttrs: models.InputAttrs{MaxLength: iptr(200), Placeholder: "Concrete: what moved, what leaked, what mattered."},
		},
		{
			MetricID: "sleep_hours", Label: "Sleep", Unit: "hours",
			Type: models.TypeNumberFloat, Aggregation: models.AggAverage,
			Group: "Physiology", ActiveFrom: "2024-01-01",
			InputAttrs: models.InputAttrs{Min: fptr(0), Max: fptr(24), Step: fptr(0.1), Placeholder: "e.g., 7.4"},
		},
		{
			MetricID: "caffeine_drinks", Label: "Caffeine", Unit: "drinks",
			Type: models.TypeNumberFloat, Aggregation: models.AggAverage,
			Group: "Physiology", ActiveFrom: "2024-01-01",
			InputAttrs: models.InputAttrs{Min: fptr(0), Max: fptr(20), Step: fptr(0.1), Placeholder: "e.g., 2"},
		},
		{
			MetricID: "sugar_binge", Label: "Sugar binge",
			Type: models.TypeBinaryYesNo, Aggregation: models.AggCountTrue,
			Group: "Physiology", ActiveFrom: "2024-01-01",
		},
		{
			MetricID: "movement_20m", Label: "Movement 20+ mins",
			Type: models.TypeBinaryYesNo, Aggregation: models.AggCountTrue,
			Group: "Physiology", ActiveFrom: "2024-01-01",
		},
		{
			MetricID: "deep_work_tech", Label: "Deep work sessions (tech)", Unit: "sessions",
			Type: models.TypeNumberInt, Aggregation: models.AggSum,
			Group: "Execution", ActiveFrom: "2024-01-01",
			InputAttrs: models.InputAttrs{Min: fptr(0), Max: fptr(10), Step: fptr(1), Placeholder: "0-10"},
		},
		{
			MetricID: "deep_work_creative", Label: "Deep work sessions (creative)", Unit: "sessions",
			Type: models.TypeNumberInt, Aggregation: models.AggSum,
			Group: "Execution", ActiveFrom: "2024-01-01",
			InputAttrs: models.InputAttrs{Min: fptr(0), Max: fptr(10), Step: fptr(1), Placeholder: "0-10"},
		},
		{
			MetricID: "weight_optional", Label: "Optional: weight", Unit: "kg",
			Type: models.TypeNumberFloat, Aggregation: models.AggLatest,
			Group: "Physiology", ActiveFrom: "2024-01-01",
			InputAttrs: models.InputAttrs{Min: fptr(0), Step: fptr(0.1), Placeholder: "optional"},
		},
		{
			MetricID: "artifact_technical", Label: "Artifact (tech)",
			Type: models.TypeTextShort, Aggregation: models.AggNone,
			Group: "Execution", ActiveFrom: "2024-01-01",
			InputAttrs: models.InputAttrs{MaxLength: iptr(140), Placeholder: "e.g., committed input parsing + validation."},
		},
		{
			MetricID: "artifact_creative", Label: "Artifact (creative)",
			Type: models.TypeTextShort, Aggregation: models.AggNone,
			Group: "Execution", ActiveFrom: "2024-01-01",
			InputAttrs: models.InputAttrs{MaxLength: iptr(140), Placeholder: "e.g., 600 words; revised Scene 1."},
		},
	}
}
