package codec

import (
	"errors"
	"testing"

	"github.com/averyross/scorecard/internal/apperrors"
	"github.com/averyross/scorecard/internal/models"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func numberDef(t models.MetricType, min, max, step float64) models.MetricDefinition {
	return models.MetricDefinition{
		MetricID: "m", Label: "Metric", Type: t,
		InputAttrs: models.InputAttrs{Min: fptr(min), Max: fptr(max), Step: fptr(step)},
	}
}

func TestParseNumbers(t *testing.T) {
	floatDef := numberDef(models.TypeNumberFloat, 0, 24, 0.1)
	intDef := numberDef(models.TypeNumberInt, 0, 10, 1)

	tests := []struct {
		def  models.MetricDefinition
		raw  string
		want any
	}{
		{floatDef, "7.4", 7.4},
		{floatDef, "  7.4  ", 7.4},
		{floatDef, "", nil},
		{floatDef, "abc", nil},
		{intDef, "3", 3.0},
		{intDef, "3.7", 3.0}, // truncates, never rounds
		{intDef, "", nil},
	}

	for _, tt := range tests {
		got := Parse(tt.def, tt.raw)
		if got != tt.want {
			t.Errorf("Parse(%s, %q) = %v, want %v", tt.def.Type, tt.raw, got, tt.want)
		}
	}
}

func TestParseBinary(t *testing.T) {
	def := models.MetricDefinition{MetricID: "b", Label: "Flag", Type: models.TypeBinaryYesNo}

	for _, raw := range []string{"true", "yes", "Y", "1", "on"} {
		if got := Parse(def, raw); got != true {
			t.Errorf("Parse(%q) = %v, want true", raw, got)
		}
	}
	for _, raw := range []string{"", "no", "false", "0", "maybe"} {
		if got := Parse(def, raw); got != false {
			t.Errorf("Parse(%q) = %v, want false", raw, got)
		}
	}
}

func TestParseText(t *testing.T) {
	def := models.MetricDefinition{MetricID: "t", Label: "Note", Type: models.TypeTextShort}
	if got := Parse(def, "  hello  "); got != "hello" {
		t.Errorf("text parse should trim, got %q", got)
	}
}

func TestParseSelect(t *testing.T) {
	single := models.MetricDefinition{MetricID: "s", Label: "Mood", Type: models.TypeSelectSingle}
	if got := Parse(single, ""); got != nil {
		t.Errorf("empty select_single should map to nil, got %v", got)
	}
	if got := Parse(single, "calm"); got != "calm" {
		t.Errorf("select_single parse = %v", got)
	}

	multi := models.MetricDefinition{MetricID: "m", Label: "Tags", Type: models.TypeSelectMulti}
	got := Parse(multi, "a, b ,c").([]string)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("select_multi parse = %v", got)
	}
	empty := Parse(multi, "").([]string)
	if len(empty) != 0 {
		t.Errorf("empty select_multi should be an empty slice, got %v", empty)
	}
}

func TestValidateBounds(t *testing.T) {
	def := numberDef(models.TypeNumberFloat, 0, 24, 0.1)
	def.Label = "Sleep"

	if err := Validate(def, 7.5); err != nil {
		t.Errorf("7.5 should be valid: %v", err)
	}
	if err := Validate(def, -1.0); err == nil {
		t.Error("below min should fail")
	}
	if err := Validate(def, 25.0); err == nil {
		t.Error("above max should fail")
	}

	var verr *apperrors.ValidationError
	if err := Validate(def, 25.0); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestValidateStepAlignment(t *testing.T) {
	def := numberDef(models.TypeNumberFloat, 0, 24, 0.1)

	// 7.4 is not exactly representable; the epsilon must absorb that.
	if err := Validate(def, 7.4); err != nil {
		t.Errorf("7.4 should align to step 0.1: %v", err)
	}
	if err := Validate(def, 7.45); err == nil {
		t.Error("7.45 should not align to step 0.1")
	}

	// Step alignment is anchored at min.
	offset := numberDef(models.TypeNumberFloat, 0.5, 10, 1)
	if err := Validate(offset, 2.5); err != nil {
		t.Errorf("2.5 should align from base 0.5: %v", err)
	}
	if err := Validate(offset, 2.0); err == nil {
		t.Error("2.0 should not align from base 0.5 with step 1")
	}
}

func TestValidateInteger(t *testing.T) {
	def := numberDef(models.TypeNumberInt, 0, 10, 1)
	def.Label = "Deep work"

	if err := Validate(def, 3.0); err != nil {
		t.Errorf("3 should be valid: %v", err)
	}
	if err := Validate(def, 3.5); err == nil {
		t.Error("fractional value should fail for number_int")
	}
	if err := Validate(def, -1.0); err == nil {
		t.Error("-1 should fail min bound")
	}
}

func TestValidateRequired(t *testing.T) {
	def := models.MetricDefinition{
		MetricID: "r", Label: "Reflection", Type: models.TypeTextShort,
		InputAttrs: models.InputAttrs{Required: true},
	}
	if err := Validate(def, ""); err == nil {
		t.Error("empty required text should fail")
	}
	if err := Validate(def, "done"); err != nil {
		t.Errorf("non-empty required text should pass: %v", err)
	}

	multi := models.MetricDefinition{
		MetricID: "tags", Label: "Tags", Type: models.TypeSelectMulti,
		Options:    []models.Option{{Value: "a", Label: "A"}},
		InputAttrs: models.InputAttrs{Required: true},
	}
	if err := Validate(multi, []string{}); err == nil {
		t.Error("empty required multi-select should fail")
	}
}

func TestValidateMaxLength(t *testing.T) {
	def := models.MetricDefinition{
		MetricID: "t", Label: "Artifact", Type: models.TypeTextShort,
		InputAttrs: models.InputAttrs{MaxLength: iptr(5)},
	}
	if err := Validate(def, "12345"); err != nil {
		t.Errorf("exactly maxlength should pass: %v", err)
	}
	if err := Validate(def, "123456"); err == nil {
		t.Error("over maxlength should fail")
	}
}

func TestValidateOptionMembership(t *testing.T) {
	def := models.MetricDefinition{
		MetricID: "mood", Label: "Mood", Type: models.TypeSelectSingle,
		Options: []models.Option{{Value: "calm", Label: "Calm"}, {Value: "tense", Label: "Tense"}},
	}
	if err := Validate(def, "calm"); err != nil {
		t.Errorf("known option should pass: %v", err)
	}
	if err := Validate(def, "angry"); err == nil {
		t.Error("unknown option should fail")
	}

	multi := def
	multi.Type = models.TypeSelectMulti
	if err := Validate(multi, []string{"calm", "tense"}); err != nil {
		t.Errorf("all-known options should pass: %v", err)
	}
	if err := Validate(multi, []string{"calm", "angry"}); err == nil {
		t.Error("any unknown option should fail")
	}
	// JSON-decoded form
	if err := Validate(multi, []any{"calm", "angry"}); err == nil {
		t.Error("unknown option in []any form should fail")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	floatDef := numberDef(models.TypeNumberFloat, 0, 24, 0.1)
	intDef := numberDef(models.TypeNumberInt, 0, 10, 1)
	boolDef := models.MetricDefinition{MetricID: "b", Label: "Flag", Type: models.TypeBinaryYesNo}
	textDef := models.MetricDefinition{MetricID: "t", Label: "Note", Type: models.TypeTextShort}
	multiDef := models.MetricDefinition{MetricID: "m", Label: "Tags", Type: models.TypeSelectMulti}

	tests := []struct {
		def models.MetricDefinition
		raw string
	}{
		{floatDef, "7.4"},
		{intDef, "3"},
		{boolDef, "true"},
		{textDef, "shipped parser"},
		{multiDef, "a,b"},
	}

	for _, tt := range tests {
		v := Parse(tt.def, tt.raw)
		if got := Format(tt.def, v); got != tt.raw {
			t.Errorf("Format(Parse(%q)) = %q for %s", tt.raw, got, tt.def.Type)
		}
	}

	if got := Format(floatDef, nil); got != "" {
		t.Errorf("nil should format as empty string, got %q", got)
	}
}
