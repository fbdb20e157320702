// Package codec implements the per-type value rules: parsing raw input into
// typed values, validating typed values against a metric definition's
// constraints, and formatting typed values back into editable form state.
package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/averyross/scorecard/internal/apperrors"
	"github.com/averyross/scorecard/internal/models"
)

// StepEpsilon is the floating-point tolerance used for step-alignment checks.
// Kept as a named constant so its effect on metrics with large steps can be
// reasoned about in one place.
const StepEpsilon = 1e-9

// Parse coerces raw input into the typed value for the definition's metric
// type. It never fails: numeric types map empty or unparseable input to nil,
// binary types map anything unrecognized to false, text trims, select_single
// maps empty to nil, select_multi splits comma-separated selections.
func Parse(def models.MetricDefinition, raw string) any {
	switch def.Type {
	case models.TypeNumberInt:
		f, ok := parseNumber(raw)
		if !ok {
			return nil
		}
		return float64(int64(f))
	case models.TypeNumberFloat:
		f, ok := parseNumber(raw)
		if !ok {
			return nil
		}
		return f
	case models.TypeBinaryYesNo, models.TypeBinaryPosNeg:
		return parseBool(raw)
	case models.TypeTextShort, models.TypeTextLong:
		return strings.TrimSpace(raw)
	case models.TypeSelectSingle:
		v := strings.TrimSpace(raw)
		if v == "" {
			return nil
		}
		return v
	case models.TypeSelectMulti:
		var selected []string
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				selected = append(selected, p)
			}
		}
		if selected == nil {
			selected = []string{}
		}
		return selected
	default:
		// Catalog normalization degrades unknown types to text_short, so this
		// branch only sees values that bypassed the catalog entirely.
		return strings.TrimSpace(raw)
	}
}

// Validate checks a typed value against the definition's constraints and
// returns a ValidationError describing the first violation, or nil.
func Validate(def models.MetricDefinition, value any) error {
	if def.InputAttrs.Required && isEmpty(value) {
		return apperrors.Validationf("%s is required", def.Label)
	}
	if isEmpty(value) {
		return nil
	}

	switch def.Type {
	case models.TypeNumberInt, models.TypeNumberFloat:
		return validateNumber(def, value)
	case models.TypeBinaryYesNo, models.TypeBinaryPosNeg:
		if _, ok := value.(bool); !ok {
			return apperrors.Validationf("%s must be a yes/no value", def.Label)
		}
		return nil
	case models.TypeTextShort, models.TypeTextLong:
		return validateText(def, value)
	case models.TypeSelectSingle:
		s, ok := AsString(value)
		if !ok {
			return apperrors.Validationf("%s must be a single selection", def.Label)
		}
		if !def.HasOption(s) {
			return apperrors.Validationf("%s has no option %q", def.Label, s)
		}
		return nil
	case models.TypeSelectMulti:
		for _, s := range AsStringSlice(value) {
			if !def.HasOption(s) {
				return apperrors.Validationf("%s has no option %q", def.Label, s)
			}
		}
		return nil
	default:
		return validateText(def, value)
	}
}

// Format renders a typed value back into a raw string for form state. Nil and
// NaN render as the empty string.
func Format(def models.MetricDefinition, value any) string {
	if value == nil {
		return ""
	}

	switch def.Type {
	case models.TypeNumberInt:
		f, ok := AsFloat(value)
		if !ok || math.IsNaN(f) {
			return ""
		}
		return strconv.FormatInt(int64(f), 10)
	case models.TypeNumberFloat:
		f, ok := AsFloat(value)
		if !ok || math.IsNaN(f) {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case models.TypeBinaryYesNo, models.TypeBinaryPosNeg:
		if AsBool(value) {
			return "true"
		}
		return "false"
	case models.TypeSelectMulti:
		return strings.Join(AsStringSlice(value), ",")
	default:
		s, _ := AsString(value)
		return s
	}
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1", "on", "+", "pos":
		return true
	}
	return false
}

func validateNumber(def models.MetricDefinition, value any) error {
	f, ok := AsFloat(value)
	if !ok {
		return apperrors.Validationf("%s must be a number", def.Label)
	}

	if def.Type == models.TypeNumberInt && f != math.Trunc(f) {
		return apperrors.Validationf("%s must be a whole number", def.Label)
	}

	attrs := def.InputAttrs
	if attrs.Min != nil && f < *attrs.Min {
		return apperrors.Validationf("%s must be at least %s", def.Label, trimFloat(*attrs.Min))
	}
	if attrs.Max != nil && f > *attrs.Max {
		return apperrors.Validationf("%s must be at most %s", def.Label, trimFloat(*attrs.Max))
	}

	if attrs.Step != nil && *attrs.Step > 0 {
		base := 0.0
		if attrs.Min != nil {
			base = *attrs.Min
		}
		if !stepAligned(f, base, *attrs.Step) {
			return apperrors.Validationf("%s must be in steps of %s", def.Label, trimFloat(*attrs.Step))
		}
	}

	return nil
}

// stepAligned reports whether v is reachable from base by integer multiples of
// step, within StepEpsilon.
func stepAligned(v, base, step float64) bool {
	diff := math.Abs(v - base)
	rem := math.Mod(diff, step)
	return rem < StepEpsilon || step-rem < StepEpsilon
}

func validateText(def models.MetricDefinition, value any) error {
	s, ok := AsString(value)
	if !ok {
		return apperrors.Validationf("%s must be text", def.Label)
	}
	if ml := def.InputAttrs.MaxLength; ml != nil && len([]rune(s)) > *ml {
		return apperrors.Validationf("%s must be at most %d characters", def.Label, *ml)
	}
	return nil
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

// AsFloat converts any numeric representation a JSON round trip can produce.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// AsBool converts a stored value to a boolean, treating anything but true as
// false.
func AsBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// AsString converts a stored value to a string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsStringSlice converts a stored multi-select value, accepting both the
// in-memory []string form and the []any form a JSON decode produces.
func AsStringSlice(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	}
	return nil
}
