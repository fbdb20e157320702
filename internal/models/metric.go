package models

// MetricType is the closed set of value shapes a metric can take. Parsing,
// validation, formatting, and aggregation all switch exhaustively over these;
// adding a type means touching every switch, on purpose.
type MetricType string

const (
	TypeNumberInt    MetricType = "number_int"
	TypeNumberFloat  MetricType = "number_float"
	TypeBinaryYesNo  MetricType = "binary_yes_no"
	TypeBinaryPosNeg MetricType = "binary_pos_neg"
	TypeTextShort    MetricType = "text_short"
	TypeTextLong     MetricType = "text_long"
	TypeSelectSingle MetricType = "select_single"
	TypeSelectMulti  MetricType = "select_multi"
)

// MetricTypes lists every supported metric type in display order.
var MetricTypes = []MetricType{
	TypeNumberInt, TypeNumberFloat,
	TypeBinaryYesNo, TypeBinaryPosNeg,
	TypeTextShort, TypeTextLong,
	TypeSelectSingle, TypeSelectMulti,
}

// Known reports whether t is one of the supported metric types.
func (t MetricType) Known() bool {
	switch t {
	case TypeNumberInt, TypeNumberFloat, TypeBinaryYesNo, TypeBinaryPosNeg,
		TypeTextShort, TypeTextLong, TypeSelectSingle, TypeSelectMulti:
		return true
	}
	return false
}

// Numeric reports whether values of this type are numbers.
func (t MetricType) Numeric() bool {
	return t == TypeNumberInt || t == TypeNumberFloat
}

// Binary reports whether values of this type are booleans.
func (t MetricType) Binary() bool {
	return t == TypeBinaryYesNo || t == TypeBinaryPosNeg
}

// Text reports whether values of this type are free text.
func (t MetricType) Text() bool {
	return t == TypeTextShort || t == TypeTextLong
}

// Aggregation determines how a metric's daily values combine into a weekly
// figure.
type Aggregation string

const (
	AggAverage       Aggregation = "average"
	AggSum           Aggregation = "sum"
	AggCountTrue     Aggregation = "count_true"
	AggCountSelected Aggregation = "count_selected"
	AggLatest        Aggregation = "latest"
	AggNone          Aggregation = "none"
)

// Aggregations lists every supported aggregation rule.
var Aggregations = []Aggregation{
	AggAverage, AggSum, AggCountTrue, AggCountSelected, AggLatest, AggNone,
}

// Known reports whether a is one of the supported aggregation rules.
func (a Aggregation) Known() bool {
	switch a {
	case AggAverage, AggSum, AggCountTrue, AggCountSelected, AggLatest, AggNone:
		return true
	}
	return false
}

// Option is one selectable choice of a select-type metric.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// InputAttrs carries validation and form constraints whose semantics the value
// codec interprets.
type InputAttrs struct {
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Step        *float64 `json:"step,omitempty"`
	MaxLength   *int     `json:"maxlength,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// MetricDefinition is one immutable version row of a metric's contract, valid
// over the inclusive window [ActiveFrom, ActiveTo]. Rows are never mutated in
// place once persisted: edits append a new row, removal closes the open row.
//
// Shape invariants:
//   - MetricID is stable and never repurposed for a different meaning.
//   - ActiveFrom / ActiveTo are inclusive ISO dates; nil ActiveTo means open.
//   - Options is only populated for select-type metrics.
type MetricDefinition struct {
	VersionID   string      `json:"version_id,omitempty"`
	MetricID    string      `json:"metric_id"`
	Label       string      `json:"label"`
	Unit        string      `json:"unit,omitempty"`
	Group       string      `json:"group,omitempty"`
	Type        MetricType  `json:"type"`
	Options     []Option    `json:"options,omitempty"`
	Aggregation Aggregation `json:"aggregation"`
	ActiveFrom  string      `json:"active_from"`
	ActiveTo    *string     `json:"active_to"`
	InputAttrs  InputAttrs  `json:"input_attrs"`
}

// ActiveOn reports whether this version row's validity window contains the
// given date. ISO date strings compare correctly lexicographically.
func (d MetricDefinition) ActiveOn(dayISO string) bool {
	if d.ActiveFrom != "" && d.ActiveFrom > dayISO {
		return false
	}
	if d.ActiveTo != nil && *d.ActiveTo < dayISO {
		return false
	}
	return true
}

// Open reports whether this row has no closing date.
func (d MetricDefinition) Open() bool {
	return d.ActiveTo == nil
}

// HasOption reports whether v is one of the definition's option values.
func (d MetricDefinition) HasOption(v string) bool {
	for _, opt := range d.Options {
		if opt.Value == v {
			return true
		}
	}
	return false
}
