// Package tui is the interactive front end: a day tab for logging today's
// metrics through a form generated from the active definitions, and a week tab
// showing the rollup.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/huh"

	"github.com/averyross/scorecard/internal/catalog"
	"github.com/averyross/scorecard/internal/codec"
	"github.com/averyross/scorecard/internal/daystore"
	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/utils"
)

type SessionState int

const (
	StateDay SessionState = iota
	StateWeek
	StateEditDay
	StateEditStructure
)

// structureForm backs the week-structure confirm fields.
type structureForm struct {
	PrioritiesDefined bool
	TwoCompleted      bool
	WeeklyReviewDone  bool
}

type Model struct {
	cat   *catalog.Catalog
	store *daystore.Store
	now   func() time.Time

	state SessionState
	keys  KeyMap
	help  help.Model

	date       string
	weekMonday string

	form       *huh.Form
	formDefs   []models.MetricDefinition
	textVals   map[string]*string
	boolVals   map[string]*bool
	multiVal   map[string]*[]string
	structVals *structureForm

	status   string
	statusOK bool
	quitting bool
	width    int
	height   int
}

func NewModel(cat *catalog.Catalog, store *daystore.Store, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	today := utils.Today(now)
	monday, _ := utils.WeekMonday(today)
	return Model{
		cat:        cat,
		store:      store,
		now:        now,
		state:      StateDay,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		date:       today,
		weekMonday: monday,
	}
}

// buildDayForm generates a huh form from the definitions effective on the
// shown date, prefilled from the saved entry if one exists.
func (m *Model) buildDayForm() {
	defs := m.cat.ResolveActive(m.date)
	entry, _ := m.store.Get(m.date)

	m.formDefs = defs
	m.textVals = make(map[string]*string)
	m.boolVals = make(map[string]*bool)
	m.multiVal = make(map[string]*[]string)

	var groups []*huh.Group
	var fields []huh.Field
	group := ""
	flush := func() {
		if len(fields) > 0 {
			groups = append(groups, huh.NewGroup(fields...).Title(group))
			fields = nil
		}
	}

	for _, def := range defs {
		if def.Group != group {
			flush()
			group = def.Group
		}
		stored := entry.MetricValue(def.MetricID, nil)

		switch def.Type {
		case models.TypeBinaryYesNo, models.TypeBinaryPosNeg:
			v := codec.AsBool(stored)
			m.boolVals[def.MetricID] = &v
			fields = append(fields, huh.NewConfirm().
				Title(def.Label).
				Value(&v))
		case models.TypeSelectSingle:
			v := codec.Format(def, stored)
			m.textVals[def.MetricID] = &v
			fields = append(fields, huh.NewSelect[string]().
				Title(def.Label).
				Options(selectOptions(def, true)...).
				Value(&v))
		case models.TypeSelectMulti:
			v := codec.AsStringSlice(stored)
			m.multiVal[def.MetricID] = &v
			fields = append(fields, huh.NewMultiSelect[string]().
				Title(def.Label).
				Options(selectOptions(def, false)...).
				Value(&v))
		case models.TypeTextLong:
			v := codec.Format(def, stored)
			m.textVals[def.MetricID] = &v
			fields = append(fields, huh.NewText().
				Title(def.Label).
				Placeholder(def.InputAttrs.Placeholder).
				Validate(fieldValidator(def)).
				Value(&v))
		default:
			v := codec.Format(def, stored)
			m.textVals[def.MetricID] = &v
			fields = append(fields, huh.NewInput().
				Title(inputTitle(def)).
				Placeholder(def.InputAttrs.Placeholder).
				Validate(fieldValidator(def)).
				Value(&v))
		}
	}
	flush()

	m.form = huh.NewForm(groups...)
}

func inputTitle(def models.MetricDefinition) string {
	if def.Unit != "" {
		return def.Label + " (" + def.Unit + ")"
	}
	return def.Label
}

// fieldValidator validates raw input live, so errors surface in the form
// instead of at save time.
func fieldValidator(def models.MetricDefinition) func(string) error {
	return func(raw string) error {
		return codec.Validate(def, codec.Parse(def, raw))
	}
}

func selectOptions(def models.MetricDefinition, withNone bool) []huh.Option[string] {
	var opts []huh.Option[string]
	if withNone {
		opts = append(opts, huh.NewOption("(none)", ""))
	}
	for _, o := range def.Options {
		opts = append(opts, huh.NewOption(o.Label, o.Value))
	}
	return opts
}

// collectDayForm turns the bound form values back into raw strings for the
// store's validated save path.
func (m *Model) collectDayForm() map[string]string {
	raw := make(map[string]string, len(m.formDefs))
	for _, def := range m.formDefs {
		switch def.Type {
		case models.TypeBinaryYesNo, models.TypeBinaryPosNeg:
			raw[def.MetricID] = formatBool(*m.boolVals[def.MetricID])
		case models.TypeSelectMulti:
			raw[def.MetricID] = joinSelections(*m.multiVal[def.MetricID])
		default:
			raw[def.MetricID] = *m.textVals[def.MetricID]
		}
	}
	return raw
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func joinSelections(xs []string) string {
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += ","
		}
		out += x
	}
	return out
}

// buildStructureForm prefills the weekly flags from the stored record.
func (m *Model) buildStructureForm() {
	vals := &structureForm{}
	if rec, ok := m.store.WeekRecord(m.weekMonday); ok {
		vals.PrioritiesDefined = rec.Structure.PrioritiesDefined
		vals.TwoCompleted = rec.Structure.TwoCompleted
		vals.WeeklyReviewDone = rec.Structure.WeeklyReviewDone
	}
	m.structVals = vals
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title("Top 3 priorities defined?").Value(&vals.PrioritiesDefined),
		huh.NewConfirm().Title("At least two completed?").Value(&vals.TwoCompleted),
		huh.NewConfirm().Title("Weekly review done?").Value(&vals.WeeklyReviewDone),
	).Title("Week structure, " + m.weekMonday))
}
