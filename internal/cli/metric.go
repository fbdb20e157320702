package cli

import (
	"fmt"
	"strings"

	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/utils"
)

type MetricListCmd struct {
	Date string `help:"Show definitions effective on this date (default today)." default:"today"`
	All  bool   `help:"Show every version row, including closed and retired ones."`
}

func (c *MetricListCmd) Run(ctx *Context) error {
	cat, _, err := ctx.open()
	if err != nil {
		return err
	}

	if c.All {
		fmt.Println("All metric version rows:")
		for _, def := range cat.Definitions() {
			to := "open"
			if def.ActiveTo != nil {
				to = *def.ActiveTo
			}
			fmt.Printf("  %-24s %-14s %-14s %s to %s\n",
				def.MetricID, def.Type, def.Aggregation, def.ActiveFrom, to)
		}
		return nil
	}

	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}

	fmt.Printf("Metrics effective on %s:\n\n", date)
	group := ""
	for _, def := range cat.ResolveActive(date) {
		if def.Group != group {
			group = def.Group
			fmt.Printf("%s:\n", group)
		}
		unit := ""
		if def.Unit != "" {
			unit = " (" + def.Unit + ")"
		}
		fmt.Printf("  %-24s %-14s %-14s %s%s\n",
			def.MetricID, def.Type, def.Aggregation, def.Label, unit)
	}
	return nil
}

type MetricAddCmd struct {
	ID          string   `arg:"" help:"Metric id (lowercase, digits, underscores)."`
	Label       string   `help:"Display label." required:""`
	Type        string   `help:"Metric type (number_int, number_float, binary_yes_no, binary_pos_neg, text_short, text_long, select_single, select_multi)." required:""`
	Aggregation string   `help:"Weekly rollup rule (average, sum, count_true, count_selected, latest, none)." default:"none"`
	Unit        string   `help:"Display unit."`
	Group       string   `help:"Display group." default:"Execution"`
	Option      []string `help:"Select option as value or value:label (repeatable)."`
	Min         *float64 `help:"Minimum numeric value."`
	Max         *float64 `help:"Maximum numeric value."`
	Step        *float64 `help:"Numeric step, anchored at the minimum."`
	MaxLength   *int     `help:"Maximum text length in characters."`
	Required    bool     `help:"Value must be present to save the day."`
	Placeholder string   `help:"Input placeholder text."`
	From        string   `help:"Effective date (YYYY-MM-DD, default today)." default:"today"`
}

func (c *MetricAddCmd) Run(ctx *Context) error {
	cat, _, err := ctx.open()
	if err != nil {
		return err
	}
	from, err := ctx.resolveDate(c.From)
	if err != nil {
		return err
	}

	def := models.MetricDefinition{
		MetricID:    c.ID,
		Label:       c.Label,
		Unit:        c.Unit,
		Group:       c.Group,
		Type:        models.MetricType(c.Type),
		Aggregation: models.Aggregation(c.Aggregation),
		Options:     parseOptions(c.Option),
		InputAttrs: models.InputAttrs{
			Min: c.Min, Max: c.Max, Step: c.Step,
			MaxLength:   c.MaxLength,
			Required:    c.Required,
			Placeholder: c.Placeholder,
		},
	}

	if err := cat.AppendVersion(def, from); err != nil {
		return err
	}
	fmt.Printf("Metric %s effective from %s.\n", c.ID, from)
	return nil
}

func parseOptions(raw []string) []models.Option {
	var opts []models.Option
	for _, r := range raw {
		value, label, ok := strings.Cut(r, ":")
		if !ok {
			label = value
		}
		opts = append(opts, models.Option{Value: value, Label: label})
	}
	return opts
}

type MetricRetireCmd struct {
	ID   string `arg:"" help:"Metric id to retire."`
	From string `help:"Last day the metric applies (YYYY-MM-DD, default today)." default:"today"`
}

func (c *MetricRetireCmd) Run(ctx *Context) error {
	cat, _, err := ctx.open()
	if err != nil {
		return err
	}
	from, err := ctx.resolveDate(c.From)
	if err != nil {
		return err
	}

	if err := cat.Retire(c.ID, from); err != nil {
		return err
	}
	next, _ := utils.AddDays(from, 1)
	fmt.Printf("Metric %s retired; it no longer applies from %s. History is preserved.\n", c.ID, next)
	return nil
}
