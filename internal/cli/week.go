package cli

import (
	"fmt"

	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/summary"
)

type WeekShowCmd struct {
	Week string `arg:"" help:"Any date in the week (YYYY-MM-DD) or 'current'." default:"current"`
}

func (c *WeekShowCmd) Run(ctx *Context) error {
	cat, store, err := ctx.open()
	if err != nil {
		return err
	}
	monday, err := ctx.resolveMonday(c.Week)
	if err != nil {
		return err
	}

	sum, err := summary.Summarize(cat, store.Scorecard(), monday, ctx.clock())
	if err != nil {
		return err
	}

	fmt.Printf("Week %s to %s (%d of 7 days logged)\n\n",
		sum.Week.StartMonday, sum.Week.EndSunday, sum.Summary.DaysLogged)

	for _, id := range summary.MetricOrder(sum.Summary.Metrics) {
		agg := sum.Summary.Metrics[id]
		fmt.Printf("  %-24s %-14s %s\n", id, agg.Aggregation, formatAggregate(agg))
	}

	st := sum.Summary.Structure
	fmt.Printf("\nStructure (%d/3):\n", st.Score)
	fmt.Printf("  priorities defined:  %s\n", checkbox(st.PrioritiesDefined))
	fmt.Printf("  two completed:       %s\n", checkbox(st.TwoCompleted))
	fmt.Printf("  weekly review done:  %s\n", checkbox(st.WeeklyReviewDone))
	return nil
}

func formatAggregate(agg models.MetricAggregate) string {
	switch v := agg.Value.(type) {
	case nil:
		return "—"
	case float64:
		return fmt.Sprintf("%s (n=%d)", trimNumber(v), agg.ValueCount)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func trimNumber(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

func checkbox(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}

type WeekStructureCmd struct {
	Week              string `arg:"" help:"Any date in the week (YYYY-MM-DD) or 'current'." default:"current"`
	PrioritiesDefined *bool  `help:"Top 3 priorities defined for the week."`
	TwoCompleted      *bool  `help:"At least two priorities completed."`
	WeeklyReviewDone  *bool  `help:"Weekly review done."`
}

func (c *WeekStructureCmd) Run(ctx *Context) error {
	_, store, err := ctx.open()
	if err != nil {
		return err
	}
	monday, err := ctx.resolveMonday(c.Week)
	if err != nil {
		return err
	}

	st := models.WeekStructure{}
	if rec, ok := store.WeekRecord(monday); ok {
		st = rec.Structure
	}
	if c.PrioritiesDefined != nil {
		st.PrioritiesDefined = *c.PrioritiesDefined
	}
	if c.TwoCompleted != nil {
		st.TwoCompleted = *c.TwoCompleted
	}
	if c.WeeklyReviewDone != nil {
		st.WeeklyReviewDone = *c.WeeklyReviewDone
	}

	if err := store.SetWeekStructure(monday, st); err != nil {
		return err
	}
	fmt.Printf("Week %s structure: %d/3.\n", monday, st.Score())
	return nil
}
