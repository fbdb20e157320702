package cli

import (
	"fmt"
	"strings"

	"github.com/averyross/scorecard/internal/codec"
)

type DayShowCmd struct {
	Date string `arg:"" help:"Date to show (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *DayShowCmd) Run(ctx *Context) error {
	cat, store, err := ctx.open()
	if err != nil {
		return err
	}
	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}

	entry, ok := store.Get(date)
	if !ok {
		fmt.Printf("No entry saved for %s.\n", date)
		return nil
	}

	fmt.Printf("Scorecard for %s (week of %s):\n\n", date, entry.Day.WeekMonday)

	group := ""
	for _, def := range cat.ResolveActive(date) {
		if def.Group != group {
			group = def.Group
			fmt.Printf("%s:\n", group)
		}
		fmt.Printf("  %-34s %s\n", def.Label, displayValue(def, entry.MetricValue(def.MetricID, nil)))
	}
	if entry.Meta.SavedAtISO != "" {
		fmt.Printf("\nSaved at %s\n", entry.Meta.SavedAtISO)
	}
	return nil
}

type DaySaveCmd struct {
	Date string   `arg:"" help:"Date to save (YYYY-MM-DD or 'today')." default:"today"`
	Set  []string `help:"Metric values as metric_id=value (repeatable)." short:"s"`
}

func (c *DaySaveCmd) Run(ctx *Context) error {
	cat, store, err := ctx.open()
	if err != nil {
		return err
	}
	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}

	// Start from the existing entry so partial saves keep earlier values.
	raw := make(map[string]string)
	if prev, ok := store.Get(date); ok {
		for _, def := range cat.ResolveActive(date) {
			raw[def.MetricID] = codec.Format(def, prev.MetricValue(def.MetricID, nil))
		}
	}
	for _, pair := range c.Set {
		id, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q, expected metric_id=value", pair)
		}
		raw[strings.TrimSpace(id)] = value
	}

	entry, err := store.Save(date, raw)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s (%d metrics).\n", date, len(entry.Metrics))
	return nil
}

type DayDeleteCmd struct {
	Date string `arg:"" help:"Date to delete (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *DayDeleteCmd) Run(ctx *Context) error {
	_, store, err := ctx.open()
	if err != nil {
		return err
	}
	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}

	if err := store.Delete(date); err != nil {
		return err
	}
	fmt.Printf("Deleted entry for %s.\n", date)
	return nil
}
