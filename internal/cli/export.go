package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/averyross/scorecard/internal/apperrors"
	"github.com/averyross/scorecard/internal/exchange"
	"github.com/averyross/scorecard/internal/summary"
)

type ExportCmd struct {
	Scope string `arg:"" help:"What to export: day, week, or all." enum:"day,week,all"`
	Key   string `arg:"" help:"Date for day/week scope (YYYY-MM-DD, 'today', or 'current')." optional:"" default:"today"`
	Out   string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	cat, store, err := ctx.open()
	if err != nil {
		return err
	}

	var payload any
	switch c.Scope {
	case "day":
		date, err := ctx.resolveDate(c.Key)
		if err != nil {
			return err
		}
		entry, ok := store.Get(date)
		if !ok {
			return apperrors.NotFoundf("no entry saved for %s", date)
		}
		payload = exchange.BuildDayExport(entry, cat.Snapshot(date, date))
	case "week":
		monday, err := ctx.resolveMonday(c.Key)
		if err != nil {
			return err
		}
		sum, err := summary.Summarize(cat, store.Scorecard(), monday, ctx.clock())
		if err != nil {
			return err
		}
		payload = sum
	case "all":
		payload = exchange.BuildAllExport(store.Scorecard(), cat.Definitions(), ctx.clock())
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	if c.Out == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(c.Out, append(data, '\n'), 0600); err != nil {
		return err
	}
	fmt.Printf("Exported %s to %s.\n", c.Scope, c.Out)
	return nil
}
