package cli

import (
	"fmt"
	"os"

	"github.com/averyross/scorecard/internal/exchange"
)

type ImportCmd struct {
	File string `arg:"" help:"Path to a scorecard exchange payload (day, week, or all scope)." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *Context) error {
	_, store, err := ctx.open()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	report, err := exchange.NewEngine(store, ctx.clock()).Import(data)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %s scope (%s): %d day(s), %d week record(s)", report.Scope, report.Key, report.Days, report.Weeks)
	if report.Migrated > 0 {
		fmt.Printf(", %d migrated from an older schema", report.Migrated)
	}
	fmt.Println(".")
	return nil
}
