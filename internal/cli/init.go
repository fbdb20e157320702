package cli

import "fmt"

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Provider.Init(); err != nil {
		return err
	}
	// Loading once seeds the default metric catalog.
	if _, _, err := ctx.open(); err != nil {
		return err
	}
	fmt.Printf("Initialized scorecard storage at: %s\n", ctx.Provider.Path())
	return nil
}
