package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/averyross/scorecard/internal/backup"
	"github.com/averyross/scorecard/internal/logger"
	"github.com/averyross/scorecard/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	cat, store, err := ctx.open()
	if err != nil {
		return err
	}

	// Automatic safety backup on startup, best effort.
	if _, err := backup.NewManager(ctx.Provider.Path(), ctx.clock()).Create(); err != nil {
		logger.Warn("automatic backup failed", "error", err)
	}

	p := tea.NewProgram(tui.NewModel(cat, store, ctx.clock()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	return nil
}
