package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/averyross/scorecard/internal/cli"
	"github.com/averyross/scorecard/internal/constants"
	"github.com/averyross/scorecard/internal/logger"
	"github.com/averyross/scorecard/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Store file path (.db for SQLite, .json for a flat file)." type:"path" default:"~/.config/scorecard/scorecard.db"`
	Debug   bool   `help:"Enable debug logging."`

	Init   cli.InitCmd `cmd:"" help:"Initialize scorecard storage."`
	Tui    cli.TuiCmd  `cmd:"" help:"Launch the interactive scorecard." default:"1"`
	Day    struct {
		Show   cli.DayShowCmd   `cmd:"" help:"Show a day's scorecard." default:"1"`
		Save   cli.DaySaveCmd   `cmd:"" help:"Save metric values for a day."`
		Delete cli.DayDeleteCmd `cmd:"" help:"Delete a day's entry."`
	} `cmd:"" help:"Work with day entries."`
	Week struct {
		Show      cli.WeekShowCmd      `cmd:"" help:"Show the weekly rollup." default:"1"`
		Structure cli.WeekStructureCmd `cmd:"" help:"Set the weekly structure flags."`
	} `cmd:"" help:"Work with weekly rollups."`
	Metric struct {
		List   cli.MetricListCmd   `cmd:"" help:"List metric definitions."`
		Add    cli.MetricAddCmd    `cmd:"" help:"Add or redefine a metric, forward-only."`
		Retire cli.MetricRetireCmd `cmd:"" help:"Retire a metric, preserving history."`
	} `cmd:"" help:"Manage the metric catalog."`
	Export cli.ExportCmd `cmd:"" help:"Export a day, a week, or the full store."`
	Import cli.ImportCmd `cmd:"" help:"Import a scorecard exchange payload."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup of the store."`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore the store from a backup."`
	} `cmd:"" help:"Manage store backups."`
	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks on the store."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Accountability daily scorecard: log metrics, roll up weeks, keep schema history."),
		kong.UsageOnError(),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: filepath.Dir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	var store storage.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}

	appCtx := &cli.Context{
		Provider: store,
		Now:      time.Now,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
