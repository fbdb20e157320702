package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/averyross/scorecard/internal/backup"
	"github.com/averyross/scorecard/internal/catalog"
	"github.com/averyross/scorecard/internal/constants"
	"github.com/averyross/scorecard/internal/daystore"
	"github.com/averyross/scorecard/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeOK := false

	var cat *catalog.Catalog
	var store *daystore.Store
	if c, s, err := ctx.open(); err != nil {
		fmt.Printf("❌ Store reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Store reachable: OK\n")
		cat, store = c, s
		storeOK = true
	}

	if storeOK {
		if err := checkSQLite(ctx); err != nil {
			fmt.Printf("❌ Store queryable: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Store queryable: OK\n")
		}

		if problems := cat.CheckInvariants(); len(problems) > 0 {
			fmt.Printf("❌ Catalog invariants: FAIL\n")
			for _, p := range problems {
				fmt.Printf("   %s\n", p)
			}
			hasError = true
		} else {
			fmt.Printf("✓ Catalog invariants: OK\n")
		}

		if err := checkMigrationsComplete(store); err != nil {
			fmt.Printf("❌ Day entries migrated: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Day entries migrated: OK\n")
		}
	} else {
		fmt.Printf("⊘ Catalog invariants: SKIPPED (store not reachable)\n")
		fmt.Printf("⊘ Day entries migrated: SKIPPED (store not reachable)\n")
	}

	// Warning only: a missing backup is advice, not breakage.
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	if err := checkSingleProcess(); err != nil {
		fmt.Printf("⚠ Single process: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Single process: OK\n")
	}

	if err := checkClockTimezone(ctx); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkSQLite(ctx *Context) error {
	sqliteStore, ok := ctx.Provider.(*storage.SQLiteStore)
	if !ok {
		// The JSON store has no query surface beyond Load.
		return nil
	}
	db := sqliteStore.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query store: %w", err)
	}
	return nil
}

func checkMigrationsComplete(store *daystore.Store) error {
	stale := 0
	for _, entry := range store.Scorecard().Days {
		if entry.Metrics == nil {
			stale++
		}
	}
	if stale > 0 {
		return fmt.Errorf("%d day entries still in a pre-metric-map shape", stale)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Provider.Path(), ctx.clock())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider creating one with 'scorecard backup create'")
	}
	return nil
}

// checkSingleProcess looks for other running scorecard processes. Two writers
// against the same store can lose data.
func checkSingleProcess() error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	self := os.Getpid()
	others := 0
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(p.Executable()), ".exe")
		if name == constants.AppName {
			others++
		}
	}
	if others > 0 {
		return fmt.Errorf("found %d other running %s process(es); concurrent writers are not supported", others, constants.AppName)
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := ctx.clock()()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		fmt.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
