// Package cli implements the scorecard command surface. Commands receive a
// Context holding the storage provider and the clock; everything else is
// loaded per command so each invocation sees fresh state.
package cli

import (
	"fmt"
	"time"

	"github.com/averyross/scorecard/internal/catalog"
	"github.com/averyross/scorecard/internal/codec"
	"github.com/averyross/scorecard/internal/daystore"
	"github.com/averyross/scorecard/internal/models"
	"github.com/averyross/scorecard/internal/storage"
	"github.com/averyross/scorecard/internal/utils"
)

type Context struct {
	Provider storage.Provider
	Now      func() time.Time
}

func (ctx *Context) clock() func() time.Time {
	if ctx.Now != nil {
		return ctx.Now
	}
	return time.Now
}

// open loads the provider, the catalog, and the day store. Most commands start
// here.
func (ctx *Context) open() (*catalog.Catalog, *daystore.Store, error) {
	if err := ctx.Provider.Load(); err != nil {
		return nil, nil, err
	}
	cat, err := catalog.Load(ctx.Provider, ctx.clock())
	if err != nil {
		return nil, nil, err
	}
	store, err := daystore.Load(ctx.Provider, cat, ctx.clock())
	if err != nil {
		return nil, nil, err
	}
	return cat, store, nil
}

// resolveDate accepts YYYY-MM-DD or the word "today".
func (ctx *Context) resolveDate(s string) (string, error) {
	if s == "" || s == "today" {
		return utils.Today(ctx.clock()), nil
	}
	if !utils.ValidDate(s) {
		return "", fmt.Errorf("invalid date %q, use YYYY-MM-DD or 'today'", s)
	}
	return s, nil
}

// resolveMonday accepts a date (snapped back to its Monday) or the word
// "current".
func (ctx *Context) resolveMonday(s string) (string, error) {
	if s == "" || s == "current" {
		return utils.WeekMonday(utils.Today(ctx.clock()))
	}
	if !utils.ValidDate(s) {
		return "", fmt.Errorf("invalid week %q, use YYYY-MM-DD or 'current'", s)
	}
	return utils.WeekMonday(s)
}

// displayValue renders a stored metric value for terminal output.
func displayValue(def models.MetricDefinition, value any) string {
	s := codec.Format(def, value)
	if s == "" {
		return "—"
	}
	if def.Unit != "" {
		return s + " " + def.Unit
	}
	return s
}
