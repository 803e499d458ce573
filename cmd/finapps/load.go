package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"

	"github.com/bobmcallan/finapps/internal/app"
	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/interfaces"
	"github.com/bobmcallan/finapps/internal/models"
)

type loadCmd struct {
	historical bool
}

func (*loadCmd) Name() string     { return "load" }
func (*loadCmd) Synopsis() string { return "fetch daily bars from the provider and upsert them" }
func (*loadCmd) Usage() string {
	return `finapps load [-historical] <SYMBOL>

  Loads bars after the latest persisted date through today. With -historical,
  or when nothing is persisted yet, loads the provider's full history.
`
}

func (c *loadCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.historical, "historical", false, "fetch full history instead of an incremental range")
}

func (c *loadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return exitStatus(stderr, usagef("load takes exactly one symbol, got %d", f.NArg()))
	}
	mode := models.LoadIncremental
	if c.historical {
		mode = models.LoadHistorical
	}

	err := withApp(ctx, func(a *app.App) error {
		if err := a.Storage.Migrate(ctx); err != nil {
			return err
		}
		return runLoad(ctx, a.MarketService, f.Arg(0), mode, stdout)
	})
	return exitStatus(stderr, err)
}

func runLoad(ctx context.Context, svc interfaces.MarketService, symbol string, mode models.LoadMode, w io.Writer) error {
	res, err := svc.Load(ctx, symbol, mode)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintf(w, "%s: up to date (last bar %s)\n", res.Symbol, common.FormatDate(res.PreviousLast))
		return nil
	}
	fmt.Fprintf(w, "%s: %s load %s fetched %d, wrote %d (run %s)\n",
		res.Symbol, res.Mode, res.Range, res.Fetched, res.Written, res.RunID)
	return nil
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database migrations" }
func (*migrateCmd) Usage() string {
	return `finapps migrate

  Creates or upgrades the mkt_data schema. Safe to run repeatedly.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		return exitStatus(stderr, usagef("migrate takes no arguments"))
	}
	err := withApp(ctx, func(a *app.App) error {
		if err := a.Storage.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "migrations applied")
		return nil
	})
	return exitStatus(stderr, err)
}

type runsCmd struct {
	limit int
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "list recent load runs for a symbol" }
func (*runsCmd) Usage() string {
	return `finapps runs [-n 10] <SYMBOL>
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 10, "number of runs to show")
}

func (c *runsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return exitStatus(stderr, usagef("runs takes exactly one symbol"))
	}
	err := withApp(ctx, func(a *app.App) error {
		return runRuns(ctx, a.Storage.LoadLog(), f.Arg(0), c.limit, stdout)
	})
	return exitStatus(stderr, err)
}

func runRuns(ctx context.Context, log interfaces.LoadLog, symbol string, limit int, w io.Writer) error {
	records, err := log.Recent(ctx, models.NormalizeSymbol(symbol), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(w, "%s: no recorded runs\n", models.NormalizeSymbol(symbol))
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s  %-11s  %-26s  fetched %-6d wrote %-6d %s\n",
			r.LoadedAt.Format("2006-01-02 15:04:05"), r.Mode, r.Range, r.Fetched, r.Written, r.RunID)
	}
	return nil
}
