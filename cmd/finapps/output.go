package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/bobmcallan/finapps/internal/app"
)

type rangeFlags struct {
	from string
	to   string
}

func (r *rangeFlags) set(f *flag.FlagSet) {
	f.StringVar(&r.from, "from", "", "first date, YYYY-MM-DD (default: earliest)")
	f.StringVar(&r.to, "to", "", "last date, YYYY-MM-DD (default: latest)")
}

type chartCmd struct {
	rangeFlags
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render a close-price PNG chart" }
func (*chartCmd) Usage() string {
	return `finapps chart [-from YYYY-MM-DD] [-to YYYY-MM-DD] <SYMBOL>

  Writes <data_path>/charts/<SYMBOL>.png.
`
}
func (c *chartCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return exitStatus(stderr, usagef("chart takes exactly one symbol"))
	}
	from, err := parseDateFlag("from", c.from)
	if err != nil {
		return exitStatus(stderr, err)
	}
	to, err := parseDateFlag("to", c.to)
	if err != nil {
		return exitStatus(stderr, err)
	}
	err = withApp(ctx, func(a *app.App) error {
		path, err := a.RenderChart(ctx, f.Arg(0), from, to)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)
		return nil
	})
	return exitStatus(stderr, err)
}

type exportCmd struct {
	rangeFlags
	format string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export persisted bars to parquet, csv or json" }
func (*exportCmd) Usage() string {
	return `finapps export [-format parquet|csv|json] [-from YYYY-MM-DD] [-to YYYY-MM-DD] <SYMBOL>

  Writes <data_path>/exports/<SYMBOL>.<format>.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.StringVar(&c.format, "format", "csv", "output format: parquet, csv or json")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return exitStatus(stderr, usagef("export takes exactly one symbol"))
	}
	from, err := parseDateFlag("from", c.from)
	if err != nil {
		return exitStatus(stderr, err)
	}
	to, err := parseDateFlag("to", c.to)
	if err != nil {
		return exitStatus(stderr, err)
	}
	err = withApp(ctx, func(a *app.App) error {
		path, err := a.ExportBars(ctx, f.Arg(0), from, to, c.format)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)
		return nil
	})
	return exitStatus(stderr, err)
}
