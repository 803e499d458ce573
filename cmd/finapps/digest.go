package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/google/subcommands"

	"github.com/bobmcallan/finapps/internal/app"
	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/interfaces"
	"github.com/bobmcallan/finapps/internal/models"
	"github.com/bobmcallan/finapps/internal/services/report"
)

type digestCmd struct{}

func (*digestCmd) Name() string     { return "digest" }
func (*digestCmd) Synopsis() string { return "print period changes for symbols as of a date" }
func (*digestCmd) Usage() string {
	return `finapps digest <SYMBOL>... <YYYY-MM-DD>

  Prints CLOSE and VOLUME changes over 1d, 1m, 3m, 6m, 1y and 3y. A date
  without a bar resolves to the nearest earlier trading date.
`
}
func (*digestCmd) SetFlags(*flag.FlagSet) {}

func (*digestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols, anchor, err := parseDigestArgs(f.Args())
	if err != nil {
		return exitStatus(stderr, err)
	}
	err = withApp(ctx, func(a *app.App) error {
		return runDigest(ctx, a.DigestService, symbols, anchor, stdout)
	})
	return exitStatus(stderr, err)
}

func parseDigestArgs(args []string) ([]string, time.Time, error) {
	if len(args) < 2 {
		return nil, time.Time{}, usagef("digest needs at least one symbol and a date")
	}
	anchor, err := common.ParseDate(args[len(args)-1])
	if err != nil {
		return nil, time.Time{}, usagef("%v", err)
	}
	symbols := make([]string, 0, len(args)-1)
	for _, s := range args[:len(args)-1] {
		s = models.NormalizeSymbol(s)
		if s == "" {
			return nil, time.Time{}, usagef("empty symbol")
		}
		symbols = append(symbols, s)
	}
	return symbols, anchor, nil
}

// runDigest computes every digest before printing; one failure prints nothing.
func runDigest(ctx context.Context, svc interfaces.DigestService, symbols []string, anchor time.Time, w io.Writer) error {
	results := make([]*models.DigestResult, 0, len(symbols))
	for _, s := range symbols {
		r, err := svc.Compute(ctx, s, anchor)
		if err != nil {
			return err
		}
		results = append(results, r)
	}
	return report.FormatDigest(w, results...)
}

type datesCmd struct{}

func (*datesCmd) Name() string     { return "dates" }
func (*datesCmd) Synopsis() string { return "show the persisted date range for a symbol" }
func (*datesCmd) Usage() string {
	return `finapps dates <SYMBOL>
`
}
func (*datesCmd) SetFlags(*flag.FlagSet) {}

func (*datesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return exitStatus(stderr, usagef("dates takes exactly one symbol"))
	}
	err := withApp(ctx, func(a *app.App) error {
		return runDates(ctx, a.DigestService, f.Arg(0), stdout)
	})
	return exitStatus(stderr, err)
}

func runDates(ctx context.Context, svc interfaces.DigestService, symbol string, w io.Writer) error {
	span, err := svc.Span(ctx, symbol)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s to %s (%d bars)\n",
		span.Symbol, common.FormatDate(span.First), common.FormatDate(span.Last), span.Count)
	return nil
}
