// Command finapps loads daily market data into PostgreSQL and prints lookback digests.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", "", "Path to finapps.toml (defaults to FINAPPS_CONFIG, then finapps.toml beside the binary)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&loadCmd{}, "data")
	c.Register(&migrateCmd{}, "data")
	c.Register(&runsCmd{}, "data")

	c.Register(&digestCmd{}, "reports")
	c.Register(&datesCmd{}, "reports")
	c.Register(&chartCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")

	c.Register(&versionCmd{}, "")
}
