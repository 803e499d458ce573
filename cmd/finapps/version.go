package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/bobmcallan/finapps/internal/app"
	"github.com/bobmcallan/finapps/internal/common"
)

type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "print version information" }
func (*versionCmd) Usage() string          { return "finapps version\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFromFile()
	// config is informational here; a broken file still prints the version
	config, err := common.LoadConfig(app.ResolveConfigPath(*configPath))
	if err != nil {
		config = nil
	}
	common.PrintBanner(stdout, config)
	return subcommands.ExitSuccess
}
