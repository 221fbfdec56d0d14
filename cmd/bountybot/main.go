package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Arena   ArenaCmd         `cmd:"" help:"Referee a heads-up match between two bots"`
	Play    PlayCmd          `cmd:"" help:"Run a built-in bot against an engine"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bountybot"),
		kong.Description("Heads-up no-limit hold'em arena with rotating bounty ranks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
