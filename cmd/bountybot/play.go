package main

import (
	"fmt"

	"github.com/lox/bountybot/cmd/bountybot/shared"
	"github.com/lox/bountybot/game"
	"github.com/lox/bountybot/sdk"
	"github.com/lox/bountybot/sdk/config"
)

// PlayCmd connects a built-in strategy to an engine over TCP. Supervisors
// that spawn bot processes hand over the dial target and stakes through the
// BOUNTYBOT_* environment instead of flags.
type PlayCmd struct {
	Strategy   string `arg:"" help:"Built-in strategy (aggressive, bountyhunter, callingstation, random)"`
	Addr       string `help:"Engine address, host:port. Falls back to BOUNTYBOT_HOST/BOUNTYBOT_PORT"`
	Name       string `help:"Bot display name"`
	Seed       uint64 `help:"Seed for randomized strategies"`
	Stack      *int   `help:"Starting stack the engine deals (default 400)"`
	SmallBlind *int   `help:"Small blind the engine posts (default 1)"`
	BigBlind   *int   `help:"Big blind the engine posts (default 2)"`
	LogLevel   string `default:"info" help:"Log level (debug|info|warn|error)"`
	LogJSON    bool   `help:"Output JSON logs instead of console format"`
}

func (c *PlayCmd) Run() error {
	logger := shared.SetupLogger(c.LogLevel, c.LogJSON)

	// The environment fills whatever the flags leave unset.
	env, envErr := config.FromEnv()

	addr := c.Addr
	if addr == "" {
		if envErr != nil {
			return fmt.Errorf("no --addr given: %w", envErr)
		}
		addr = env.Addr()
	}

	name := c.Name
	seed := c.Seed
	stakes := game.DefaultConfig()
	if envErr == nil {
		stakes = env.Stakes()
		if name == "" {
			name = env.Name
		}
		if seed == 0 && env.Seed != 0 {
			seed = uint64(env.Seed)
		}
	}
	if name == "" {
		name = c.Strategy
	}
	if c.Stack != nil {
		stakes.StartingStack = *c.Stack
	}
	if c.SmallBlind != nil {
		stakes.SmallBlind = *c.SmallBlind
	}
	if c.BigBlind != nil {
		stakes.BigBlind = *c.BigBlind
	}

	handler, err := newHandler(c.Strategy, seed)
	if err != nil {
		return err
	}

	logger = logger.With().Str("bot", name).Logger()
	logger.Info().
		Str("address", addr).
		Str("strategy", c.Strategy).
		Int("starting_stack", stakes.StartingStack).
		Int("small_blind", stakes.SmallBlind).
		Int("big_blind", stakes.BigBlind).
		Msg("Connecting to engine")

	ctx := shared.SetupSignalHandler(logger)
	return sdk.Run(ctx, addr, handler, sdk.WithLogger(logger), sdk.WithStakes(stakes))
}
