package main

import (
	"fmt"
	"strings"

	"github.com/lox/bountybot/sdk"

	// Bots
	"github.com/lox/bountybot/sdk/bots/aggressive"
	"github.com/lox/bountybot/sdk/bots/bountyhunter"
	"github.com/lox/bountybot/sdk/bots/callingstation"
	"github.com/lox/bountybot/sdk/bots/random"
)

// botHandlers maps strategy names to their handler constructors. A zero seed
// leaves randomized strategies time seeded.
var botHandlers = map[string]func(seed uint64) sdk.Handler{
	"aggressive":     seeded(aggressive.NewHandler, aggressive.NewHandlerSeeded),
	"bountyhunter":   func(uint64) sdk.Handler { return bountyhunter.NewHandler() },
	"callingstation": func(uint64) sdk.Handler { return callingstation.NewHandler() },
	"random":         seeded(random.NewHandler, random.NewHandlerSeeded),
}

// seeded adapts a bot's constructor pair: a zero seed keeps the bot time
// seeded, anything else pins its move sequence.
func seeded[H sdk.Handler](fresh func() H, pinned func(uint64) H) func(uint64) sdk.Handler {
	return func(seed uint64) sdk.Handler {
		if seed != 0 {
			return pinned(seed)
		}
		return fresh()
	}
}

// newHandler builds a built-in strategy by name. Names are matched without
// case or hyphens, so "bounty-hunter" and "bountyhunter" are the same bot.
func newHandler(strategy string, seed uint64) (sdk.Handler, error) {
	fn, ok := botHandlers[normalizeStrategy(strategy)]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %s)", strategy, strings.Join(strategies(), ", "))
	}
	return fn(seed), nil
}

func normalizeStrategy(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "")
}

func strategies() []string {
	return []string{"aggressive", "bountyhunter", "callingstation", "random"}
}
