package arena

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/bountybot/game"
)

// Config represents the complete match configuration
type Config struct {
	Game GameSettings `hcl:"game,block"`
	Bots []BotConfig  `hcl:"bot,block"`
}

// GameSettings contains the match-level rules
type GameSettings struct {
	Rounds        int     `hcl:"rounds,optional"`
	StartingStack int     `hcl:"starting_stack,optional"`
	SmallBlind    int     `hcl:"small_blind,optional"`
	BigBlind      int     `hcl:"big_blind,optional"`
	GameClock     float64 `hcl:"game_clock,optional"`
	BountyPeriod  int     `hcl:"bounty_period,optional"`
	Seed          int64   `hcl:"seed,optional"`
	HistoryFile   string  `hcl:"history_file,optional"`
}

// BotConfig names one of the two competitors. Strategy selects a built-in
// handler and Command launches an external bot process that dials back in;
// a bot with neither is expected to connect on its own over TCP.
type BotConfig struct {
	Name     string   `hcl:"name,label"`
	Strategy string   `hcl:"strategy,optional"`
	Command  string   `hcl:"command,optional"`
	Args     []string `hcl:"args,optional"`
}

// Stakes converts the match rules into per-round stakes.
func (s GameSettings) Stakes() game.Config {
	return game.Config{
		StartingStack: s.StartingStack,
		SmallBlind:    s.SmallBlind,
		BigBlind:      s.BigBlind,
	}
}

// DefaultConfig returns the standard thousand round match
func DefaultConfig() *Config {
	return &Config{
		Game: GameSettings{
			Rounds:        1000,
			StartingStack: 400,
			SmallBlind:    1,
			BigBlind:      2,
			GameClock:     60.0,
			BountyPeriod:  25,
		},
		Bots: []BotConfig{
			{Name: "hunter", Strategy: "bountyhunter"},
			{Name: "caller", Strategy: "callingstation"},
		},
	}
}

// LoadConfig loads match configuration from an HCL file
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Game.Rounds == 0 {
		config.Game.Rounds = defaults.Game.Rounds
	}
	if config.Game.StartingStack == 0 {
		config.Game.StartingStack = defaults.Game.StartingStack
	}
	if config.Game.SmallBlind == 0 {
		config.Game.SmallBlind = defaults.Game.SmallBlind
	}
	if config.Game.BigBlind == 0 {
		config.Game.BigBlind = defaults.Game.BigBlind
	}
	if config.Game.GameClock == 0 {
		config.Game.GameClock = defaults.Game.GameClock
	}
	if config.Game.BountyPeriod == 0 {
		config.Game.BountyPeriod = defaults.Game.BountyPeriod
	}
	if len(config.Bots) == 0 {
		config.Bots = defaults.Bots
	}

	return &config, nil
}

// Validate validates the match configuration
func (c *Config) Validate() error {
	if c.Game.Rounds < 1 {
		return fmt.Errorf("rounds must be positive, got %d", c.Game.Rounds)
	}
	if c.Game.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive, got %d", c.Game.SmallBlind)
	}
	if c.Game.BigBlind <= c.Game.SmallBlind {
		return fmt.Errorf("big blind %d must be greater than small blind %d", c.Game.BigBlind, c.Game.SmallBlind)
	}
	if c.Game.StartingStack < c.Game.BigBlind {
		return fmt.Errorf("starting stack %d cannot cover the big blind %d", c.Game.StartingStack, c.Game.BigBlind)
	}
	if c.Game.GameClock <= 0 {
		return fmt.Errorf("game clock must be positive, got %f", c.Game.GameClock)
	}
	if c.Game.BountyPeriod < 1 {
		return fmt.Errorf("bounty period must be positive, got %d", c.Game.BountyPeriod)
	}
	if len(c.Bots) != 2 {
		return fmt.Errorf("exactly two bots must be configured, got %d", len(c.Bots))
	}
	if c.Bots[0].Name == c.Bots[1].Name {
		return fmt.Errorf("bot names must differ, both are %q", c.Bots[0].Name)
	}
	for _, bot := range c.Bots {
		if bot.Name == "" {
			return fmt.Errorf("bot names cannot be empty")
		}
		if bot.Strategy != "" && bot.Command != "" {
			return fmt.Errorf("bot %s: strategy and command are mutually exclusive", bot.Name)
		}
	}
	return nil
}
