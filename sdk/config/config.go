// Package config parses the environment contract between a match
// supervisor and the bot processes it launches. All variables carry the
// BOUNTYBOT_ prefix, e.g. BOUNTYBOT_PORT.
package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/kelseyhightower/envconfig"

	"github.com/lox/bountybot/game"
)

// Bot holds the settings a supervisor hands to a bot process.
type Bot struct {
	// Host is the engine address to dial.
	Host string `envconfig:"host" default:"127.0.0.1"`

	// Port is the engine port. Required: a bot without an engine has
	// nothing to do.
	Port int `envconfig:"port" required:"true"`

	// Name identifies the bot in engine logs.
	Name string `envconfig:"name"`

	// Seed makes randomized strategies reproducible. Zero means unset.
	Seed int64 `envconfig:"seed"`

	// Stack, SmallBlind and BigBlind mirror the engine's stakes. The
	// protocol never carries them, so a bot that tracks state against the
	// wrong stakes drifts immediately.
	Stack      int `envconfig:"stack" default:"400"`
	SmallBlind int `envconfig:"small_blind" default:"1"`
	BigBlind   int `envconfig:"big_blind" default:"2"`
}

// FromEnv parses the BOUNTYBOT_* environment variables.
func FromEnv() (*Bot, error) {
	var cfg Bot
	if err := envconfig.Process("bountybot", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// Addr returns the host:port dial target.
func (b *Bot) Addr() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

// Stakes returns the table stakes the engine announced.
func (b *Bot) Stakes() game.Config {
	return game.Config{
		StartingStack: b.Stack,
		SmallBlind:    b.SmallBlind,
		BigBlind:      b.BigBlind,
	}
}
