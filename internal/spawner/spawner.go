// Package spawner launches and supervises the external bot processes of a
// match. Each bot learns its engine address through the BOUNTYBOT_*
// environment, the same contract sdk/config parses on the bot side.
package spawner

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/bountybot/game"
)

// Bot describes one external bot process.
type Bot struct {
	Name    string
	Command string
	Args    []string
	Addr    string      // engine host:port the bot must dial
	Seed    int64       // zero keeps the bot's own seeding
	Stakes  game.Config // announced so the bot tracks state against the right stakes
}

// env renders the environment contract for the bot.
func (b Bot) env() (map[string]string, error) {
	host, port, err := net.SplitHostPort(b.Addr)
	if err != nil {
		return nil, fmt.Errorf("engine address %q: %w", b.Addr, err)
	}
	env := map[string]string{
		"BOUNTYBOT_HOST": host,
		"BOUNTYBOT_PORT": port,
		"BOUNTYBOT_NAME": b.Name,
	}
	if b.Seed != 0 {
		env["BOUNTYBOT_SEED"] = strconv.FormatInt(b.Seed, 10)
	}
	if b.Stakes != (game.Config{}) {
		env["BOUNTYBOT_STACK"] = strconv.Itoa(b.Stakes.StartingStack)
		env["BOUNTYBOT_SMALL_BLIND"] = strconv.Itoa(b.Stakes.SmallBlind)
		env["BOUNTYBOT_BIG_BLIND"] = strconv.Itoa(b.Stakes.BigBlind)
	}
	return env, nil
}

// Spawner tracks the processes of one match so they can be stopped together.
type Spawner struct {
	logger zerolog.Logger

	mu    sync.Mutex
	procs []*Process
}

// New creates a spawner.
func New(logger zerolog.Logger) *Spawner {
	return &Spawner{logger: logger.With().Str("component", "spawner").Logger()}
}

// Start launches bot and tracks it for StopAll.
func (s *Spawner) Start(ctx context.Context, bot Bot) (*Process, error) {
	env, err := bot.env()
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", bot.Name, err)
	}
	proc := newProcess(ctx, bot, env, s.logger)
	if err := proc.start(); err != nil {
		return nil, fmt.Errorf("bot %s: %w", bot.Name, err)
	}
	s.mu.Lock()
	s.procs = append(s.procs, proc)
	s.mu.Unlock()
	return proc, nil
}

// StopAll interrupts every process that is still running.
func (s *Spawner) StopAll() {
	for _, proc := range s.snapshot() {
		if err := proc.Stop(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to stop bot process")
		}
	}
}

// Wait blocks until every tracked process has exited.
func (s *Spawner) Wait() {
	for _, proc := range s.snapshot() {
		proc.Wait()
	}
}

// Alive returns how many tracked processes are still running.
func (s *Spawner) Alive() int {
	count := 0
	for _, proc := range s.snapshot() {
		if proc.Alive() {
			count++
		}
	}
	return count
}

func (s *Spawner) snapshot() []*Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Process(nil), s.procs...)
}
