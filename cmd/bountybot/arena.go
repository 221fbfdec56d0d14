package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/bountybot/cmd/bountybot/shared"
	"github.com/lox/bountybot/internal/arena"
	"github.com/lox/bountybot/internal/spawner"
	"github.com/lox/bountybot/internal/tui"
	"github.com/lox/bountybot/sdk"
)

// ArenaCmd referees one match. Without --listen it runs the configured
// built-in strategies in process; with --listen it waits for two bot
// processes to dial in.
type ArenaCmd struct {
	Config   string `default:"bountybot.hcl" type:"path" help:"HCL match configuration"`
	Listen   string `help:"Host the match over TCP on this address instead of in process"`
	TUI      bool   `help:"Watch the match live (quitting the viewer does not stop the match)"`
	Rounds   int    `help:"Override the configured number of rounds"`
	Seed     int64  `help:"Override the configured shuffle seed"`
	History  string `help:"Write per-round JSON history to this file"`
	LogLevel string `default:"info" help:"Log level (debug|info|warn|error)"`
	LogJSON  bool   `help:"Output JSON logs instead of console format"`
}

func (c *ArenaCmd) Run() error {
	logger := shared.SetupLogger(c.LogLevel, c.LogJSON)
	if c.TUI && !c.LogJSON {
		// Console output fights the alternate screen, keep errors only.
		logger = logger.Level(zerolog.ErrorLevel)
	}

	cfg, err := arena.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Rounds > 0 {
		cfg.Game.Rounds = c.Rounds
	}
	if c.Seed != 0 {
		cfg.Game.Seed = c.Seed
	}
	if c.History != "" {
		cfg.Game.HistoryFile = c.History
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info().
		Int("rounds", cfg.Game.Rounds).
		Int("starting_stack", cfg.Game.StartingStack).
		Int("small_blind", cfg.Game.SmallBlind).
		Int("big_blind", cfg.Game.BigBlind).
		Int("bounty_period", cfg.Game.BountyPeriod).
		Str("bot0", cfg.Bots[0].Name).
		Str("bot1", cfg.Bots[1].Name).
		Msg("Starting match")

	opts := []arena.Option{arena.WithLogger(logger)}

	if cfg.Game.HistoryFile != "" {
		hist, err := arena.OpenHistory(cfg.Game.HistoryFile)
		if err != nil {
			return err
		}
		defer hist.Close()
		logger.Info().Str("file", cfg.Game.HistoryFile).Str("match", hist.MatchID()).Msg("Recording round history")
		opts = append(opts, arena.WithHistory(hist))
	}

	// The progress hook must never block the round loop, so a slow viewer
	// drops updates rather than stalling the match.
	var updates chan arena.Progress
	if c.TUI {
		updates = make(chan arena.Progress, 256)
		opts = append(opts, arena.WithProgress(func(p arena.Progress) {
			select {
			case updates <- p:
			default:
			}
		}))
	}

	engine := arena.New(cfg, opts...)
	ctx := shared.SetupSignalHandler(logger)

	play := func() (arena.Result, error) {
		if c.Listen != "" {
			return c.serve(ctx, logger, engine)
		}
		return runMatch(ctx, logger, engine, cfg)
	}

	var result arena.Result
	var playErr error
	if c.TUI {
		done := make(chan error, 1)
		go func() {
			res, err := play()
			result = res
			close(updates)
			done <- err
		}()
		if err := tui.Run(updates); err != nil {
			logger.Warn().Err(err).Msg("Viewer failed, match continues headless")
		}
		playErr = <-done
	} else {
		result, playErr = play()
	}
	if playErr != nil {
		if ctx.Err() != nil {
			logger.Info().Msg("Match aborted")
			return nil
		}
		return playErr
	}

	fmt.Print(tui.RenderStandings(result))
	return nil
}

// serve hosts the match on a TCP listener and waits for both bots to dial in.
func (c *ArenaCmd) serve(ctx context.Context, logger zerolog.Logger, engine *arena.Engine) (arena.Result, error) {
	ln, err := net.Listen("tcp", c.Listen)
	if err != nil {
		return arena.Result{}, err
	}
	defer ln.Close()
	logger.Info().Str("address", ln.Addr().String()).Msg("Waiting for two bots")
	return engine.Serve(ctx, ln)
}

// runMatch wires each configured bot to the engine: built-in strategies run
// in process over in-memory pipes, and bots with a command are spawned and
// accepted on their own listener so seats stay deterministic.
func runMatch(ctx context.Context, logger zerolog.Logger, engine *arena.Engine, cfg *arena.Config) (arena.Result, error) {
	mctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(mctx)

	procs := spawner.New(logger)
	defer procs.Wait()
	defer procs.StopAll()

	var conns [2]io.ReadWriteCloser
	for i, bot := range cfg.Bots {
		var seed int64
		if cfg.Game.Seed != 0 {
			seed = cfg.Game.Seed + int64(i+1)
		}

		switch {
		case bot.Command != "":
			conn, err := spawnBot(gctx, procs, bot, cfg.Game, seed)
			if err != nil {
				return arena.Result{}, err
			}
			defer conn.Close()
			conns[i] = conn

		case bot.Strategy != "":
			handler, err := newHandler(bot.Strategy, uint64(seed))
			if err != nil {
				return arena.Result{}, err
			}

			engineEnd, botEnd := net.Pipe()
			conns[i] = engineEnd

			// The client only notices cancellation through its transport.
			stop := context.AfterFunc(gctx, func() { botEnd.Close() })
			defer stop()

			botLogger := logger.With().Str("bot", bot.Name).Logger()
			g.Go(func() error {
				client := sdk.NewClient(botEnd, handler, cfg.Game.Stakes(), botLogger)
				if err := client.Run(gctx); err != nil && gctx.Err() == nil {
					return fmt.Errorf("bot %s: %w", bot.Name, err)
				}
				return nil
			})

		default:
			return arena.Result{}, fmt.Errorf("bot %s has neither a strategy nor a command; use --listen for bots that dial in on their own", bot.Name)
		}
	}

	var result arena.Result
	g.Go(func() error {
		// Unblock clients that were dropped mid-match and never saw Q.
		defer cancel()
		res, err := engine.Play(gctx, conns)
		if err != nil {
			return err
		}
		result = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// dialBackTimeout bounds how long a spawned bot gets to connect.
const dialBackTimeout = 30 * time.Second

// spawnBot launches an external bot pointed at its own listener and waits
// for it to dial back.
func spawnBot(ctx context.Context, procs *spawner.Spawner, bot arena.BotConfig, settings arena.GameSettings, seed int64) (net.Conn, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	ln.(*net.TCPListener).SetDeadline(time.Now().Add(dialBackTimeout))

	proc, err := procs.Start(ctx, spawner.Bot{
		Name:    bot.Name,
		Command: bot.Command,
		Args:    bot.Args,
		Addr:    ln.Addr().String(),
		Seed:    seed,
		Stakes:  settings.Stakes(),
	})
	if err != nil {
		return nil, err
	}

	// Fail fast when the process dies before connecting, and give up when
	// the match context ends.
	go func() {
		proc.Wait()
		ln.Close()
	}()
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("bot %s did not dial in: %w", bot.Name, err)
	}
	return conn, nil
}
