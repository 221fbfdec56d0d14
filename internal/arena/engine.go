// Package arena hosts heads-up matches between two bots speaking the
// newline protocol. The engine owns the deck and the authoritative betting
// state; bots see only their own cards until a showdown reveals the rest.
package arena

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/bountybot/game"
	"github.com/lox/bountybot/internal/protocol"
)

// A winner whose bounty rank connected collects half the pot winnings
// again, rounded up, plus a flat bonus on top.
const bountyBonus = 10

var errClockExpired = errors.New("game clock expired")

// Result summarizes a finished match. Indexes follow the order the
// connections were handed to Play, not the per-round seating.
type Result struct {
	Names     [2]string
	Bankrolls [2]int
	Rounds    int
}

// Winner returns the name of the bot ahead on chips, or "" for a tie.
func (r Result) Winner() string {
	switch {
	case r.Bankrolls[0] > r.Bankrolls[1]:
		return r.Names[0]
	case r.Bankrolls[1] > r.Bankrolls[0]:
		return r.Names[1]
	}
	return ""
}

// Progress is handed to the progress hook after every settled round.
type Progress struct {
	Round     int
	Rounds    int
	Names     [2]string
	Bankrolls [2]int
}

// Engine referees one match at a time.
type Engine struct {
	cfg      *Config
	logger   zerolog.Logger
	clock    quartz.Clock
	rng      *rand.Rand
	history  *History
	progress func(Progress)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine logging to the given logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock substitutes the clock used for move timeouts.
func WithClock(clk quartz.Clock) Option {
	return func(e *Engine) { e.clock = clk }
}

// WithHistory records every round to h. The caller closes h.
func WithHistory(h *History) Option {
	return func(e *Engine) { e.history = h }
}

// WithProgress calls fn after each settled round.
func WithProgress(fn func(Progress)) Option {
	return func(e *Engine) { e.progress = fn }
}

// New builds an engine for cfg. A zero seed shuffles differently every match.
func New(cfg *Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		logger: zerolog.Nop(),
		clock:  quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(e)
	}
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e.rng = newRNG(seed)
	e.logger = e.logger.With().Str("component", "arena").Logger()
	return e
}

// peer is one connected bot. pending holds the clauses queued for it since
// its last line; a peer only receives a line when it must reply to one.
type peer struct {
	name     string
	w        *bufio.Writer
	lines    chan string
	pending  []string
	bankroll int
	clock    float64
	bounty   string
	active   bool
}

func (p *peer) queue(clauses ...string) {
	p.pending = append(p.pending, clauses...)
}

// Play runs the configured match over two bot connections. The first
// connection takes the first configured bot's name and posts the small
// blind in round one; seats swap every round.
func (e *Engine) Play(ctx context.Context, conns [2]io.ReadWriteCloser) (Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var peers [2]*peer
	for i := range peers {
		peers[i] = &peer{
			name:   e.cfg.Bots[i].Name,
			w:      bufio.NewWriter(conns[i]),
			lines:  make(chan string, 1),
			clock:  e.cfg.Game.GameClock,
			bounty: game.NoBounty,
			active: true,
		}
		go readLines(ctx, conns[i], peers[i].lines)
	}

	e.logger.Info().
		Str("bot0", peers[0].name).
		Str("bot1", peers[1].name).
		Int("rounds", e.cfg.Game.Rounds).
		Msg("match starting")

	order := peers
	for round := 1; round <= e.cfg.Game.Rounds; round++ {
		if (round-1)%e.cfg.Game.BountyPeriod == 0 {
			for _, p := range peers {
				p.bounty = randomBounty(e.rng)
			}
		}
		if err := e.playRound(ctx, round, order, round == e.cfg.Game.Rounds); err != nil {
			return e.result(peers, round-1), err
		}
		if e.progress != nil {
			e.progress(Progress{
				Round:     round,
				Rounds:    e.cfg.Game.Rounds,
				Names:     [2]string{peers[0].name, peers[1].name},
				Bankrolls: [2]int{peers[0].bankroll, peers[1].bankroll},
			})
		}
		order[0], order[1] = order[1], order[0]
	}

	result := e.result(peers, e.cfg.Game.Rounds)
	e.logger.Info().
		Str("winner", result.Winner()).
		Int("bankroll0", peers[0].bankroll).
		Int("bankroll1", peers[1].bankroll).
		Msg("match finished")
	return result, nil
}

// Serve accepts two bot connections and plays the configured match between
// them. The first bot to connect takes the first configured slot.
func (e *Engine) Serve(ctx context.Context, ln net.Listener) (Result, error) {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	var conns [2]io.ReadWriteCloser
	defer func() {
		for _, conn := range conns {
			if conn != nil {
				conn.Close()
			}
		}
	}()
	for i := range conns {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			return Result{}, fmt.Errorf("accept bot %d: %w", i+1, err)
		}
		conns[i] = conn
		e.logger.Info().
			Str("bot", e.cfg.Bots[i].Name).
			Str("remote", conn.RemoteAddr().String()).
			Msg("bot connected")
	}
	return e.Play(ctx, conns)
}

func (e *Engine) result(peers [2]*peer, rounds int) Result {
	return Result{
		Names:     [2]string{peers[0].name, peers[1].name},
		Bankrolls: [2]int{peers[0].bankroll, peers[1].bankroll},
		Rounds:    rounds,
	}
}

// playRound deals, drives the betting to a terminal state and settles it.
// order maps seats to peers for this round.
func (e *Engine) playRound(ctx context.Context, round int, order [2]*peer, final bool) error {
	deck := newDeck()
	shuffle(e.rng, deck)
	holes := [2][]string{deck[0:2], deck[2:4]}
	board := deck[4:9]

	rs := game.NewRound(e.cfg.Game.Stakes(), 0, holes[0]).
		WithHands(holes).
		WithBounties([2]string{order[0].bounty, order[1].bounty})

	for seat, p := range order {
		p.pending = p.pending[:0]
		p.queue(
			"P"+strconv.Itoa(seat),
			"H"+protocol.JoinCards(holes[seat]),
			"G"+p.bounty,
		)
	}

	var actions []string
	state := game.State(rs)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch s := state.(type) {
		case *game.TerminalState:
			return e.settleRound(ctx, round, order, s, actions, final)

		case *game.RoundState:
			var mv game.Move
			if s.Stacks[0] == 0 && s.Stacks[1] == 0 {
				// Both all-in: run the board out without asking anyone.
				mv = game.Move{Action: game.Check}
				order[0].queue("K")
				order[1].queue("K")
			} else {
				var err error
				mv, err = e.awaitMove(ctx, order[s.ActiveSeat()], s)
				if err != nil {
					return err
				}
				order[1-s.ActiveSeat()].queue(protocol.EncodeMove(mv))
			}
			actions = append(actions, protocol.EncodeMove(mv))

			next, err := s.Proceed(mv)
			if err != nil {
				return err
			}
			state = e.revealBoard(order, s, next, board)
		}
	}
}

// revealBoard queues a board clause for both peers whenever the street
// advanced, and pins the revealed cards onto the state.
func (e *Engine) revealBoard(order [2]*peer, prev *game.RoundState, next game.State, board []string) game.State {
	rs, ok := next.(*game.RoundState)
	if !ok || rs.Street == prev.Street {
		return next
	}
	revealed := board[:rs.Street]
	clause := "B" + protocol.JoinCards(revealed)
	order[0].queue(clause)
	order[1].queue(clause)
	return rs.WithDeck(revealed)
}

// awaitMove flushes the actor's queued clauses, reads its reply and charges
// the think time against its game clock. A missing, unparseable or illegal
// reply degrades to a check when checking is free, otherwise a fold.
func (e *Engine) awaitMove(ctx context.Context, p *peer, rs *game.RoundState) (game.Move, error) {
	if !p.active {
		return forcedMove(rs), nil
	}
	if err := e.flush(p); err != nil {
		e.drop(p, err)
		return forcedMove(rs), nil
	}
	reply, err := e.read(ctx, p)
	if err != nil {
		if ctx.Err() != nil {
			return game.Move{}, err
		}
		e.drop(p, err)
		return forcedMove(rs), nil
	}
	mv, err := protocol.ParseMove(strings.TrimSpace(reply))
	if err != nil {
		e.logger.Warn().Str("bot", p.name).Err(err).Msg("unreadable reply")
		return forcedMove(rs), nil
	}
	return e.legalize(p, rs, mv), nil
}

// read waits for the peer's next line, bounded by its remaining game clock.
func (e *Engine) read(ctx context.Context, p *peer) (string, error) {
	timeout := time.Duration(p.clock * float64(time.Second))
	if timeout <= 0 {
		return "", errClockExpired
	}
	expired := make(chan struct{})
	timer := e.clock.AfterFunc(timeout, func() {
		close(expired)
	})
	defer timer.Stop()

	start := e.clock.Now()
	select {
	case line, ok := <-p.lines:
		if !ok {
			return "", errors.New("connection closed")
		}
		p.clock -= e.clock.Since(start).Seconds()
		return line, nil
	case <-expired:
		p.clock = 0
		return "", errClockExpired
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// flush writes the peer's queued clauses as one line, led by its clock.
func (e *Engine) flush(p *peer) error {
	clauses := append(
		[]string{"T" + strconv.FormatFloat(max(p.clock, 0), 'f', 3, 64)},
		p.pending...,
	)
	p.pending = p.pending[:0]
	line := strings.Join(clauses, " ")
	e.logger.Debug().Str("bot", p.name).Str("line", line).Msg("send")
	if _, err := p.w.WriteString(line + "\n"); err != nil {
		return err
	}
	return p.w.Flush()
}

// drop stops asking a peer for moves; the engine plays out its seats with
// forced checks and folds.
func (e *Engine) drop(p *peer, err error) {
	if !p.active {
		return
	}
	p.active = false
	e.logger.Warn().Str("bot", p.name).Err(err).Msg("bot stopped responding, forcing its moves")
}

func (e *Engine) legalize(p *peer, rs *game.RoundState, mv game.Move) game.Move {
	if !slices.Contains(rs.LegalActions(), mv.Action) {
		e.logger.Warn().Str("bot", p.name).Stringer("move", mv).Msg("illegal move")
		return forcedMove(rs)
	}
	if mv.Action == game.Raise {
		lo, hi := rs.RaiseBounds()
		if mv.Amount < lo || mv.Amount > hi {
			e.logger.Warn().
				Str("bot", p.name).
				Int("amount", mv.Amount).
				Int("min", lo).
				Int("max", hi).
				Msg("raise out of bounds")
			return forcedMove(rs)
		}
	}
	return mv
}

func forcedMove(rs *game.RoundState) game.Move {
	if slices.Contains(rs.LegalActions(), game.Check) {
		return game.Move{Action: game.Check}
	}
	return game.Move{Action: game.Fold}
}

// settleRound scores the terminal state, applies the bounty bonus, reports
// the result to both peers and collects their keep-alive replies.
func (e *Engine) settleRound(ctx context.Context, round int, order [2]*peer, ts *game.TerminalState, actions []string, final bool) error {
	finalRound := ts.Previous
	deltas := ts.Deltas

	var hits [2]bool
	if ts.BountyHits != nil {
		hits = *ts.BountyHits
	} else {
		// Showdown: score both hands and reveal them.
		hits = finalRound.BountyHits()
		score0, err := evalSeven(finalRound.Hands[0], finalRound.Deck)
		if err != nil {
			return err
		}
		score1, err := evalSeven(finalRound.Hands[1], finalRound.Deck)
		if err != nil {
			return err
		}
		winnings := e.cfg.Game.StartingStack - finalRound.Stacks[0]
		switch {
		case score0 > score1:
			deltas = [2]int{winnings, -winnings}
		case score1 > score0:
			deltas = [2]int{-winnings, winnings}
		}
		order[0].queue("O" + protocol.JoinCards(finalRound.Hands[1]))
		order[1].queue("O" + protocol.JoinCards(finalRound.Hands[0]))
	}

	if winner := winnerSeat(deltas); winner >= 0 && hits[winner] {
		bonus := (deltas[winner]+1)/2 + bountyBonus
		deltas[winner] += bonus
		deltas[1-winner] -= bonus
	}

	for seat, p := range order {
		p.bankroll += deltas[seat]
		p.queue(
			"D"+strconv.Itoa(deltas[seat]),
			"Y"+hitFlag(hits[seat])+hitFlag(hits[1-seat]),
		)
		if final {
			p.queue("Q")
		}
	}

	if e.history != nil {
		rec := RoundRecord{
			Round:     round,
			Players:   [2]string{order[0].name, order[1].name},
			Bounties:  finalRound.Bounties,
			Holes:     finalRound.Hands,
			Board:     finalRound.Deck,
			Actions:   actions,
			Deltas:    deltas,
			Bankrolls: [2]int{order[0].bankroll, order[1].bankroll},
		}
		if err := e.history.Record(rec); err != nil {
			e.logger.Warn().Err(err).Msg("write history")
		}
	}

	for _, p := range order {
		if err := e.flush(p); err != nil {
			e.drop(p, err)
			continue
		}
		if final || !p.active {
			continue
		}
		if _, err := e.read(ctx, p); err != nil {
			if ctx.Err() != nil {
				return err
			}
			e.drop(p, err)
		}
	}

	e.logger.Debug().
		Int("round", round).
		Str("sb", order[0].name).
		Int("sb_delta", deltas[0]).
		Msg("round settled")
	return nil
}

func winnerSeat(deltas [2]int) int {
	switch {
	case deltas[0] > deltas[1]:
		return 0
	case deltas[1] > deltas[0]:
		return 1
	}
	return -1
}

func hitFlag(hit bool) string {
	if hit {
		return "1"
	}
	return "0"
}

// readLines feeds the peer's channel one line at a time, closing it when
// the connection goes away.
func readLines(ctx context.Context, r io.Reader, lines chan<- string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	close(lines)
}
