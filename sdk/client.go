package sdk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lox/bountybot/game"
	"github.com/lox/bountybot/internal/protocol"
)

// Client drives one match against an engine. It owns the decode state: the
// match-level GameState, the current round (or terminal) state, the seat
// assigned for the round, and whether the next round is still pending.
type Client struct {
	handler Handler
	cfg     game.Config
	logger  zerolog.Logger

	scanner *bufio.Scanner
	w       *bufio.Writer

	gameState     game.GameState
	state         game.State
	seat          int
	awaitingRound bool
}

// NewClient wraps an established engine connection. The client does not
// close rw; that stays with the caller.
func NewClient(rw io.ReadWriter, handler Handler, cfg game.Config, logger zerolog.Logger) *Client {
	return &Client{
		handler:       handler,
		cfg:           cfg,
		logger:        logger.With().Str("component", "client").Logger(),
		scanner:       bufio.NewScanner(rw),
		w:             bufio.NewWriter(rw),
		gameState:     game.GameState{RoundNum: 1},
		awaitingRound: true,
	}
}

// Run processes engine lines until the engine quits or the transport fails.
// Cancellation is transport driven: a cancelled ctx is only noticed between
// lines, so close the underlying connection to unblock a pending read.
func (c *Client) Run(ctx context.Context) error {
	for c.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := c.processLine(c.scanner.Text())
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.scanner.Err(); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return errors.New("engine closed the stream without quitting")
}

// processLine applies each clause in order, then sends the one reply the
// engine expects for the line.
func (c *Client) processLine(line string) (bool, error) {
	c.logger.Debug().Str("line", line).Msg("received")
	for _, clause := range protocol.ParseLine(line) {
		quit, err := c.apply(clause)
		if err != nil {
			return false, fmt.Errorf("clause %c%s: %w", clause.Tag, clause.Payload, err)
		}
		if quit {
			return true, nil
		}
	}
	return false, c.reply()
}

func (c *Client) apply(clause protocol.Clause) (bool, error) {
	switch clause.Tag {
	case protocol.TagClock:
		clock, err := strconv.ParseFloat(clause.Payload, 64)
		if err != nil {
			return false, err
		}
		c.gameState.GameClock = clock

	case protocol.TagSeat:
		seat, err := strconv.Atoi(clause.Payload)
		if err != nil {
			return false, err
		}
		if seat != 0 && seat != 1 {
			return false, fmt.Errorf("seat %d out of range", seat)
		}
		c.seat = seat

	case protocol.TagHands:
		c.state = game.NewRound(c.cfg, c.seat, protocol.SplitCards(clause.Payload))

	case protocol.TagBounty:
		rs, err := c.roundState()
		if err != nil {
			return false, err
		}
		bounties := rs.Bounties
		bounties[c.seat] = clause.Payload
		c.state = rs.WithBounties(bounties)
		if c.awaitingRound {
			c.awaitingRound = false
			c.handler.OnNewRound(c.gameState, c.state.(*game.RoundState), c.seat)
		}

	case protocol.TagFold, protocol.TagCall, protocol.TagCheck, protocol.TagRaise:
		move, err := protocol.ParseMove(string(clause.Tag) + clause.Payload)
		if err != nil {
			return false, err
		}
		rs, err := c.roundState()
		if err != nil {
			return false, err
		}
		next, err := rs.Proceed(move)
		if err != nil {
			return false, err
		}
		c.state = next

	case protocol.TagBoard:
		rs, err := c.roundState()
		if err != nil {
			return false, err
		}
		c.state = rs.WithDeck(protocol.SplitCards(clause.Payload))

	case protocol.TagReveal:
		// The revealed opponent hand replaces the final node of the chain;
		// earlier snapshots keep whatever was known at the time.
		ts, err := c.terminalState()
		if err != nil {
			return false, err
		}
		hands := ts.Previous.Hands
		hands[1-c.seat] = protocol.SplitCards(clause.Payload)
		c.state = &game.TerminalState{Previous: ts.Previous.WithHands(hands)}

	case protocol.TagDelta:
		delta, err := strconv.Atoi(clause.Payload)
		if err != nil {
			return false, err
		}
		ts, err := c.terminalState()
		if err != nil {
			return false, err
		}
		deltas := [2]int{-delta, -delta}
		deltas[c.seat] = delta
		c.state = &game.TerminalState{Deltas: deltas, Previous: ts.Previous}
		c.gameState.Bankroll += delta

	case protocol.TagBountyHits:
		if len(clause.Payload) != 2 {
			return false, fmt.Errorf("want two bounty flags, got %q", clause.Payload)
		}
		ts, err := c.terminalState()
		if err != nil {
			return false, err
		}
		var hits [2]bool
		hits[c.seat] = clause.Payload[0] == '1'
		hits[1-c.seat] = clause.Payload[1] == '1'
		settled := &game.TerminalState{Deltas: ts.Deltas, BountyHits: &hits, Previous: ts.Previous}
		c.state = settled
		c.handler.OnRoundOver(c.gameState, settled, c.seat)
		c.gameState.RoundNum++
		c.awaitingRound = true

	case protocol.TagQuit:
		return true, nil

	default:
		return false, errors.New("unknown clause tag")
	}
	return false, nil
}

// reply sends the single line the engine expects back. Before a round
// starts and after it settles that is a bare keep-alive check; mid-round it
// is the handler's move, which also lands in the local state because the
// engine relays only the opponent's moves back.
func (c *Client) reply() error {
	if c.awaitingRound {
		return c.send(game.Move{Action: game.Check})
	}
	rs, ok := c.state.(*game.RoundState)
	if !ok {
		return errors.New("engine requested an action with no round in progress")
	}
	if rs.ActiveSeat() != c.seat {
		return fmt.Errorf("engine addressed seat %d but seat %d is to act", c.seat, rs.ActiveSeat())
	}
	move := c.handler.GetAction(c.gameState, rs, c.seat)
	next, err := rs.Proceed(move)
	if err != nil {
		return fmt.Errorf("handler move: %w", err)
	}
	c.state = next
	c.logger.Debug().Stringer("move", move).Msg("acting")
	return c.send(move)
}

func (c *Client) send(move game.Move) error {
	if _, err := c.w.WriteString(protocol.EncodeMove(move) + "\n"); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *Client) roundState() (*game.RoundState, error) {
	rs, ok := c.state.(*game.RoundState)
	if !ok {
		return nil, errors.New("no betting round in progress")
	}
	return rs, nil
}

func (c *Client) terminalState() (*game.TerminalState, error) {
	ts, ok := c.state.(*game.TerminalState)
	if !ok {
		return nil, errors.New("round is not over")
	}
	return ts, nil
}
