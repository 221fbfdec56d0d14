// Package sdk provides the client side of a bounty hold'em match: a line
// decoder that replays the engine's clause stream through the betting state
// machine and asks a Handler for moves when it is the bot's turn.
package sdk

import "github.com/lox/bountybot/game"

// Handler is the strategy behind a bot. The client calls it from a single
// goroutine in protocol order. State arguments are persistent values; a
// handler may keep references to them across calls.
type Handler interface {
	// OnNewRound is called once per round, after the blinds, hole cards
	// and bounty rank are known and before any action is requested. seat
	// is this bot's seat for the round; seat 0 posts the small blind.
	OnNewRound(gs game.GameState, rs *game.RoundState, seat int)

	// GetAction is called whenever it is this bot's turn. The returned
	// move is applied locally and sent to the engine as-is, so it should
	// stay within LegalActions and RaiseBounds.
	GetAction(gs game.GameState, rs *game.RoundState, seat int) game.Move

	// OnRoundOver is called once the engine has reported the deltas and
	// bounty hits that settle the round.
	OnRoundOver(gs game.GameState, ts *game.TerminalState, seat int)
}
