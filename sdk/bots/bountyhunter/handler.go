package bountyhunter

import (
	"slices"

	"github.com/lox/bountybot/game"
	"github.com/lox/bountybot/sdk"
)

// Handler implements a strategy that applies pressure whenever its bounty
// rank is live: it raises around twice the opponent's commitment when the
// bounty rank sits in its hole cards or on the board, and otherwise plays
// a passive check-or-call line.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (Handler) OnNewRound(game.GameState, *game.RoundState, int)     {}
func (Handler) OnRoundOver(game.GameState, *game.TerminalState, int) {}

func (Handler) GetAction(_ game.GameState, rs *game.RoundState, seat int) game.Move {
	actions := rs.LegalActions()
	if rs.BountyHits()[seat] && slices.Contains(actions, game.Raise) {
		lo, hi := rs.RaiseBounds()
		amount := min(hi, max(lo, 2*rs.Pips[1-seat]))
		return game.Move{Action: game.Raise, Amount: amount}
	}
	if slices.Contains(actions, game.Check) {
		return game.Move{Action: game.Check}
	}
	return game.Move{Action: game.Call}
}

// Check it implements the sdk.Handler interface
var _ sdk.Handler = (*Handler)(nil)
