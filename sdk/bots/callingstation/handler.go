package callingstation

import (
	"slices"

	"github.com/lox/bountybot/game"
	"github.com/lox/bountybot/sdk"
)

// Handler implements a calling station strategy that always calls or checks
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (Handler) OnNewRound(game.GameState, *game.RoundState, int)     {}
func (Handler) OnRoundOver(game.GameState, *game.TerminalState, int) {}

func (Handler) GetAction(_ game.GameState, rs *game.RoundState, _ int) game.Move {
	// Calling station strategy: always check or call, never raise
	if slices.Contains(rs.LegalActions(), game.Check) {
		return game.Move{Action: game.Check}
	}
	return game.Move{Action: game.Call}
}

// Check it implements the sdk.Handler interface
var _ sdk.Handler = (*Handler)(nil)
