package random

import (
	rand "math/rand/v2"
	"time"

	"github.com/lox/bountybot/game"
	"github.com/lox/bountybot/sdk"
)

// Handler implements a random strategy that makes random legal moves
type Handler struct {
	rng *rand.Rand
}

func NewHandler() *Handler {
	return NewHandlerSeeded(uint64(time.Now().UnixNano()))
}

// NewHandlerSeeded pins the move sequence for reproducible matches.
func NewHandlerSeeded(seed uint64) *Handler {
	return &Handler{
		rng: rand.New(rand.NewPCG(seed, 0)),
	}
}

func (*Handler) OnNewRound(game.GameState, *game.RoundState, int)     {}
func (*Handler) OnRoundOver(game.GameState, *game.TerminalState, int) {}

func (h *Handler) GetAction(_ game.GameState, rs *game.RoundState, _ int) game.Move {
	actions := rs.LegalActions()
	action := actions[h.rng.IntN(len(actions))]
	if action != game.Raise {
		return game.Move{Action: action}
	}
	lo, hi := rs.RaiseBounds()
	return game.Move{Action: game.Raise, Amount: lo + h.rng.IntN(hi-lo+1)}
}

// Check it implements the sdk.Handler interface
var _ sdk.Handler = (*Handler)(nil)
