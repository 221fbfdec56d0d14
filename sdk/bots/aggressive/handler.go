package aggressive

import (
	rand "math/rand/v2"
	"slices"
	"time"

	"github.com/lox/bountybot/game"
	"github.com/lox/bountybot/sdk"
)

// Handler implements an aggressive strategy that raises 70% of the time
// when possible
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
	if slices.Contains(actions, game.Raise) && h.rng.Float64() < 0.7 {
		// The raise bounds are total amounts, not increments.
		lo, _ := rs.RaiseBounds()
		return game.Move{Action: game.Raise, Amount: lo}
	}
	if slices.Contains(actions, game.Call) {
		return game.Move{Action: game.Call}
	}
	if slices.Contains(actions, game.Check) {
		return game.Move{Action: game.Check}
	}
	return game.Move{Action: game.Fold}
}

// Check it implements the sdk.Handler interface
var _ sdk.Handler = (*Handler)(nil)
