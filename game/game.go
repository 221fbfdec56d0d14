// Package game implements the heads-up no-limit hold'em betting state
// machine used on both sides of the wire: the bot client replays it from
// engine clauses, the local arena drives it as the referee. States are
// persistent; every transition allocates a new node linked back to its
// predecessor, so a strategy can walk the full history of the round.
package game

import "fmt"

// Street values match the wire: the number of community cards dealt when
// the street begins. Preflop is 0, there is no street 1 or 2.
const (
	Preflop = 0
	Flop    = 3
	Turn    = 4
	River   = 5
)

// NoBounty marks a bounty rank that has not been assigned yet.
const NoBounty = "-1"

// Config holds the table stakes. Every state carries its Config, so
// transitions need no package globals.
type Config struct {
	StartingStack int
	SmallBlind    int
	BigBlind      int
}

// DefaultConfig returns the standard match stakes.
func DefaultConfig() Config {
	return Config{StartingStack: 400, SmallBlind: 1, BigBlind: 2}
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Call
	Check
	Raise
)

func (a Action) String() string {
	return [...]string{"fold", "call", "check", "raise"}[a]
}

// Move pairs an Action with its raise target. Amount is the total pip the
// raiser moves to, not the increment, and only matters for Raise.
type Move struct {
	Action Action
	Amount int
}

func (m Move) String() string {
	if m.Action == Raise {
		return fmt.Sprintf("raise to %d", m.Amount)
	}
	return m.Action.String()
}

// GameState tracks match progress across rounds: the cumulative bankroll,
// the think-time budget left in seconds, and the 1-based round number.
// Values are replaced, never mutated, as the engine reports updates.
type GameState struct {
	Bankroll  int
	GameClock float64
	RoundNum  int
}
