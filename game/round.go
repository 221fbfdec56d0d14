package game

import "fmt"

// State is one node in a round's betting history: a live *RoundState while
// betting continues, a *TerminalState once the round has been decided.
type State interface {
	state()
}

func (*RoundState) state()    {}
func (*TerminalState) state() {}

// RoundState is an immutable betting state. Seat 0 posts the small blind
// for the round; Button%2 is the seat whose turn it is. Hole cards for a
// seat stay nil until the engine reveals them.
type RoundState struct {
	Config   Config
	Button   int
	Street   int
	Pips     [2]int
	Stacks   [2]int
	Hands    [2][]string
	Bounties [2]string
	Deck     []string
	Previous *RoundState
}

// TerminalState closes a round. Deltas are the signed stack changes per
// seat and sum to zero. BountyHits stays nil until hits are known: a fold
// computes them locally, a showdown waits for the engine's report.
type TerminalState struct {
	Deltas     [2]int
	BountyHits *[2]bool
	Previous   *RoundState
}

// NewRound returns the post-blind root state of a fresh round, knowing only
// the given seat's hole cards.
func NewRound(cfg Config, seat int, hole []string) *RoundState {
	rs := &RoundState{
		Config:   cfg,
		Pips:     [2]int{cfg.SmallBlind, cfg.BigBlind},
		Stacks:   [2]int{cfg.StartingStack - cfg.SmallBlind, cfg.StartingStack - cfg.BigBlind},
		Bounties: [2]string{NoBounty, NoBounty},
	}
	rs.Hands[seat] = hole
	return rs
}

// ActiveSeat returns the seat whose turn it is to act.
func (rs *RoundState) ActiveSeat() int {
	return rs.Button % 2
}

// LegalActions returns the moves the active seat may make. Fold is always
// allowed. With pips matched, Check replaces Call and a Raise needs chips
// behind on both sides; facing a bet, Raise drops out once calling puts
// the active seat all-in or the opponent already is.
func (rs *RoundState) LegalActions() []Action {
	active := rs.ActiveSeat()
	cost := rs.Pips[1-active] - rs.Pips[active]
	if cost == 0 {
		actions := []Action{Check, Fold}
		if rs.Stacks[0] > 0 && rs.Stacks[1] > 0 {
			actions = append(actions, Raise)
		}
		return actions
	}
	actions := []Action{Fold, Call}
	if cost != rs.Stacks[active] && rs.Stacks[1-active] > 0 {
		actions = append(actions, Raise)
	}
	return actions
}

// RaiseBounds returns the smallest and largest legal raise targets for the
// active seat, as total pips. The cap keeps every raise callable by the
// opponent's remaining stack.
func (rs *RoundState) RaiseBounds() (minRaise, maxRaise int) {
	active := rs.ActiveSeat()
	cost := rs.Pips[1-active] - rs.Pips[active]
	maxContribution := min(rs.Stacks[active], rs.Stacks[1-active]+cost)
	minContribution := min(maxContribution, cost+max(cost, rs.Config.BigBlind))
	return rs.Pips[active] + minContribution, rs.Pips[active] + maxContribution
}

// BountyHits reports, per seat, whether that seat's bounty rank appears
// among its hole cards or the community cards dealt so far. Folding
// forfeits the pot but not a bounty hit.
func (rs *RoundState) BountyHits() [2]bool {
	var hits [2]bool
	for seat := range hits {
		hits[seat] = rankAmong(rs.Bounties[seat], rs.Hands[seat], rs.Deck)
	}
	return hits
}

func rankAmong(bounty string, groups ...[]string) bool {
	for _, cards := range groups {
		for _, card := range cards {
			if card != "" && bounty == card[:1] {
				return true
			}
		}
	}
	return false
}

// Proceed applies the active seat's move and returns the resulting state.
// Legality is not checked here; the engine referees, and strategies are
// expected to stay within LegalActions and RaiseBounds.
func (rs *RoundState) Proceed(move Move) (State, error) {
	active := rs.ActiveSeat()
	switch move.Action {
	case Fold:
		var delta int
		if active == 0 {
			delta = rs.Stacks[0] - rs.Config.StartingStack
		} else {
			delta = rs.Config.StartingStack - rs.Stacks[1]
		}
		hits := rs.BountyHits()
		return &TerminalState{Deltas: [2]int{delta, -delta}, BountyHits: &hits, Previous: rs}, nil

	case Call:
		if rs.Button == 0 {
			// Small blind completing preflop. The big blind keeps the
			// option, so the street does not advance yet.
			next := rs.child()
			next.Button = 1
			next.Pips = [2]int{rs.Config.BigBlind, rs.Config.BigBlind}
			next.Stacks = [2]int{rs.Config.StartingStack - rs.Config.BigBlind, rs.Config.StartingStack - rs.Config.BigBlind}
			return next, nil
		}
		next := rs.child()
		next.Button++
		contribution := next.Pips[1-active] - next.Pips[active]
		next.Stacks[active] -= contribution
		next.Pips[active] += contribution
		return next.proceedStreet(), nil

	case Check:
		if (rs.Street == Preflop && rs.Button > 0) || rs.Button > 1 {
			return rs.proceedStreet(), nil
		}
		next := rs.child()
		next.Button++
		return next, nil

	case Raise:
		next := rs.child()
		next.Button++
		contribution := move.Amount - next.Pips[active]
		next.Stacks[active] -= contribution
		next.Pips[active] += contribution
		return next, nil
	}
	return nil, fmt.Errorf("unknown action %d", move.Action)
}

// proceedStreet closes the current street. Past the river it is showdown,
// where deltas stay zero until the engine reports the result.
func (rs *RoundState) proceedStreet() State {
	if rs.Street == River {
		return &TerminalState{Previous: rs}
	}
	next := rs.child()
	next.Button = 1
	if rs.Street == Preflop {
		next.Street = Flop
	} else {
		next.Street = rs.Street + 1
	}
	next.Pips = [2]int{}
	return next
}

// child clones rs with the history link set, ready to become the next node.
func (rs *RoundState) child() *RoundState {
	next := *rs
	next.Previous = rs
	return &next
}

// WithHands returns a copy of rs carrying the given hole cards. The copy
// replaces rs in the chain rather than extending it, which is how the
// engine's retroactive hand reveal slots in.
func (rs *RoundState) WithHands(hands [2][]string) *RoundState {
	next := *rs
	next.Hands = hands
	return &next
}

// WithBounties returns a copy of rs carrying the given bounty ranks.
func (rs *RoundState) WithBounties(bounties [2]string) *RoundState {
	next := *rs
	next.Bounties = bounties
	return &next
}

// WithDeck returns a copy of rs carrying the given community cards.
func (rs *RoundState) WithDeck(deck []string) *RoundState {
	next := *rs
	next.Deck = deck
	return &next
}
