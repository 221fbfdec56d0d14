package game

import "testing"

func testRound(t *testing.T) *RoundState {
	t.Helper()
	rs := NewRound(DefaultConfig(), 0, []string{"As", "Ah"})
	return rs.WithHands([2][]string{{"As", "Ah"}, {"Kd", "Kc"}})
}

func mustRound(t *testing.T, s State, err error) *RoundState {
	t.Helper()
	if err != nil {
		t.Fatalf("proceed: %v", err)
	}
	rs, ok := s.(*RoundState)
	if !ok {
		t.Fatalf("expected round state, got %T", s)
	}
	return rs
}

func mustTerminal(t *testing.T, s State, err error) *TerminalState {
	t.Helper()
	if err != nil {
		t.Fatalf("proceed: %v", err)
	}
	ts, ok := s.(*TerminalState)
	if !ok {
		t.Fatalf("expected terminal state, got %T", s)
	}
	return ts
}

func TestNewRoundPostsBlinds(t *testing.T) {
	rs := NewRound(DefaultConfig(), 1, []string{"Kd", "Kc"})
	if rs.Pips != [2]int{1, 2} {
		t.Errorf("pips = %v, want [1 2]", rs.Pips)
	}
	if rs.Stacks != [2]int{399, 398} {
		t.Errorf("stacks = %v, want [399 398]", rs.Stacks)
	}
	if rs.Hands[0] != nil {
		t.Errorf("opponent hand should be unknown, got %v", rs.Hands[0])
	}
	if rs.Bounties != [2]string{NoBounty, NoBounty} {
		t.Errorf("bounties = %v, want unassigned", rs.Bounties)
	}
	if rs.ActiveSeat() != 0 {
		t.Errorf("small blind acts first preflop, got seat %d", rs.ActiveSeat())
	}
}

func TestBlindCompleteKeepsOption(t *testing.T) {
	rs := testRound(t)
	s, err := rs.Proceed(Move{Action: Call})
	next := mustRound(t, s, err)

	if next.Pips != [2]int{2, 2} {
		t.Errorf("pips = %v, want [2 2]", next.Pips)
	}
	if next.Stacks != [2]int{398, 398} {
		t.Errorf("stacks = %v, want [398 398]", next.Stacks)
	}
	if next.Button != 1 {
		t.Errorf("button = %d, want 1", next.Button)
	}
	if next.Street != Preflop {
		t.Errorf("street = %d, the big blind still has the option", next.Street)
	}
	if next.Previous != rs {
		t.Error("blind complete should link back to the root state")
	}

	// The big blind checking the option closes preflop.
	s, err = next.Proceed(Move{Action: Check})
	flop := mustRound(t, s, err)
	if flop.Street != Flop || flop.Button != 1 || flop.Pips != ([2]int{0, 0}) {
		t.Errorf("after option check: street=%d button=%d pips=%v", flop.Street, flop.Button, flop.Pips)
	}
}

func TestRaiseMovesPipAndStack(t *testing.T) {
	rs := testRound(t)
	s, err := rs.Proceed(Move{Action: Raise, Amount: 10})
	next := mustRound(t, s, err)

	if next.Pips != [2]int{10, 2} {
		t.Errorf("pips = %v, want [10 2]", next.Pips)
	}
	if next.Stacks != [2]int{390, 398} {
		t.Errorf("stacks = %v, want [390 398]", next.Stacks)
	}
	if next.Button != 1 {
		t.Errorf("button = %d, want 1", next.Button)
	}
	if next.ActiveSeat() != 1 {
		t.Errorf("opponent should be active, got seat %d", next.ActiveSeat())
	}
	if next.Street != rs.Street {
		t.Errorf("a raise must not advance the street, got %d", next.Street)
	}
}

func TestFoldDeltas(t *testing.T) {
	rs := testRound(t)

	// Small blind open-folds: forfeits the posted blind.
	s, err := rs.Proceed(Move{Action: Fold})
	ts := mustTerminal(t, s, err)
	if ts.Deltas != [2]int{-1, 1} {
		t.Errorf("deltas = %v, want [-1 1]", ts.Deltas)
	}

	// Big blind folds to a raise: forfeits only the blind, not the
	// raiser's extra chips.
	s, err = rs.Proceed(Move{Action: Raise, Amount: 10})
	raised := mustRound(t, s, err)
	s, err = raised.Proceed(Move{Action: Fold})
	ts = mustTerminal(t, s, err)
	if ts.Deltas != [2]int{2, -2} {
		t.Errorf("deltas = %v, want [2 -2]", ts.Deltas)
	}

	if ts.Deltas[0]+ts.Deltas[1] != 0 {
		t.Errorf("deltas must sum to zero, got %v", ts.Deltas)
	}
	if ts.BountyHits == nil {
		t.Error("a fold should still evaluate bounty hits")
	}
	if ts.Previous != raised {
		t.Error("terminal should link the folded-on state")
	}
}

func TestChipConservationWithinStreet(t *testing.T) {
	rs := testRound(t)
	states := []*RoundState{rs}
	s, err := rs.Proceed(Move{Action: Raise, Amount: 10})
	states = append(states, mustRound(t, s, err))
	s, err = states[1].Proceed(Move{Action: Raise, Amount: 40})
	states = append(states, mustRound(t, s, err))

	for i, s := range states {
		for seat := 0; seat < 2; seat++ {
			if got := s.Pips[seat] + s.Stacks[seat]; got != DefaultConfig().StartingStack {
				t.Errorf("state %d seat %d: pips+stacks = %d, want %d", i, seat, got, DefaultConfig().StartingStack)
			}
		}
	}
}

func TestStreetProgression(t *testing.T) {
	rs := testRound(t)
	s, err := rs.Proceed(Move{Action: Call})
	state := mustRound(t, s, err)
	s, err = state.Proceed(Move{Action: Check})
	state = mustRound(t, s, err)

	if state.Street != Flop {
		t.Fatalf("street = %d, want %d", state.Street, Flop)
	}

	// Two checks close each postflop street.
	for _, want := range []int{Turn, River} {
		s, err = state.Proceed(Move{Action: Check})
		state = mustRound(t, s, err)
		s, err = state.Proceed(Move{Action: Check})
		state = mustRound(t, s, err)
		if state.Street != want {
			t.Fatalf("street = %d, want %d", state.Street, want)
		}
		if state.Button != 1 {
			t.Fatalf("button = %d after a street change, want 1", state.Button)
		}
	}

	// Checking down the river goes to showdown with nothing decided.
	s, err = state.Proceed(Move{Action: Check})
	state = mustRound(t, s, err)
	s, err = state.Proceed(Move{Action: Check})
	ts := mustTerminal(t, s, err)
	if ts.Deltas != [2]int{0, 0} {
		t.Errorf("showdown deltas = %v, the engine reports the result", ts.Deltas)
	}
	if ts.BountyHits != nil {
		t.Error("showdown bounty hits are the engine's to report")
	}
}

func TestAllInRunout(t *testing.T) {
	rs := testRound(t)
	s, err := rs.Proceed(Move{Action: Raise, Amount: 400})
	shoved := mustRound(t, s, err)
	s, err = shoved.Proceed(Move{Action: Call})
	state := mustRound(t, s, err)

	if state.Street != Flop {
		t.Fatalf("street = %d, want %d", state.Street, Flop)
	}
	if state.Stacks != [2]int{0, 0} {
		t.Fatalf("stacks = %v, want both empty", state.Stacks)
	}

	actions := state.LegalActions()
	for _, a := range actions {
		if a == Raise {
			t.Fatal("raise should not be legal with empty stacks")
		}
	}

	// Forced checks run the board out: two per street, showdown after six.
	checks := 0
	for {
		next, err := state.Proceed(Move{Action: Check})
		if err != nil {
			t.Fatalf("proceed: %v", err)
		}
		checks++
		if ts, ok := next.(*TerminalState); ok {
			if checks != 6 {
				t.Errorf("showdown after %d checks, want 6", checks)
			}
			if ts.Deltas != [2]int{0, 0} {
				t.Errorf("runout deltas = %v, want zeros", ts.Deltas)
			}
			return
		}
		state = next.(*RoundState)
		if checks > 6 {
			t.Fatal("runout never reached showdown")
		}
	}
}

func TestLegalActions(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name  string
		state *RoundState
		want  []Action
	}{
		{
			name:  "facing the blind",
			state: &RoundState{Config: cfg, Button: 0, Pips: [2]int{1, 2}, Stacks: [2]int{399, 398}},
			want:  []Action{Fold, Call, Raise},
		},
		{
			name:  "call would be all-in",
			state: &RoundState{Config: cfg, Button: 2, Pips: [2]int{10, 200}, Stacks: [2]int{190, 200}},
			want:  []Action{Fold, Call},
		},
		{
			name:  "opponent already all-in",
			state: &RoundState{Config: cfg, Button: 1, Pips: [2]int{400, 2}, Stacks: [2]int{0, 398}},
			want:  []Action{Fold, Call},
		},
		{
			name:  "matched pips",
			state: &RoundState{Config: cfg, Button: 1, Street: Flop, Pips: [2]int{0, 0}, Stacks: [2]int{390, 390}},
			want:  []Action{Check, Fold, Raise},
		},
		{
			name:  "matched pips with an empty stack",
			state: &RoundState{Config: cfg, Button: 1, Street: Flop, Pips: [2]int{0, 0}, Stacks: [2]int{780, 0}},
			want:  []Action{Check, Fold},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.state.LegalActions()
			if len(got) != len(tt.want) {
				t.Fatalf("actions = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("actions = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRaiseBounds(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name     string
		state    *RoundState
		min, max int
	}{
		{
			name:  "small blind opening",
			state: &RoundState{Config: cfg, Button: 0, Pips: [2]int{1, 2}, Stacks: [2]int{399, 398}},
			min:   4, max: 400,
		},
		{
			name:  "facing a raise to 10",
			state: &RoundState{Config: cfg, Button: 1, Pips: [2]int{10, 2}, Stacks: [2]int{390, 398}},
			min:   18, max: 400,
		},
		{
			name:  "capped by the short stack",
			state: &RoundState{Config: cfg, Button: 1, Street: Flop, Pips: [2]int{0, 0}, Stacks: [2]int{50, 300}},
			min:   2, max: 50,
		},
		{
			name:  "minimum clamped to maximum",
			state: &RoundState{Config: cfg, Button: 2, Street: Flop, Pips: [2]int{0, 0}, Stacks: [2]int{1, 500}},
			min:   1, max: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMin, gotMax := tt.state.RaiseBounds()
			if gotMin != tt.min || gotMax != tt.max {
				t.Errorf("bounds = (%d, %d), want (%d, %d)", gotMin, gotMax, tt.min, tt.max)
			}
			if gotMax > tt.state.Pips[tt.state.ActiveSeat()]+tt.state.Stacks[tt.state.ActiveSeat()] {
				t.Error("maximum raise exceeds the active stack")
			}
		})
	}
}

func TestRaiseToBoundsNeverOverdraws(t *testing.T) {
	rs := testRound(t)
	_, maxRaise := rs.RaiseBounds()
	s, err := rs.Proceed(Move{Action: Raise, Amount: maxRaise})
	next := mustRound(t, s, err)
	if next.Stacks[0] < 0 {
		t.Errorf("stack went negative: %d", next.Stacks[0])
	}
}

func TestBountyHits(t *testing.T) {
	tests := []struct {
		name     string
		bounties [2]string
		hands    [2][]string
		deck     []string
		want     [2]bool
	}{
		{
			name:     "unassigned never hits",
			bounties: [2]string{NoBounty, NoBounty},
			hands:    [2][]string{{"As", "Ah"}, {"Kd", "Kc"}},
			deck:     []string{"Qs", "Jd", "Th"},
			want:     [2]bool{false, false},
		},
		{
			name:     "hole card hit",
			bounties: [2]string{"A", "Q"},
			hands:    [2][]string{{"As", "2h"}, {"Kd", "Kc"}},
			want:     [2]bool{true, false},
		},
		{
			name:     "board hits both",
			bounties: [2]string{"T", "T"},
			hands:    [2][]string{{"2s", "3h"}, {"4d", "5c"}},
			deck:     []string{"Td", "8h", "2c"},
			want:     [2]bool{true, true},
		},
		{
			name:     "unknown opponent hand",
			bounties: [2]string{"9", "9"},
			hands:    [2][]string{{"9c", "4d"}, nil},
			want:     [2]bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &RoundState{Config: DefaultConfig(), Bounties: tt.bounties, Hands: tt.hands, Deck: tt.deck}
			if got := rs.BountyHits(); got != tt.want {
				t.Errorf("hits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFoldStillScoresBounty(t *testing.T) {
	rs := testRound(t)
	rs = rs.WithBounties([2]string{"Q", "K"})
	s, err := rs.Proceed(Move{Action: Fold})
	ts := mustTerminal(t, s, err)
	if ts.BountyHits == nil {
		t.Fatal("fold should evaluate bounty hits")
	}
	if got := *ts.BountyHits; got != ([2]bool{false, true}) {
		t.Errorf("hits = %v, want seat 1 holding its king", got)
	}
}

func TestWithHelpersDoNotMutate(t *testing.T) {
	rs := testRound(t)
	deck := []string{"2c", "3d", "4h"}

	withDeck := rs.WithDeck(deck)
	if len(rs.Deck) != 0 {
		t.Error("WithDeck mutated the receiver")
	}
	if withDeck.Previous != rs.Previous {
		t.Error("WithDeck must replace the node, not extend the chain")
	}

	withBounties := rs.WithBounties([2]string{"A", "K"})
	if rs.Bounties != ([2]string{NoBounty, NoBounty}) {
		t.Error("WithBounties mutated the receiver")
	}
	if withBounties.Bounties != ([2]string{"A", "K"}) {
		t.Errorf("bounties = %v", withBounties.Bounties)
	}

	hands := [2][]string{{"7s", "7d"}, {"8s", "8d"}}
	withHands := rs.WithHands(hands)
	if withHands.Hands[0][0] != "7s" || rs.Hands[0][0] != "As" {
		t.Error("WithHands should only affect the copy")
	}
}

func TestProceedRejectsUnknownAction(t *testing.T) {
	rs := testRound(t)
	if _, err := rs.Proceed(Move{Action: Action(42)}); err == nil {
		t.Fatal("expected an error for an unknown action")
	}
}
