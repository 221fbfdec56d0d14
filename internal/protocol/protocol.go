// Package protocol implements the newline-delimited text format spoken
// between a match engine and its bots. Each line is a space-separated list
// of clauses; a clause is a single tag byte followed by its payload. The
// format is shared with engine and bot implementations in other languages,
// so nothing here may drift.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/bountybot/game"
)

// Clause tags.
const (
	TagClock      = 'T' // game clock remaining, float seconds
	TagSeat       = 'P' // your seat this round, 0 = small blind
	TagHands      = 'H' // your hole cards, comma separated
	TagBounty     = 'G' // your bounty rank this round
	TagFold       = 'F' // relayed fold
	TagCall       = 'C' // relayed call
	TagCheck      = 'K' // relayed check
	TagRaise      = 'R' // relayed raise, payload is the pip target
	TagBoard      = 'B' // community cards, comma separated
	TagReveal     = 'O' // opponent hole cards, revealed at round end
	TagDelta      = 'D' // your signed bankroll change for the round
	TagBountyHits = 'Y' // two '0'/'1' flags, your seat first
	TagQuit       = 'Q' // match over
)

// Clause is one tagged token from an engine line.
type Clause struct {
	Tag     byte
	Payload string
}

// ParseLine splits an engine line into clauses. Runs of whitespace are
// tolerated; empty tokens are skipped.
func ParseLine(line string) []Clause {
	fields := strings.Fields(line)
	clauses := make([]Clause, 0, len(fields))
	for _, tok := range fields {
		clauses = append(clauses, Clause{Tag: tok[0], Payload: tok[1:]})
	}
	return clauses
}

// SplitCards parses a comma-separated card list. An empty payload is nil.
func SplitCards(payload string) []string {
	if payload == "" {
		return nil
	}
	return strings.Split(payload, ",")
}

// JoinCards is the inverse of SplitCards.
func JoinCards(cards []string) string {
	return strings.Join(cards, ",")
}

// EncodeMove renders a move as its wire token. Only Raise carries an
// amount, the total pip the raiser moves to.
func EncodeMove(m game.Move) string {
	switch m.Action {
	case game.Fold:
		return "F"
	case game.Call:
		return "C"
	case game.Check:
		return "K"
	case game.Raise:
		return "R" + strconv.Itoa(m.Amount)
	}
	return ""
}

// ParseMove decodes a wire token back into a move.
func ParseMove(tok string) (game.Move, error) {
	if tok == "" {
		return game.Move{}, fmt.Errorf("empty move token")
	}
	switch tok[0] {
	case TagFold:
		return game.Move{Action: game.Fold}, nil
	case TagCall:
		return game.Move{Action: game.Call}, nil
	case TagCheck:
		return game.Move{Action: game.Check}, nil
	case TagRaise:
		amount, err := strconv.Atoi(tok[1:])
		if err != nil {
			return game.Move{}, fmt.Errorf("bad raise amount in %q: %w", tok, err)
		}
		return game.Move{Action: game.Raise, Amount: amount}, nil
	}
	return game.Move{}, fmt.Errorf("unknown move token %q", tok)
}
