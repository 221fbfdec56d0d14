package arena

import (
	"fmt"
	rand "math/rand/v2"
	"strings"

	poker "github.com/paulhankin/poker"
)

const (
	deckRanks = "23456789TJQKA"
	deckSuits = "cdhs"

	goldenRatio64 = 0x9e3779b97f4a7c15
)

// newRNG seeds a PCG from a single int64, deriving the two 64-bit words
// rand/v2 requires.
func newRNG(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// newDeck returns the 52 cards in a fixed order, ready to shuffle.
func newDeck() []string {
	deck := make([]string, 0, 52)
	for _, suit := range deckSuits {
		for _, rank := range deckRanks {
			deck = append(deck, string(rank)+string(suit))
		}
	}
	return deck
}

func shuffle(rng *rand.Rand, deck []string) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// randomBounty draws a bounty rank for one player.
func randomBounty(rng *rand.Rand) string {
	return string(deckRanks[rng.IntN(len(deckRanks))])
}

// toPokerCard converts a two byte card like "As" into the evaluator's
// representation. The library numbers aces 1, everything else by rank.
func toPokerCard(card string) (poker.Card, error) {
	var zero poker.Card
	if len(card) != 2 {
		return zero, fmt.Errorf("malformed card %q", card)
	}
	var suit poker.Suit
	switch card[1] {
	case 'c':
		suit = poker.Club
	case 'd':
		suit = poker.Diamond
	case 'h':
		suit = poker.Heart
	case 's':
		suit = poker.Spade
	default:
		return zero, fmt.Errorf("unknown suit in %q", card)
	}
	idx := strings.IndexByte(deckRanks, card[0])
	if idx < 0 {
		return zero, fmt.Errorf("unknown rank in %q", card)
	}
	rank := poker.Rank(idx + 2)
	if idx+2 == 14 {
		rank = poker.Rank(1)
	}
	return poker.MakeCard(suit, rank)
}

// evalSeven scores two hole cards against a full board. Larger is
// stronger; equal scores chop.
func evalSeven(hole, board []string) (int16, error) {
	if len(hole)+len(board) != 7 {
		return 0, fmt.Errorf("need 7 cards, have %d", len(hole)+len(board))
	}
	var cards [7]poker.Card
	for i, card := range append(append([]string{}, hole...), board...) {
		converted, err := toPokerCard(card)
		if err != nil {
			return 0, err
		}
		cards[i] = converted
	}
	return poker.Eval7(&cards), nil
}
