// Package sidebet pays the Perfect Pairs and 21+3 side wagers.
package sidebet

import (
	"github.com/palemoky/blackjack-sim/internal/game/card"
)

// Payout multipliers. A losing side bet returns Lose.
const (
	Lose = -1

	PerfectPair = 25
	ColoredPair = 12
	MixedPair   = 6

	SuitedTrips   = 100
	StraightFlush = 40
	Trips         = 25
	Straight      = 10
	Flush         = 5
)

// PerfectPairs pays on the player's first two cards.
func PerfectPairs(a, b card.Card) int {
	if a.Rank != b.Rank {
		return Lose
	}
	switch {
	case a.Suit == b.Suit:
		return PerfectPair
	case a.Suit.Color() == b.Suit.Color():
		return ColoredPair
	default:
		return MixedPair
	}
}

// straightOrder lists ranks low to high with the ace at both ends.
var straightOrder = []card.Rank{
	card.RankA, card.Rank2, card.Rank3, card.Rank4, card.Rank5, card.Rank6, card.Rank7,
	card.Rank8, card.Rank9, card.RankT, card.RankJ, card.RankQ, card.RankK, card.RankA,
}

func isStraight(a, b, c card.Card) bool {
	has := map[card.Rank]bool{a.Rank: true, b.Rank: true, c.Rank: true}
	for i := 0; i+2 < len(straightOrder); i++ {
		if has[straightOrder[i]] && has[straightOrder[i+1]] && has[straightOrder[i+2]] {
			return true
		}
	}
	return false
}

// TwentyOnePlusThree pays on the player's two cards plus the dealer's up-card
// read as a three-card poker hand.
func TwentyOnePlusThree(a, b, up card.Card) int {
	sameRank := a.Rank == b.Rank && b.Rank == up.Rank
	sameSuit := a.Suit == b.Suit && b.Suit == up.Suit
	if sameRank && sameSuit {
		return SuitedTrips
	}
	if sameRank {
		return Trips
	}
	straight := isStraight(a, b, up)
	switch {
	case straight && sameSuit:
		return StraightFlush
	case straight:
		return Straight
	case sameSuit:
		return Flush
	}
	return Lose
}

// Stakes are the flat side-bet amounts placed on a round; zero means off.
type Stakes struct {
	PerfectPairs       float64
	TwentyOnePlusThree float64
}

// Settle returns the side-bet net for a round's opening cards.
func (s Stakes) Settle(player []card.Card, up card.Card) float64 {
	if len(player) < 2 {
		return 0
	}
	net := 0.0
	if s.PerfectPairs > 0 {
		net += s.PerfectPairs * float64(PerfectPairs(player[0], player[1]))
	}
	if s.TwentyOnePlusThree > 0 {
		net += s.TwentyOnePlusThree * float64(TwentyOnePlusThree(player[0], player[1], up))
	}
	return net
}
