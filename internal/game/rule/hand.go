package rule

import (
	"github.com/palemoky/blackjack-sim/internal/game/card"
)

// Blackjack is the best total a hand can make.
const Blackjack = 21

// DealerStandsOn is the total at which the dealer stops drawing (S17).
const DealerStandsOn = 17

// Class 定义软硬牌
type Class int

const (
	Hard Class = iota
	Soft
)

func (c Class) String() string {
	if c == Soft {
		return "soft"
	}
	return "hard"
}

// HandValue is everything the strategy needs to know about a set of cards.
type HandValue struct {
	Total      int
	Class      Class
	Splittable bool
}

// Soft reports whether an ace is still counted as eleven.
func (v HandValue) Soft() bool {
	return v.Class == Soft
}

// Busted reports whether the total is over 21.
func (v HandValue) Busted() bool {
	return v.Total > Blackjack
}

// Evaluate totals cards. Each ace counts 11 and is dropped to 1, one at a
// time, while the total is over 21. The hand is soft when it holds an ace and
// the all-aces-low total leaves room for one ace at 11.
func Evaluate(cards []card.Card) HandValue {
	total, aces := 0, 0
	for _, c := range cards {
		total += c.Rank.Value()
		if c.Rank == card.RankA {
			aces++
		}
	}

	low := total
	for range aces {
		if total > Blackjack {
			total -= 10
		}
		low -= 10
	}

	class := Hard
	if aces > 0 && low+10 <= Blackjack {
		class = Soft
	}

	return HandValue{
		Total:      total,
		Class:      class,
		Splittable: len(cards) >= 2 && cards[0].Rank == cards[1].Rank,
	}
}

// IsNatural reports whether two cards make an ace plus a ten-value card.
func IsNatural(a, b card.Card) bool {
	return (a.Rank == card.RankA && b.Rank.IsTen()) || (b.Rank == card.RankA && a.Rank.IsTen())
}

// DealerHits is the dealer's fixed policy: draw below 17, stand on any 17.
func DealerHits(total int) bool {
	return total < DealerStandsOn
}
