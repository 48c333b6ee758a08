package strategy

import (
	"github.com/palemoky/blackjack-sim/internal/game/card"
	"github.com/palemoky/blackjack-sim/internal/game/rule"
)

// MaxSplits is the number of splits allowed in one round.
const MaxSplits = 2

// InsuranceTrueCount is the true count at which insurance is taken.
const InsuranceTrueCount = 3.0

// deviation is a count-indexed play that overrides the tables.
// up == 0 matches any dealer card.
type deviation struct {
	total  int
	soft   bool
	up     card.Rank
	gate   func(tc float64) bool
	action Action
}

func atMost(n float64) func(float64) bool { return func(tc float64) bool { return tc <= n } }
func above(n float64) func(float64) bool { return func(tc float64) bool { return tc > n } }
func atLeast(n float64) func(float64) bool { return func(tc float64) bool { return tc >= n } }

// deviations are checked in order and the first match wins.
var deviations = []deviation{
	{total: 12, up: card.Rank4, gate: atMost(0), action: Hit},
	{total: 19, soft: true, gate: atMost(0), action: Stand},
	{total: 13, up: card.Rank2, gate: atMost(-1), action: Hit},

	{total: 16, up: card.RankT, gate: above(0), action: Stand},
	{total: 19, soft: true, up: card.Rank5, gate: atLeast(1), action: Double},
	{total: 17, soft: true, up: card.Rank2, gate: atLeast(1), action: Double},
	{total: 9, up: card.Rank2, gate: atLeast(1), action: Double},
	{total: 12, up: card.Rank3, gate: atLeast(2), action: Stand},
	{total: 8, up: card.Rank6, gate: atLeast(2), action: Double},
	{total: 19, soft: true, up: card.Rank4, gate: atLeast(3), action: Double},
	{total: 16, up: card.RankA, gate: atLeast(3), action: Stand},
	{total: 12, up: card.Rank2, gate: atLeast(3), action: Stand},
	{total: 10, up: card.RankA, gate: atLeast(3), action: Double},
	{total: 9, up: card.Rank7, gate: atLeast(3), action: Double},
	{total: 16, up: card.Rank9, gate: atLeast(4), action: Stand},
	{total: 15, up: card.RankT, gate: atLeast(4), action: Stand},
	{total: 10, up: card.RankT, gate: atLeast(4), action: Double},
	{total: 15, up: card.RankA, gate: atLeast(5), action: Stand},
}

func (d deviation) matches(v rule.HandValue, up card.Rank, tc float64) bool {
	if v.Total != d.total || (d.soft && !v.Soft()) {
		return false
	}
	if d.up != 0 && Column(d.up) != Column(up) {
		return false
	}
	return d.gate(tc)
}

// tenPairSplitCount is the true count at which tens are split against 4, 5, 6.
var tenPairSplitCount = map[card.Rank]float64{
	card.Rank4: 6.0,
	card.Rank5: 5.0,
	card.Rank6: 4.0,
}

// Engine decides how to play a hand. It holds no mutable state.
type Engine struct {
	tables *Tables
}

// NewEngine creates an engine over tables; nil means DefaultTables.
func NewEngine(tables *Tables) *Engine {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Engine{tables: tables}
}

// Tables returns the tables the engine reads.
func (e *Engine) Tables() *Tables {
	return e.tables
}

// Decide picks the action for hand against the dealer's up-card.
// subRound is 0 on a hand's first decision; splitDepth counts splits
// already made this round.
func (e *Engine) Decide(up card.Rank, hand []card.Card, trueCount float64, splitDepth, subRound int) (Decision, error) {
	v := rule.Evaluate(hand)

	var d Decision
	if subRound == 0 {
		d.Insurance = up == card.RankA && trueCount >= InsuranceTrueCount
		if v.Total == rule.Blackjack {
			d.Action = Blackjack
			return d, nil
		}
	}

	if v.Splittable && len(hand) == 2 && splitDepth < MaxSplits {
		pair := hand[0].Rank
		split, err := e.tables.SplitPair(pair, up)
		if err != nil {
			return d, err
		}
		if !split && pair.IsTen() {
			if need, ok := tenPairSplitCount[up]; ok && trueCount >= need {
				split = true
			}
		}
		if split {
			d.Action = Split
			return d, nil
		}
	}

	for _, dev := range deviations {
		if dev.matches(v, up, trueCount) {
			d.Action = dev.action
			return d, nil
		}
	}

	a, err := e.tables.Lookup(v.Class, v.Total, up)
	if err != nil {
		return d, err
	}
	d.Action = a
	return d, nil
}
