package round

import (
	"github.com/palemoky/blackjack-sim/internal/game/card"
	"github.com/palemoky/blackjack-sim/internal/game/rule"
)

// Status is where a player position is in its lifecycle.
type Status int

const (
	Open        Status = iota // awaiting a decision
	Stood                     // stood, or took the one card after a double
	Busted                    // went over 21
	Surrendered               // gave up half the bet
	Split                     // replaced by two children
)

var statusNames = map[Status]string{
	Open:        "open",
	Stood:       "stood",
	Busted:      "busted",
	Surrendered: "surrendered",
	Split:       "split",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Position is one player hand with its bet.
type Position struct {
	Cards   []card.Card
	Bet     float64
	Status  Status
	Doubled bool
	// FromSplit marks hands created by splitting.
	FromSplit bool
}

// Value evaluates the position's cards.
func (p *Position) Value() rule.HandValue {
	return rule.Evaluate(p.Cards)
}

// Lost reports whether the position loses its bet regardless of the dealer.
func (p *Position) Lost() bool {
	return p.Status == Surrendered || p.Status == Busted
}

// HandResult is a settled position.
type HandResult struct {
	Cards     []card.Card `json:"cards"`
	Total     int         `json:"total"`
	Bet       float64     `json:"bet"`
	Status    string      `json:"status"`
	Doubled   bool        `json:"doubled,omitempty"`
	FromSplit bool        `json:"from_split,omitempty"`
	Net       float64     `json:"net"`
}
