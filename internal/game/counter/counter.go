package counter

import (
	"fmt"
	"strings"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/game/card"
)

// System is a card counting system.
type System int

const (
	HiLo       System = iota // Hi-Lo, level I
	WongHalves               // Wong Halves, level III
)

var systemNames = map[System]string{
	HiLo:       "HI_LO",
	WongHalves: "WONG_HALVES",
}

func (s System) String() string {
	if name, ok := systemNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseSystem accepts the names used in configuration files.
func ParseSystem(name string) (System, error) {
	for s, n := range systemNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown counting system %q", apperrors.ErrInvalidConfig, name)
}

var hiLoValues = map[card.Rank]float64{
	card.Rank2: 1, card.Rank3: 1, card.Rank4: 1, card.Rank5: 1, card.Rank6: 1,
	card.RankT: -1, card.RankJ: -1, card.RankQ: -1, card.RankK: -1, card.RankA: -1,
}

var wongHalvesValues = map[card.Rank]float64{
	card.Rank2: 0.5, card.Rank3: 1, card.Rank4: 1, card.Rank5: 1.5, card.Rank6: 1,
	card.Rank7: 0.5, card.Rank9: -0.5,
	card.RankT: -1, card.RankJ: -1, card.RankQ: -1, card.RankK: -1, card.RankA: -1,
}

// Value is the count contribution of one card. Ranks absent from the
// system's table count zero.
func (s System) Value(r card.Rank) float64 {
	if s == WongHalves {
		return wongHalvesValues[r]
	}
	return hiLoValues[r]
}

// Counter tracks the running count of every card the player has seen in one shoe.
type Counter struct {
	system  System
	running float64
	seen    int
}

// New creates a counter at zero. A new shoe gets a new counter.
func New(system System) *Counter {
	return &Counter{system: system}
}

// Update counts c and returns the new running count.
func (c *Counter) Update(cd card.Card) float64 {
	c.running += c.system.Value(cd.Rank)
	c.seen++
	return c.running
}

// Running returns the running count.
func (c *Counter) Running() float64 {
	return c.running
}

// Seen returns how many cards have been counted.
func (c *Counter) Seen() int {
	return c.seen
}

// System returns the counting system in use.
func (c *Counter) System() System {
	return c.system
}

// TrueCount normalises the running count by the decks left in the shoe.
func (c *Counter) TrueCount(remaining int) (float64, error) {
	return TrueCount(c.running, remaining)
}

// TrueCount is running / (remaining / 52).
func TrueCount(running float64, remaining int) (float64, error) {
	if remaining <= 0 {
		return 0, apperrors.ErrShoeExhausted
	}
	return running / (float64(remaining) / 52.0), nil
}
