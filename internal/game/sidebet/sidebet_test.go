package sidebet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/blackjack-sim/internal/game/card"
)

func c(token string) card.Card { return card.MustParse(token) }

func TestPerfectPairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"perfect", "8h", "8h", PerfectPair},
		{"red pair", "8h", "8d", ColoredPair},
		{"black pair", "Qs", "Qc", ColoredPair},
		{"mixed pair", "Qs", "Qd", MixedPair},
		{"ten and king", "Ts", "Ks", Lose},
		{"no pair", "2s", "9d", Lose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, PerfectPairs(c(tt.a), c(tt.b)))
		})
	}
}

func TestTwentyOnePlusThree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b, up string
		expected int
	}{
		{"suited trips", "7h", "7h", "7h", SuitedTrips},
		{"trips", "7h", "7s", "7d", Trips},
		{"straight flush", "9c", "Tc", "Jc", StraightFlush},
		{"ace low straight", "As", "2d", "3h", Straight},
		{"ace high straight", "Qs", "Kd", "Ah", Straight},
		{"no wrap around", "Ks", "Ad", "2h", Lose},
		{"flush", "2d", "9d", "Kd", Flush},
		{"nothing", "2d", "9s", "Kd", Lose},
		{"pair is nothing", "9d", "9s", "Kd", Lose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, TwentyOnePlusThree(c(tt.a), c(tt.b), c(tt.up)))
		})
	}
}

func TestStakes_Settle(t *testing.T) {
	t.Parallel()

	player := []card.Card{c("8h"), c("8d")}

	assert.InDelta(t, 0.0, Stakes{}.Settle(player, c("9h")), 1e-9)
	assert.InDelta(t, 60.0, Stakes{PerfectPairs: 5}.Settle(player, c("9h")), 1e-9)
	assert.InDelta(t, 60.0-5.0, Stakes{PerfectPairs: 5, TwentyOnePlusThree: 5}.Settle(player, c("9h")), 1e-9)
	assert.InDelta(t, 0.0, Stakes{PerfectPairs: 5}.Settle(player[:1], c("9h")), 1e-9)
}
