package rule

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/blackjack-sim/internal/game/card"
)

func cards(t *testing.T, tokens string) []card.Card {
	t.Helper()
	cs, err := card.ParseList(tokens)
	require.NoError(t, err)
	return cs
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		hand       string
		total      int
		class      Class
		splittable bool
	}{
		{"natural", "As Kh", 21, Soft, false},
		{"soft 17", "Ad 6c", 17, Soft, false},
		{"pair of aces", "As Ah", 12, Soft, true},
		{"pair of eights", "8c 8d", 16, Hard, true},
		{"ten and king are not a pair", "Ts Kd", 20, Hard, false},
		{"soft hand hardens", "As 5d Kh", 16, Hard, false},
		{"two aces and nine", "As Ad 9c", 21, Soft, true},
		{"three card soft 21", "As 5d 5h", 21, Soft, false},
		{"ace reduced twice", "As Ad 9c Kh", 21, Hard, true},
		{"bust without aces", "Ts 6d 8h", 24, Hard, false},
		{"bust with ace", "As Td 6h 9c", 26, Hard, false},
		{"hard twelve", "As 5d 6h", 12, Hard, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := Evaluate(cards(t, tt.hand))
			assert.Equal(t, tt.total, v.Total)
			assert.Equal(t, tt.class, v.Class)
			assert.Equal(t, tt.splittable, v.Splittable)
		})
	}
}

func TestEvaluate_RandomHandsStayInRange(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(42, 42))
	deck := card.NewDeck()
	for range 5000 {
		n := 2 + rng.IntN(2)
		hand := make([]card.Card, n)
		aces := 0
		for i := range hand {
			hand[i] = deck[rng.IntN(len(deck))]
			if hand[i].Rank == card.RankA {
				aces++
			}
		}
		v := Evaluate(hand)
		require.GreaterOrEqual(t, v.Total, 2)
		require.LessOrEqual(t, v.Total, 31)

		// Each ace is reduced at most once, and only while the total is over 21.
		raw := 0
		for _, c := range hand {
			raw += c.Rank.Value()
		}
		reductions := (raw - v.Total) / 10
		require.Equal(t, 0, (raw-v.Total)%10)
		require.LessOrEqual(t, reductions, aces)
		if reductions < aces {
			require.LessOrEqual(t, v.Total, Blackjack)
		}
	}
}

func TestEvaluate_AppendingCards(t *testing.T) {
	t.Parallel()

	deck := card.NewDeck()
	for _, a := range deck[:13] {
		for _, b := range deck[13:26] {
			base := []card.Card{a, b}
			before := Evaluate(base)
			for _, next := range deck[26:39] {
				after := Evaluate(append(append([]card.Card{}, base...), next))
				if next.Rank != card.RankA {
					v := next.Rank.Value()
					assert.LessOrEqual(t, after.Total, before.Total+v, "%v + %v", base, next)
					assert.GreaterOrEqual(t, after.Total, before.Total+v-10, "%v + %v", base, next)
				} else if before.Class == Hard && (a.Rank == card.RankA || b.Rank == card.RankA) {
					assert.Equal(t, Hard, after.Class, "%v + %v", base, next)
				}
			}
		}
	}
}

func TestIsNatural(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNatural(card.MustParse("As"), card.MustParse("Qd")))
	assert.True(t, IsNatural(card.MustParse("Jc"), card.MustParse("Ah")))
	assert.False(t, IsNatural(card.MustParse("As"), card.MustParse("Ad")))
	assert.False(t, IsNatural(card.MustParse("9s"), card.MustParse("Ad")))
}

func TestDealerHits(t *testing.T) {
	t.Parallel()

	for total := 2; total < 17; total++ {
		assert.True(t, DealerHits(total), total)
	}
	for total := 17; total <= 26; total++ {
		assert.False(t, DealerHits(total), total)
	}
}
