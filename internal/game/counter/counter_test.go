package counter

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/game/card"
)

func TestSystemValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rank   card.Rank
		hiLo   float64
		halves float64
	}{
		{card.Rank2, 1, 0.5},
		{card.Rank3, 1, 1},
		{card.Rank4, 1, 1},
		{card.Rank5, 1, 1.5},
		{card.Rank6, 1, 1},
		{card.Rank7, 0, 0.5},
		{card.Rank8, 0, 0},
		{card.Rank9, 0, -0.5},
		{card.RankT, -1, -1},
		{card.RankJ, -1, -1},
		{card.RankQ, -1, -1},
		{card.RankK, -1, -1},
		{card.RankA, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.rank.String(), func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.hiLo, HiLo.Value(tt.rank), 1e-9)
			assert.InDelta(t, tt.halves, WongHalves.Value(tt.rank), 1e-9)
		})
	}
}

func TestSystemsAreBalanced(t *testing.T) {
	t.Parallel()

	for _, s := range []System{HiLo, WongHalves} {
		c := New(s)
		for _, cd := range card.NewDeck() {
			c.Update(cd)
		}
		assert.InDelta(t, 0, c.Running(), 1e-9, s.String())
		assert.Equal(t, 52, c.Seen())
	}
}

func TestCounter_UpdateIsSumOfValues(t *testing.T) {
	t.Parallel()

	for _, s := range []System{HiLo, WongHalves} {
		rng := rand.New(rand.NewPCG(3, uint64(s)))
		shoe := card.NewShoe(6, rng.Shuffle)
		c := New(s)
		sum := 0.0
		for range 200 {
			cd, err := shoe.Draw()
			require.NoError(t, err)
			sum += s.Value(cd.Rank)
			assert.InDelta(t, sum, c.Update(cd), 1e-9)
		}
		assert.InDelta(t, sum, c.Running(), 1e-9)
	}
}

func TestTrueCount(t *testing.T) {
	t.Parallel()

	tc, err := TrueCount(6, 156)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, tc, 1e-9)

	tc, err = TrueCount(-4, 26)
	require.NoError(t, err)
	assert.InDelta(t, -8.0, tc, 1e-9)

	_, err = TrueCount(3, 0)
	assert.ErrorIs(t, err, apperrors.ErrShoeExhausted)

	c := New(HiLo)
	c.Update(card.MustParse("5h"))
	tc, err = c.TrueCount(52)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tc, 1e-9)
}

func TestParseSystem(t *testing.T) {
	t.Parallel()

	s, err := ParseSystem("HI_LO")
	require.NoError(t, err)
	assert.Equal(t, HiLo, s)

	s, err = ParseSystem("wong_halves")
	require.NoError(t, err)
	assert.Equal(t, WongHalves, s)

	_, err = ParseSystem("KO")
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}
