package sim

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/game/counter"
	"github.com/palemoky/blackjack-sim/internal/game/round"
	"github.com/palemoky/blackjack-sim/internal/game/session"
	"github.com/palemoky/blackjack-sim/internal/game/strategy"
)

func testOptions(workers int) Options {
	return Options{
		Session: session.Config{
			Decks:       6,
			Penetration: 0.75,
			System:      counter.HiLo,
			Rules:       round.Rules{BlackjackPayout: 1.5},
			Bet:         session.BetPolicy{Amount: 10},
		},
		Shoes:            12,
		Workers:          workers,
		Seed:             2024,
		StartingBankroll: 1000,
	}
}

func TestNewRunner_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no shoes", func(o *Options) { o.Shoes = 0 }},
		{"no decks", func(o *Options) { o.Session.Decks = 0 }},
		{"too many decks", func(o *Options) { o.Session.Decks = session.MaxDecks + 1 }},
		{"huge decks", func(o *Options) { o.Session.Decks = 1 << 60 }},
		{"zero penetration", func(o *Options) { o.Session.Penetration = 0 }},
		{"full penetration", func(o *Options) { o.Session.Penetration = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := testOptions(1)
			tt.mutate(&opts)
			_, err := NewRunner(nil, opts)
			assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
		})
	}
}

func TestNewRunner_Defaults(t *testing.T) {
	t.Parallel()

	opts := testOptions(0)
	opts.Seed = 0
	r, err := NewRunner(nil, opts)
	require.NoError(t, err)
	assert.Positive(t, r.Options().Workers)
	assert.NotZero(t, r.Options().Seed)
}

func TestRun_ReportsEveryShoe(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(nil, testOptions(4))
	require.NoError(t, err)

	seen := make(map[int]bool)
	var runID string
	sum, err := r.Run(context.Background(), func(rep ShoeReport) {
		seen[rep.Index] = true
		runID = rep.RunID
		assert.Nil(t, rep.Result.Records, "records are dropped unless kept")
	})
	require.NoError(t, err)

	assert.Len(t, seen, 12)
	assert.Equal(t, runID, sum.RunID)
	_, err = uuid.Parse(sum.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 12, sum.Shoes)
	assert.Positive(t, sum.Rounds)
	assert.Equal(t, sum.Rounds, sum.RoundsPlayed)
	assert.GreaterOrEqual(t, sum.Wagered, 10*float64(sum.RoundsPlayed))
	assert.InDelta(t, sum.StartingBankroll+sum.Net, sum.EndingBankroll, 1e-9)
	assert.LessOrEqual(t, sum.MinBankroll, sum.StartingBankroll)
	assert.LessOrEqual(t, sum.MinBankroll, sum.EndingBankroll)
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	run := func(workers int) *Summary {
		r, err := NewRunner(nil, testOptions(workers))
		require.NoError(t, err)
		sum, err := r.Run(context.Background(), nil)
		require.NoError(t, err)
		return sum
	}
	serial, parallel := run(1), run(8)

	assert.Equal(t, serial.Rounds, parallel.Rounds)
	assert.InDelta(t, serial.Net, parallel.Net, 1e-9)
	assert.InDelta(t, serial.MinBankroll, parallel.MinBankroll, 1e-9)
	assert.NotEqual(t, serial.RunID, parallel.RunID)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(nil, testOptions(2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := r.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, sum)
}

func TestRun_PanicBecomesError(t *testing.T) {
	t.Parallel()

	// Bypass NewRunner so the shoe allocation itself panics.
	opts := testOptions(2)
	opts.Session.Decks = 1 << 60
	r := &Runner{engine: strategy.NewEngine(nil), opts: opts}

	var sum *Summary
	var err error
	require.NotPanics(t, func() {
		sum, err = r.Run(context.Background(), nil)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Nil(t, sum)
}

func TestPlayShoe_KeepRecords(t *testing.T) {
	t.Parallel()

	opts := testOptions(1)
	opts.KeepRecords = true
	r, err := NewRunner(nil, opts)
	require.NoError(t, err)

	a, err := r.PlayShoe(3)
	require.NoError(t, err)
	b, err := r.PlayShoe(3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a.Records, a.Rounds)
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	results := []session.ShoeResult{
		{Net: -100, Wagered: 500, Rounds: 20, RoundsPlayed: 20},
		{Net: -50, Wagered: 250, Rounds: 20, RoundsPlayed: 10},
		{Net: 400, Wagered: 250, Rounds: 20, RoundsPlayed: 10, Exhausted: true},
	}
	sum := Aggregate(results, 1000)

	assert.Equal(t, 3, sum.Shoes)
	assert.Equal(t, 60, sum.Rounds)
	assert.Equal(t, 40, sum.RoundsPlayed)
	assert.InDelta(t, 250.0, sum.Net, 1e-9)
	assert.InDelta(t, 1000.0, sum.Wagered, 1e-9)
	assert.InDelta(t, 1250.0, sum.EndingBankroll, 1e-9)
	assert.InDelta(t, 850.0, sum.MinBankroll, 1e-9)
	assert.InDelta(t, 6.25, sum.EVPerRound, 1e-9)
	assert.InDelta(t, 0.25, sum.EVPerWagered, 1e-9)
	assert.Equal(t, 1, sum.ExhaustedShoes)

	empty := Aggregate(nil, 500)
	assert.Zero(t, empty.EVPerRound)
	assert.InDelta(t, 500.0, empty.MinBankroll, 1e-9)
}
