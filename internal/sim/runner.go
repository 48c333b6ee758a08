// Package sim runs many independent shoes in parallel and reduces their
// results into a run summary.
package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/game/session"
	"github.com/palemoky/blackjack-sim/internal/game/strategy"
	"github.com/palemoky/blackjack-sim/internal/logger"
)

// Options 模拟参数
type Options struct {
	Session          session.Config
	Shoes            int
	Workers          int    // 0 uses one worker per CPU
	Seed             uint64 // 0 picks a random seed, reported in the summary
	StartingBankroll float64
	KeepRecords      bool // keep per-round records on each shoe report
}

// ShoeReport is one finished shoe.
type ShoeReport struct {
	RunID  string             `json:"run_id"`
	Index  int                `json:"index"`
	Result session.ShoeResult `json:"result"`
}

// Summary 一次模拟的汇总
type Summary struct {
	RunID            string        `json:"run_id"`
	Seed             uint64        `json:"seed,string"`
	Shoes            int           `json:"shoes"`
	Rounds           int           `json:"rounds"`
	RoundsPlayed     int           `json:"rounds_played"`
	Wagered          float64       `json:"wagered"`
	Net              float64       `json:"net"`
	EVPerRound       float64       `json:"ev_per_round"`   // net per round with a bet
	EVPerWagered     float64       `json:"ev_per_wagered"` // net per unit wagered
	StartingBankroll float64       `json:"starting_bankroll"`
	EndingBankroll   float64       `json:"ending_bankroll"`
	MinBankroll      float64       `json:"min_bankroll"`
	ExhaustedShoes   int           `json:"exhausted_shoes,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	Elapsed          time.Duration `json:"elapsed"`
}

// Runner 并行模拟器
type Runner struct {
	engine *strategy.Engine
	opts   Options
}

// NewRunner validates opts and binds them to an engine.
func NewRunner(engine *strategy.Engine, opts Options) (*Runner, error) {
	if opts.Shoes <= 0 {
		return nil, fmt.Errorf("%w: shoes must be positive, got %d", apperrors.ErrInvalidConfig, opts.Shoes)
	}
	if opts.Session.Decks <= 0 || opts.Session.Decks > session.MaxDecks {
		return nil, fmt.Errorf("%w: decks must be in [1, %d], got %d",
			apperrors.ErrInvalidConfig, session.MaxDecks, opts.Session.Decks)
	}
	if p := opts.Session.Penetration; p <= 0 || p >= 1 {
		return nil, fmt.Errorf("%w: penetration must be in (0, 1), got %v", apperrors.ErrInvalidConfig, p)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
	}
	if engine == nil {
		engine = strategy.NewEngine(nil)
	}
	return &Runner{engine: engine, opts: opts}, nil
}

// Options returns the effective options, with defaults filled in.
func (r *Runner) Options() Options {
	return r.opts
}

// PlayShoe plays shoe index i of the run. The same seed and index always
// produce the same shoe.
func (r *Runner) PlayShoe(i int) (session.ShoeResult, error) {
	rng := rand.New(rand.NewPCG(r.opts.Seed, uint64(i)))
	res, err := session.New(r.engine, r.opts.Session, rng.Shuffle).Play()
	if err != nil {
		return res, fmt.Errorf("shoe %d: %w", i, err)
	}
	if !r.opts.KeepRecords {
		res.Records = nil
	}
	return res, nil
}

// Run plays every shoe and returns the summary. onShoe, if set, is called
// once per finished shoe, never concurrently, in completion order.
func (r *Runner) Run(ctx context.Context, onShoe func(ShoeReport)) (*Summary, error) {
	runID := uuid.NewString()
	started := time.Now()
	logger.LogInfo("run %s: %d shoes, %d workers, seed %d", runID, r.opts.Shoes, r.opts.Workers, r.opts.Seed)

	results := make([]session.ShoeResult, r.opts.Shoes)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	var mu sync.Mutex
	for i := range r.opts.Shoes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.LogPanic(rec)
					err = fmt.Errorf("shoe %d panicked: %v", i, rec)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.PlayShoe(i)
			if err != nil {
				return err
			}
			results[i] = res
			if onShoe != nil {
				mu.Lock()
				onShoe(ShoeReport{RunID: runID, Index: i, Result: res})
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.LogError("run %s failed: %v", runID, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		logger.LogError("run %s cancelled: %v", runID, err)
		return nil, err
	}

	sum := Aggregate(results, r.opts.StartingBankroll)
	sum.RunID = runID
	sum.Seed = r.opts.Seed
	sum.StartedAt = started
	sum.Elapsed = time.Since(started)
	logger.LogInfo("run %s done: %d rounds, net %.2f, ev/round %.4f", runID, sum.Rounds, sum.Net, sum.EVPerRound)
	return sum, nil
}

// Aggregate reduces shoe results in index order. The bankroll is tracked
// shoe by shoe, so MinBankroll is the low point at a shoe boundary.
func Aggregate(results []session.ShoeResult, startingBankroll float64) *Summary {
	sum := &Summary{
		Shoes:            len(results),
		StartingBankroll: startingBankroll,
		EndingBankroll:   startingBankroll,
		MinBankroll:      startingBankroll,
	}
	for _, res := range results {
		sum.Rounds += res.Rounds
		sum.RoundsPlayed += res.RoundsPlayed
		sum.Wagered += res.Wagered
		sum.Net += res.Net
		if res.Exhausted {
			sum.ExhaustedShoes++
		}
		sum.EndingBankroll += res.Net
		sum.MinBankroll = min(sum.MinBankroll, sum.EndingBankroll)
	}
	if sum.RoundsPlayed > 0 {
		sum.EVPerRound = sum.Net / float64(sum.RoundsPlayed)
	}
	if sum.Wagered > 0 {
		sum.EVPerWagered = sum.Net / sum.Wagered
	}
	return sum
}
