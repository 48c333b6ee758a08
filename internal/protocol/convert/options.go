// Package convert maps wire payloads onto simulator options.
package convert

import (
	"fmt"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/config"
	"github.com/palemoky/blackjack-sim/internal/protocol"
	"github.com/palemoky/blackjack-sim/internal/sim"
)

// ToOptions overlays a simulate request on the server configuration. The
// merged configuration is validated as a whole.
func ToOptions(base *config.Config, p *protocol.SimulatePayload) (sim.Options, error) {
	cfg := *base
	if p.Shoes > 0 {
		cfg.Simulation.Shoes = p.Shoes
	}
	if cfg.Simulation.Shoes > base.Server.MaxShoes {
		return sim.Options{}, fmt.Errorf("%w: at most %d shoes per request, got %d",
			apperrors.ErrInvalidConfig, base.Server.MaxShoes, cfg.Simulation.Shoes)
	}
	if p.Seed != 0 {
		cfg.Simulation.Seed = p.Seed
	}
	if p.Workers > 0 {
		cfg.Simulation.Workers = p.Workers
	}
	if p.StartingBankroll != 0 {
		cfg.Simulation.StartingBankroll = p.StartingBankroll
	}
	if p.Decks != 0 {
		if p.Decks < 0 || p.Decks > base.Server.MaxDecks {
			return sim.Options{}, fmt.Errorf("%w: decks must be in [1, %d], got %d",
				apperrors.ErrInvalidConfig, base.Server.MaxDecks, p.Decks)
		}
		cfg.Table.Decks = p.Decks
	}
	if p.Penetration != 0 {
		cfg.Table.Penetration = p.Penetration
	}
	if p.CountingSystem != "" {
		cfg.Table.CountingSystem = p.CountingSystem
	}
	if p.BlackjackPayout != 0 {
		cfg.Table.BlackjackPayout = p.BlackjackPayout
	}
	if p.HitSplitAces != nil {
		cfg.Table.HitSplitAces = *p.HitSplitAces
	}
	if p.BetAmount != 0 {
		cfg.Betting.Amount = p.BetAmount
	}
	if p.OnlyWhenFavorable != nil {
		cfg.Betting.OnlyWhenFavorable = *p.OnlyWhenFavorable
	}
	if p.Threshold != nil {
		cfg.Betting.FavorableThreshold = *p.Threshold
	}
	if p.PerfectPairs != nil {
		cfg.SideBets.PerfectPairs = *p.PerfectPairs
	}
	if p.TwentyOnePlus3 != nil {
		cfg.SideBets.TwentyOnePlusThree = *p.TwentyOnePlus3
	}

	if err := cfg.Validate(); err != nil {
		return sim.Options{}, err
	}
	opts, err := cfg.SimOptions()
	if err != nil {
		return sim.Options{}, err
	}
	opts.KeepRecords = p.KeepRecords
	return opts, nil
}
