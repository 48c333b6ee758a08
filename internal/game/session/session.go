package session

import (
	"errors"
	"fmt"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/game/card"
	"github.com/palemoky/blackjack-sim/internal/game/counter"
	"github.com/palemoky/blackjack-sim/internal/game/round"
	"github.com/palemoky/blackjack-sim/internal/game/strategy"
)

// BetPolicy 下注策略
type BetPolicy struct {
	Amount            float64
	OnlyWhenFavorable bool
	Threshold         float64 // true count that must be exceeded when gated
}

// Size is the main bet for a round opened at true count tc.
func (p BetPolicy) Size(tc float64) float64 {
	if p.OnlyWhenFavorable && tc <= p.Threshold {
		return 0
	}
	return p.Amount
}

// MaxDecks is the largest shoe a session will build.
const MaxDecks = 16

// Config is fixed for the life of a shoe.
type Config struct {
	Decks       int
	Penetration float64 // fraction of the shoe dealt before it is retired
	System      counter.System
	Rules       round.Rules
	Bet         BetPolicy
}

// RoundRecord 单局记录
type RoundRecord struct {
	Bet       float64 `json:"bet"`
	Wagered   float64 `json:"wagered"` // bet plus double and split stakes
	Net       float64 `json:"net"`     // main hands, insurance and side bets
	TrueCount float64 `json:"true_count"`
	Remaining int     `json:"remaining"` // cards left when the round opened
	Blackjack bool    `json:"blackjack,omitempty"`
	Insured   bool    `json:"insured,omitempty"`
}

// ShoeResult is the aggregate of one shoe.
type ShoeResult struct {
	Net          float64       `json:"net"`
	Wagered      float64       `json:"wagered"` // main stakes including doubles and splits
	Rounds       int           `json:"rounds"`
	RoundsPlayed int           `json:"rounds_played"` // rounds with a non-zero bet
	CardsDealt   int           `json:"cards_dealt"`
	Exhausted    bool          `json:"exhausted,omitempty"`
	Records      []RoundRecord `json:"records,omitempty"`
}

// Session plays one shoe to its penetration depth.
type Session struct {
	cfg      Config
	shoe     *card.Shoe
	counter  *counter.Counter
	resolver *round.Resolver
}

// New builds a fresh shoe of cfg.Decks decks shuffled by shuffle.
func New(engine *strategy.Engine, cfg Config, shuffle card.Shuffler) *Session {
	return NewWithShoe(engine, cfg, card.NewShoe(cfg.Decks, shuffle))
}

// NewWithShoe plays an already stacked shoe.
func NewWithShoe(engine *strategy.Engine, cfg Config, shoe *card.Shoe) *Session {
	cnt := counter.New(cfg.System)
	return &Session{
		cfg:      cfg,
		shoe:     shoe,
		counter:  cnt,
		resolver: round.NewResolver(engine, cfg.Rules, shoe, cnt),
	}
}

// Shoe exposes the session's shoe.
func (s *Session) Shoe() *card.Shoe { return s.shoe }

// Counter exposes the session's counter.
func (s *Session) Counter() *counter.Counter { return s.counter }

// open reports whether the cut card has not been reached.
func (s *Session) open() bool {
	if s.shoe.Size() == 0 {
		return false
	}
	return float64(s.shoe.Remaining())/float64(s.shoe.Size()) > 1-s.cfg.Penetration
}

// Play deals rounds until the penetration depth is crossed. A round in
// progress at the boundary completes first. Rounds with a zero bet are
// still dealt so the player keeps counting.
func (s *Session) Play() (ShoeResult, error) {
	var res ShoeResult
	for s.open() {
		remaining := s.shoe.Remaining()
		tc, err := s.counter.TrueCount(remaining)
		if err != nil {
			return res, err
		}
		bet := s.cfg.Bet.Size(tc)

		out, err := s.playRound(bet)
		if errors.Is(err, apperrors.ErrShoeExhausted) {
			// The round cannot complete; it is discarded unsettled.
			res.Exhausted = true
			break
		}
		if err != nil {
			return res, fmt.Errorf("round %d: %w", res.Rounds+1, err)
		}

		net := out.Total()
		res.Rounds++
		res.Net += net
		if bet > 0 {
			res.RoundsPlayed++
			res.Wagered += out.Wagered
		}
		res.Records = append(res.Records, RoundRecord{
			Bet:       bet,
			Wagered:   out.Wagered,
			Net:       net,
			TrueCount: tc,
			Remaining: remaining,
			Blackjack: out.Blackjack,
			Insured:   out.Insured,
		})
	}
	res.CardsDealt = s.shoe.Dealt()
	return res, nil
}

func (s *Session) playRound(bet float64) (round.Outcome, error) {
	player, dealer, err := s.resolver.Deal()
	if err != nil {
		return round.Outcome{}, err
	}
	return s.resolver.Play(bet, player, dealer)
}
