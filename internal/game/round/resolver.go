package round

import (
	"fmt"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/game/card"
	"github.com/palemoky/blackjack-sim/internal/game/counter"
	"github.com/palemoky/blackjack-sim/internal/game/rule"
	"github.com/palemoky/blackjack-sim/internal/game/sidebet"
	"github.com/palemoky/blackjack-sim/internal/game/strategy"
)

// Rules are the table rules a round is played under.
type Rules struct {
	BlackjackPayout float64 // 1.5 pays 3:2
	HitSplitAces    bool
	SideBets        sidebet.Stakes
}

// Outcome is the settlement of one round.
type Outcome struct {
	Bet             float64      `json:"bet"`
	Wagered         float64      `json:"wagered"` // main stakes after doubles and splits
	Net             float64      `json:"net"`     // main hands plus insurance
	SideBets        float64      `json:"side_bets"`
	Insured         bool         `json:"insured,omitempty"`
	Blackjack       bool         `json:"blackjack,omitempty"`
	DealerBlackjack bool         `json:"dealer_blackjack,omitempty"`
	DealerCards     []card.Card  `json:"dealer_cards"`
	DealerTotal     int          `json:"dealer_total"`
	Hands           []HandResult `json:"hands"`
}

// Total is the round's full profit or loss including side bets.
func (o Outcome) Total() float64 {
	return o.Net + o.SideBets
}

// Resolver plays rounds out of one shoe, counting every card the player sees.
type Resolver struct {
	engine  *strategy.Engine
	rules   Rules
	shoe    *card.Shoe
	counter *counter.Counter
}

// NewResolver binds an engine and rules to a shoe and its counter.
func NewResolver(engine *strategy.Engine, rules Rules, shoe *card.Shoe, cnt *counter.Counter) *Resolver {
	return &Resolver{engine: engine, rules: rules, shoe: shoe, counter: cnt}
}

// draw takes a face-up card from the shoe and counts it.
func (r *Resolver) draw() (card.Card, error) {
	c, err := r.shoe.Draw()
	if err != nil {
		return c, err
	}
	r.counter.Update(c)
	return c, nil
}

// Deal deals two cards to the player, then the dealer's up-card and hole
// card. The hole card stays uncounted until it is revealed.
func (r *Resolver) Deal() (player, dealer []card.Card, err error) {
	player = make([]card.Card, 0, 2)
	for range 2 {
		c, err := r.draw()
		if err != nil {
			return nil, nil, err
		}
		player = append(player, c)
	}
	up, err := r.draw()
	if err != nil {
		return nil, nil, err
	}
	hole, err := r.shoe.Draw()
	if err != nil {
		return nil, nil, err
	}
	return player, []card.Card{up, hole}, nil
}

// opening settles the round's first decision when it ends the round:
// naturals on either side and insurance.
func opening(d strategy.Decision, dealerNatural bool, bet, payout float64) (ended bool, net float64) {
	natural := d.Action == strategy.Blackjack
	switch {
	case d.Insurance && natural:
		return true, bet // even money
	case d.Insurance && dealerNatural:
		return true, 0 // insurance pays 2:1 on bet/2, main bet lost
	case d.Insurance:
		return false, -bet / 2
	case dealerNatural && natural:
		return true, 0
	case dealerNatural:
		return true, -bet
	case natural:
		return true, bet * payout
	}
	return false, 0
}

// Play resolves a dealt round and returns its settlement.
func (r *Resolver) Play(bet float64, player, dealer []card.Card) (Outcome, error) {
	if len(player) != 2 || len(dealer) != 2 {
		return Outcome{}, fmt.Errorf("%w: a round opens with two cards each, got %d and %d",
			apperrors.ErrInvalidRequest, len(player), len(dealer))
	}

	up, hole := dealer[0], dealer[1]
	out := Outcome{
		Bet:             bet,
		Wagered:         bet,
		DealerBlackjack: rule.IsNatural(up, hole),
	}
	if bet > 0 {
		out.SideBets = r.rules.SideBets.Settle(player, up)
	}

	queue := []*Position{{Cards: append([]card.Card(nil), player...), Bet: bet}}
	var settled []*Position
	splits := 0
	acesSplit := false
	first := true

	for len(queue) > 0 {
		if acesSplit && !r.rules.HitSplitAces {
			// Split aces take one card each and nothing more.
			for _, p := range queue {
				p.Status = Stood
			}
			settled = append(settled, queue...)
			break
		}

		pos := queue[0]
		queue = queue[1:]

		// One true count snapshot per hand.
		tc, err := r.counter.TrueCount(r.shoe.Remaining())
		if err != nil {
			return out, err
		}

		for sub := 0; pos.Status == Open; sub++ {
			d, err := r.engine.Decide(up.Rank, pos.Cards, tc, splits, sub)
			if err != nil {
				return out, err
			}

			if first {
				first = false
				ended, net := opening(d, out.DealerBlackjack, bet, r.rules.BlackjackPayout)
				out.Insured = d.Insurance
				if ended {
					r.counter.Update(hole)
					out.Blackjack = d.Action == strategy.Blackjack
					out.Net = net
					out.DealerCards = []card.Card{up, hole}
					out.DealerTotal = rule.Evaluate(out.DealerCards).Total
					pos.Status = Stood
					out.Hands = []HandResult{pos.result(net)}
					return out, nil
				}
				out.Net += net
			}

			switch d.Action {
			case strategy.Blackjack, strategy.Stand:
				// A two-card 21 after a split is an ordinary 21.
				pos.Status = Stood

			case strategy.Split:
				splits++
				out.Wagered += bet
				if pos.Cards[0].Rank == card.RankA {
					acesSplit = true
				}
				for _, c := range pos.Cards[:2] {
					next, err := r.draw()
					if err != nil {
						return out, err
					}
					queue = append(queue, &Position{Cards: []card.Card{c, next}, Bet: bet, FromSplit: true})
				}
				pos.Status = Split

			case strategy.Double:
				if sub > 0 {
					if err := r.hit(pos); err != nil {
						return out, err
					}
					break
				}
				if err := r.hit(pos); err != nil {
					return out, err
				}
				pos.Bet += bet
				out.Wagered += bet
				pos.Doubled = true
				if pos.Status == Open {
					pos.Status = Stood
				}

			case strategy.Surrender:
				if sub > 0 {
					if err := r.hit(pos); err != nil {
						return out, err
					}
					break
				}
				pos.Bet -= bet / 2
				pos.Status = Surrendered

			case strategy.Hit:
				if err := r.hit(pos); err != nil {
					return out, err
				}
			}
		}

		if pos.Status != Split {
			settled = append(settled, pos)
		}
	}

	dealerCards, err := r.PlayDealer(dealer)
	if err != nil {
		return out, err
	}
	out.DealerCards = dealerCards
	out.DealerTotal = rule.Evaluate(dealerCards).Total

	for _, p := range settled {
		net := Settle(p, out.DealerTotal)
		out.Net += net
		out.Hands = append(out.Hands, p.result(net))
	}
	return out, nil
}

// hit draws one card onto pos and marks it busted past 21.
func (r *Resolver) hit(pos *Position) error {
	c, err := r.draw()
	if err != nil {
		return err
	}
	pos.Cards = append(pos.Cards, c)
	if pos.Value().Busted() {
		pos.Status = Busted
	}
	return nil
}

// PlayDealer reveals and counts the hole card, then draws while the dealer
// total is under 17.
func (r *Resolver) PlayDealer(dealer []card.Card) ([]card.Card, error) {
	hand := append([]card.Card(nil), dealer...)
	if len(hand) > 1 {
		r.counter.Update(hand[1])
	}
	for rule.DealerHits(rule.Evaluate(hand).Total) {
		c, err := r.draw()
		if err != nil {
			return hand, err
		}
		hand = append(hand, c)
	}
	return hand, nil
}

// Settle is a position's net against the dealer's final total.
func Settle(p *Position, dealerTotal int) float64 {
	total := p.Value().Total
	switch {
	case p.Lost() || total > rule.Blackjack:
		return -p.Bet
	case dealerTotal > rule.Blackjack || total > dealerTotal:
		return p.Bet
	case total == dealerTotal:
		return 0
	default:
		return -p.Bet
	}
}

func (p *Position) result(net float64) HandResult {
	return HandResult{
		Cards:     p.Cards,
		Total:     p.Value().Total,
		Bet:       p.Bet,
		Status:    p.Status.String(),
		Doubled:   p.Doubled,
		FromSplit: p.FromSplit,
		Net:       net,
	}
}
