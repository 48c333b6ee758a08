package card

import (
	"github.com/palemoky/blackjack-sim/internal/apperrors"
)

// Shuffler permutes n elements through swap. (*rand.Rand).Shuffle satisfies it.
type Shuffler func(n int, swap func(i, j int))

// Shoe is the stack of shuffled decks the dealer draws from.
type Shoe struct {
	cards []Card
	size  int
}

// NewShoe builds a shoe of decks full decks and shuffles it once.
// A nil shuffle leaves the shoe in deck order.
func NewShoe(decks int, shuffle Shuffler) *Shoe {
	cards := make([]Card, 0, decks*52)
	for range decks {
		cards = append(cards, NewDeck()...)
	}
	if shuffle != nil {
		shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
	}
	return &Shoe{cards: cards, size: len(cards)}
}

// NewShoeFromCards stacks a shoe in the given order, first card dealt first.
func NewShoeFromCards(cards []Card) *Shoe {
	stacked := make([]Card, len(cards))
	copy(stacked, cards)
	return &Shoe{cards: stacked, size: len(stacked)}
}

// Draw removes and returns the front card.
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, apperrors.ErrShoeExhausted
	}
	c := s.cards[0]
	s.cards = s.cards[1:]
	return c, nil
}

// Remaining is the number of undealt cards.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Size is the number of cards the shoe started with.
func (s *Shoe) Size() int {
	return s.size
}

// Dealt is the number of cards drawn so far.
func (s *Shoe) Dealt() int {
	return s.size - len(s.cards)
}
