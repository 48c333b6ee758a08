package card

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
)

// Suit 定义花色
type Suit int

// Rank 定义点数
type Rank int

// Color 定义牌的颜色
type Color int

const (
	Black Color = iota
	Red
)

// Card 定义一张牌
type Card struct {
	Rank Rank
	Suit Suit
}

const (
	Spade Suit = iota
	Heart
	Diamond
	Club
)

// suitSymbols 花色符号映射表
var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Diamond: "♦",
	Club:    "♣",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return "?"
}

// Color returns the colour used by the Perfect Pairs paytable.
func (s Suit) Color() Color {
	if s == Heart || s == Diamond {
		return Red
	}
	return Black
}

const (
	Rank2 Rank = iota + 2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	RankT
	RankJ
	RankQ
	RankK
	RankA
)

// rankNames 牌面值字符串映射表
var rankNames = map[Rank]string{
	Rank2: "2",
	Rank3: "3",
	Rank4: "4",
	Rank5: "5",
	Rank6: "6",
	Rank7: "7",
	Rank8: "8",
	Rank9: "9",
	RankT: "T",
	RankJ: "J",
	RankQ: "Q",
	RankK: "K",
	RankA: "A",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return "?"
}

// Valid reports whether r is one of the thirteen ranks.
func (r Rank) Valid() bool {
	return r >= Rank2 && r <= RankA
}

// Value is the blackjack value with the ace counted high.
func (r Rank) Value() int {
	switch {
	case r == RankA:
		return 11
	case r >= RankT:
		return 10
	default:
		return int(r)
	}
}

// IsTen reports whether the rank is worth ten (T, J, Q or K).
func (r Rank) IsTen() bool {
	return r >= RankT && r <= RankK
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// MarshalText encodes the card as its display token, e.g. "A♠".
func (c Card) MarshalText() ([]byte, error) {
	if !c.Rank.Valid() {
		return nil, fmt.Errorf("%w: rank %d", apperrors.ErrInvalidCard, int(c.Rank))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a token accepted by Parse.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// charToRank 用于快速查找字符对应的 Rank
var charToRank = map[rune]Rank{
	'2': Rank2,
	'3': Rank3,
	'4': Rank4,
	'5': Rank5,
	'6': Rank6,
	'7': Rank7,
	'8': Rank8,
	'9': Rank9,
	'T': RankT,
	'J': RankJ,
	'Q': RankQ,
	'K': RankK,
	'A': RankA,
}

var charToSuit = map[rune]Suit{
	's': Spade,
	'h': Heart,
	'd': Diamond,
	'c': Club,
	'♠': Spade,
	'♥': Heart,
	'♦': Diamond,
	'♣': Club,
}

// RankFromChar 解析点数字符
func RankFromChar(char rune) (Rank, error) {
	if rank, ok := charToRank[char]; ok {
		return rank, nil
	}
	return 0, fmt.Errorf("%w: unknown rank %q", apperrors.ErrInvalidCard, char)
}

// Parse reads a two-symbol token such as "As", "Td" or "K♥".
func Parse(token string) (Card, error) {
	if utf8.RuneCountInString(token) != 2 {
		return Card{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidCard, token)
	}
	r, size := utf8.DecodeRuneInString(token)
	rank, err := RankFromChar(r)
	if err != nil {
		return Card{}, err
	}
	s, _ := utf8.DecodeRuneInString(token[size:])
	suit, ok := charToSuit[s]
	if !ok {
		return Card{}, fmt.Errorf("%w: unknown suit %q", apperrors.ErrInvalidCard, s)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(token string) Card {
	c, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseList parses a space separated list of tokens.
func ParseList(tokens string) ([]Card, error) {
	fields := strings.Fields(tokens)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := Parse(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Deck 定义一副牌
type Deck []Card

// NewDeck returns the 52 cards of one deck, suit by suit.
func NewDeck() Deck {
	deck := make(Deck, 0, 52)
	for s := Spade; s <= Club; s++ {
		for r := Rank2; r <= RankA; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}
