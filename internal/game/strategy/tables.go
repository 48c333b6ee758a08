package strategy

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/game/card"
	"github.com/palemoky/blackjack-sim/internal/game/rule"
)

//go:embed s17_surrender.yaml
var defaultTablesYAML []byte

// Columns is the number of distinct dealer up-cards: 2-9, ten-value, ace.
const Columns = 10

// Totals each table must cover.
const (
	MinHard = 4
	MinSoft = 12
)

// Row holds one action per dealer up-card column.
type Row [Columns]Action

// Tables is the basic strategy: pair splits plus soft and hard totals.
// A Tables value is read-only once loaded.
type Tables struct {
	Name  string
	pairs map[card.Rank][Columns]bool
	soft  map[int]Row
	hard  map[int]Row
}

// tablesFile is the YAML form of Tables.
type tablesFile struct {
	Name  string            `yaml:"name"`
	Pairs map[string]string `yaml:"pairs"`
	Soft  map[int]string    `yaml:"soft"`
	Hard  map[int]string    `yaml:"hard"`
}

// Column maps a dealer up-card to its table column.
func Column(up card.Rank) int {
	switch {
	case up == card.RankA:
		return Columns - 1
	case up.IsTen():
		return Columns - 2
	default:
		return int(up) - int(card.Rank2)
	}
}

// DefaultTables returns the embedded S17 late-surrender tables.
func DefaultTables() *Tables {
	t, err := LoadTables(defaultTablesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded strategy tables: %v", err))
	}
	return t
}

// LoadTablesFile reads tables from a YAML file.
func LoadTablesFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadTables(data)
}

// LoadTables parses and validates YAML tables.
func LoadTables(data []byte) (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: strategy tables: %v", apperrors.ErrInvalidConfig, err)
	}

	t := &Tables{
		Name:  f.Name,
		pairs: make(map[card.Rank][Columns]bool, len(f.Pairs)),
		soft:  make(map[int]Row, len(f.Soft)),
		hard:  make(map[int]Row, len(f.Hard)),
	}

	for key, line := range f.Pairs {
		rank, err := parsePairKey(key)
		if err != nil {
			return nil, err
		}
		row, err := parsePairRow(line)
		if err != nil {
			return nil, fmt.Errorf("pair %s: %w", key, err)
		}
		t.pairs[rank] = row
	}
	for total, line := range f.Soft {
		row, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("soft %d: %w", total, err)
		}
		t.soft[total] = row
	}
	for total, line := range f.Hard {
		row, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("hard %d: %w", total, err)
		}
		t.hard[total] = row
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that every reachable cell is present.
func (t *Tables) Validate() error {
	for r := card.Rank2; r <= card.RankA; r++ {
		if _, ok := t.pairs[r]; !ok {
			return fmt.Errorf("%w: no pair row for %s", apperrors.ErrInvalidConfig, r)
		}
	}
	for total := MinSoft; total <= rule.Blackjack; total++ {
		if _, ok := t.soft[total]; !ok {
			return fmt.Errorf("%w: no soft row for %d", apperrors.ErrInvalidConfig, total)
		}
	}
	for total := MinHard; total <= rule.Blackjack; total++ {
		if _, ok := t.hard[total]; !ok {
			return fmt.Errorf("%w: no hard row for %d", apperrors.ErrInvalidConfig, total)
		}
	}
	return nil
}

// SplitPair reports whether the pair table says to split pair against up.
func (t *Tables) SplitPair(pair, up card.Rank) (bool, error) {
	row, ok := t.pairs[pair]
	if !ok || !up.Valid() {
		return false, fmt.Errorf("%w: pair %s vs %s", apperrors.ErrStrategyTableMiss, pair, up)
	}
	return row[Column(up)], nil
}

// Lookup returns the basic-strategy action for a soft or hard total.
func (t *Tables) Lookup(class rule.Class, total int, up card.Rank) (Action, error) {
	table := t.hard
	if class == rule.Soft {
		table = t.soft
	}
	row, ok := table[total]
	if !ok || !up.Valid() {
		return 0, fmt.Errorf("%w: %s %d vs %s", apperrors.ErrStrategyTableMiss, class, total, up)
	}
	return row[Column(up)], nil
}

func parsePairKey(key string) (card.Rank, error) {
	runes := []rune(strings.TrimSpace(key))
	if len(runes) != 1 {
		return 0, fmt.Errorf("%w: pair key %q", apperrors.ErrInvalidConfig, key)
	}
	rank, err := card.RankFromChar(runes[0])
	if err != nil {
		return 0, fmt.Errorf("%w: pair key %q", apperrors.ErrInvalidConfig, key)
	}
	return rank, nil
}

func cells(line string) ([]rune, error) {
	out := make([]rune, 0, Columns)
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
	}
	if len(out) != Columns {
		return nil, fmt.Errorf("%w: want %d cells, got %d", apperrors.ErrInvalidConfig, Columns, len(out))
	}
	return out, nil
}

func parseRow(line string) (Row, error) {
	var row Row
	cs, err := cells(line)
	if err != nil {
		return row, err
	}
	for i, c := range cs {
		a, ok := letterToAction[c]
		if !ok {
			return row, fmt.Errorf("%w: unknown action %q", apperrors.ErrInvalidConfig, c)
		}
		row[i] = a
	}
	return row, nil
}

func parsePairRow(line string) ([Columns]bool, error) {
	var row [Columns]bool
	cs, err := cells(line)
	if err != nil {
		return row, err
	}
	for i, c := range cs {
		switch c {
		case 'Y':
			row[i] = true
		case 'N':
		default:
			return row, fmt.Errorf("%w: pair cell %q", apperrors.ErrInvalidConfig, c)
		}
	}
	return row, nil
}
