package strategy

import "fmt"

// Action is what the player does with a hand.
type Action int

const (
	Hit Action = iota
	Stand
	Double
	Split
	Surrender
	Blackjack
)

var actionNames = map[Action]string{
	Hit:       "hit",
	Stand:     "stand",
	Double:    "double",
	Split:     "split",
	Surrender: "surrender",
	Blackjack: "blackjack",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// letterToAction maps the one-letter codes used in table files.
var letterToAction = map[rune]Action{
	'H': Hit,
	'S': Stand,
	'D': Double,
	'R': Surrender,
}

// Decision is the engine's answer for one hand state.
type Decision struct {
	Action    Action
	Insurance bool
}
