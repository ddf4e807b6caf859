// Package game owns card identity and container membership: decks, the hand and the table
// Every card lives in exactly one container; moves remove from the source before adding to the destination
package game

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/lixenwraith/tabletop/vmath"
)

// Suit of a playing card
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits in deck construction order
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

func (s Suit) String() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// Symbol returns the suit glyph
func (s Suit) Symbol() rune {
	switch s {
	case Hearts:
		return '♥'
	case Diamonds:
		return '♦'
	case Clubs:
		return '♣'
	case Spades:
		return '♠'
	default:
		return '?'
	}
}

// Red reports whether the suit is printed in red
func (s Suit) Red() bool {
	return s == Hearts || s == Diamonds
}

// Rank is 1 (ace) through 13 (king)
type Rank uint8

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if r >= 2 && r <= 10 {
		return strconv.Itoa(int(r))
	}
	return "?"
}

// Card is a single playing card
type Card struct {
	ID     string
	Suit   Suit
	Rank   Rank
	FaceUp bool
}

// Label returns the short rank+suit text, e.g. "10♥"
func (c Card) Label() string {
	return c.Rank.String() + string(c.Suit.Symbol())
}

// TableCard is a card on the table with the pose it was placed with
type TableCard struct {
	Card
	Position vmath.Vec3F
	Yaw      float64
}

// Deck is an ordered pile; the top card is the last element
type Deck struct {
	ID       string
	Cards    []Card
	Position vmath.Vec3F
}

// NewStandardDeck returns the 52 standard cards face down in suit/rank order
func NewStandardDeck() []Card {
	cards := make([]Card, 0, len(Suits)*int(King))
	for _, s := range Suits {
		for r := Ace; r <= King; r++ {
			cards = append(cards, Card{
				ID:   uuid.NewString(),
				Suit: s,
				Rank: r,
			})
		}
	}
	return cards
}
