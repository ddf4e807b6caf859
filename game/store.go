package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"github.com/lixenwraith/tabletop/vmath"
)

var (
	// ErrNotFound is returned when a card or deck is not in the expected container
	ErrNotFound = errors.New("not found")
	// ErrEmptyDeck is returned when drawing from a deck with no cards
	ErrEmptyDeck = errors.New("deck is empty")
	// ErrDuplicate is returned when a card id is already held by the destination
	ErrDuplicate = errors.New("card already present")
)

// EventKind identifies a table membership change
type EventKind uint8

const (
	EventPlaced EventKind = iota
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventPlaced:
		return "placed"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// TableEvent is delivered synchronously to subscribers after the table changed
type TableEvent struct {
	Kind EventKind
	Card TableCard
}

// Options shapes deck draws
type Options struct {
	// DrawOffset is the x distance from a deck to where drawn cards land
	DrawOffset float64
	// DrawHeight is the y a drawn card is dropped from
	DrawHeight float64
}

// Store is the single owner of card membership
// Not safe for concurrent use; all calls happen on the main loop goroutine
type Store struct {
	opts Options
	rng  *rand.Rand

	decks     map[string]*Deck
	deckOrder []string
	table     map[string]TableCard
	hand      []Card

	listeners []func(TableEvent)
}

// NewStore creates an empty store; seed drives deck shuffles
func NewStore(opts Options, seed uint64) *Store {
	return &Store{
		opts:  opts,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		decks: make(map[string]*Deck),
		table: make(map[string]TableCard),
	}
}

// Subscribe registers fn for table events and returns a function removing it
func (s *Store) Subscribe(fn func(TableEvent)) func() {
	s.listeners = append(s.listeners, fn)
	idx := len(s.listeners) - 1
	return func() {
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
	}
}

func (s *Store) emit(ev TableEvent) {
	for _, fn := range s.listeners {
		if fn != nil {
			fn(ev)
		}
	}
}

// --- Decks ---

// SpawnDeck creates a shuffled standard deck at pos and returns its id
func (s *Store) SpawnDeck(pos vmath.Vec3F) string {
	d := &Deck{
		ID:       uuid.NewString(),
		Cards:    NewStandardDeck(),
		Position: pos,
	}
	s.shuffle(d.Cards)
	s.decks[d.ID] = d
	s.deckOrder = append(s.deckOrder, d.ID)
	return d.ID
}

// ShuffleDeck permutes a deck in place
func (s *Store) ShuffleDeck(deckID string) error {
	d, ok := s.decks[deckID]
	if !ok {
		return fmt.Errorf("deck %s: %w", deckID, ErrNotFound)
	}
	s.shuffle(d.Cards)
	return nil
}

// Fisher-Yates
func (s *Store) shuffle(cards []Card) {
	s.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// DrawCard removes and returns the top card of a deck
func (s *Store) DrawCard(deckID string) (Card, error) {
	d, ok := s.decks[deckID]
	if !ok {
		return Card{}, fmt.Errorf("deck %s: %w", deckID, ErrNotFound)
	}
	n := len(d.Cards)
	if n == 0 {
		return Card{}, fmt.Errorf("deck %s: %w", deckID, ErrEmptyDeck)
	}
	c := d.Cards[n-1]
	d.Cards = d.Cards[:n-1]
	return c, nil
}

// AddCardToDeck puts a card face down on top of a deck
func (s *Store) AddCardToDeck(deckID string, c Card) error {
	d, ok := s.decks[deckID]
	if !ok {
		return fmt.Errorf("deck %s: %w", deckID, ErrNotFound)
	}
	c.FaceUp = false
	d.Cards = append(d.Cards, c)
	return nil
}

// Decks returns copies of all decks in creation order
func (s *Store) Decks() []Deck {
	out := make([]Deck, 0, len(s.deckOrder))
	for _, id := range s.deckOrder {
		d := s.decks[id]
		out = append(out, Deck{ID: d.ID, Cards: slices.Clone(d.Cards), Position: d.Position})
	}
	return out
}

// --- Table ---

// PlaceOnTable puts a card that is in no other container onto the table
func (s *Store) PlaceOnTable(c Card, pos vmath.Vec3F, yaw float64) error {
	if _, ok := s.table[c.ID]; ok {
		return fmt.Errorf("table card %s: %w", c.ID, ErrDuplicate)
	}
	tc := TableCard{Card: c, Position: pos, Yaw: yaw}
	s.table[c.ID] = tc
	s.emit(TableEvent{Kind: EventPlaced, Card: tc})
	return nil
}

// RemoveFromTable takes a card off the table and returns it
func (s *Store) RemoveFromTable(id string) (Card, error) {
	tc, ok := s.table[id]
	if !ok {
		return Card{}, fmt.Errorf("table card %s: %w", id, ErrNotFound)
	}
	delete(s.table, id)
	s.emit(TableEvent{Kind: EventRemoved, Card: tc})
	return tc.Card, nil
}

// MoveCardOnTable records a new resting position for a table card
func (s *Store) MoveCardOnTable(id string, pos vmath.Vec3F) error {
	tc, ok := s.table[id]
	if !ok {
		return fmt.Errorf("table card %s: %w", id, ErrNotFound)
	}
	tc.Position = pos
	s.table[id] = tc
	return nil
}

// FlipFaceFlag toggles the face-up flag of a table card
func (s *Store) FlipFaceFlag(id string) error {
	tc, ok := s.table[id]
	if !ok {
		return fmt.Errorf("table card %s: %w", id, ErrNotFound)
	}
	tc.FaceUp = !tc.FaceUp
	s.table[id] = tc
	return nil
}

// TableCard returns a snapshot of a table card
func (s *Store) TableCard(id string) (TableCard, bool) {
	tc, ok := s.table[id]
	return tc, ok
}

// --- Hand ---

// AddToHand appends a card to the hand face up
func (s *Store) AddToHand(c Card) error {
	if s.handIndex(c.ID) >= 0 {
		return fmt.Errorf("hand card %s: %w", c.ID, ErrDuplicate)
	}
	c.FaceUp = true
	s.hand = append(s.hand, c)
	return nil
}

// RemoveFromHand takes a card out of the hand and returns it
func (s *Store) RemoveFromHand(id string) (Card, error) {
	i := s.handIndex(id)
	if i < 0 {
		return Card{}, fmt.Errorf("hand card %s: %w", id, ErrNotFound)
	}
	c := s.hand[i]
	s.hand = slices.Delete(s.hand, i, i+1)
	return c, nil
}

// ReorderHand moves the card at from to index to, shifting the cards between
func (s *Store) ReorderHand(from, to int) error {
	n := len(s.hand)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("reorder %d->%d of %d: %w", from, to, n, ErrNotFound)
	}
	if from == to {
		return nil
	}
	c := s.hand[from]
	s.hand = slices.Delete(s.hand, from, from+1)
	s.hand = slices.Insert(s.hand, to, c)
	return nil
}

// HandCard returns a hand card and its index
func (s *Store) HandCard(id string) (Card, int, bool) {
	i := s.handIndex(id)
	if i < 0 {
		return Card{}, -1, false
	}
	return s.hand[i], i, true
}

// Hand returns a copy of the hand, left to right
func (s *Store) Hand() []Card {
	return slices.Clone(s.hand)
}

func (s *Store) handIndex(id string) int {
	return slices.IndexFunc(s.hand, func(c Card) bool { return c.ID == id })
}

// --- Compound moves ---

// DrawToHand moves the top card of a deck into the hand
func (s *Store) DrawToHand(deckID string) (Card, error) {
	c, err := s.DrawCard(deckID)
	if err != nil {
		return Card{}, err
	}
	if err := s.AddToHand(c); err != nil {
		return Card{}, err
	}
	c.FaceUp = true
	return c, nil
}

// DrawToTable drops the top card of a deck beside it, face down
func (s *Store) DrawToTable(deckID string) (Card, error) {
	d, ok := s.decks[deckID]
	if !ok {
		return Card{}, fmt.Errorf("deck %s: %w", deckID, ErrNotFound)
	}
	c, err := s.DrawCard(deckID)
	if err != nil {
		return Card{}, err
	}
	pos := vmath.Vec3F{X: d.Position.X + s.opts.DrawOffset, Y: s.opts.DrawHeight, Z: d.Position.Z}
	if err := s.PlaceOnTable(c, pos, 0); err != nil {
		return Card{}, err
	}
	return c, nil
}

// MoveToHand transfers a table card into the hand
func (s *Store) MoveToHand(id string) error {
	c, err := s.RemoveFromTable(id)
	if err != nil {
		return err
	}
	return s.AddToHand(c)
}

// MoveToTable transfers a hand card onto the table at pos with the given orientation
func (s *Store) MoveToTable(id string, pos vmath.Vec3F, faceUp bool) error {
	c, err := s.RemoveFromHand(id)
	if err != nil {
		return err
	}
	c.FaceUp = faceUp
	return s.PlaceOnTable(c, pos, 0)
}
