package table

import "errors"

var (
	// ErrCovered rejects a drag, flip or pickup on a card with a higher card overlapping it
	ErrCovered = errors.New("card is covered by another card")
	// ErrBusy rejects a request on a card that is flipping or dragged, or while another drag is open
	ErrBusy = errors.New("card is busy")
	// ErrUnknownCard rejects a request for a card not in the expected container
	ErrUnknownCard = errors.New("unknown card")
	// ErrNoSession is returned by pointer events when no drag is open
	ErrNoSession = errors.New("no drag in progress")
)

// User-facing messages for covered cards
const (
	msgCoveredInteract = "Can't interact — card is covered by another card"
	msgCoveredFlip     = "Can't flip — card is covered by another card"
	msgCoveredPickUp   = "Can't pick up — card is covered by another card"
)
