// Package toast keeps short-lived user feedback messages
package toast

import (
	"slices"
	"time"

	"github.com/lixenwraith/tabletop/clock"
)

// Severity selects toast styling
type Severity uint8

const (
	Info    Severity = iota // Neutral
	Warning                 // Rejected action
)

// Icons per severity
var Icons = map[Severity]rune{
	Info:    'ℹ',
	Warning: '⚠',
}

// Toast is one visible message
type Toast struct {
	ID       uint64
	Message  string
	Severity Severity
	Expires  time.Time
}

// MaxVisible caps the queue; the oldest toast is dropped first
const MaxVisible = 4

// Queue holds active toasts ordered oldest first
// Not safe for concurrent use
type Queue struct {
	ttl    time.Duration
	clock  clock.Provider
	nextID uint64
	items  []Toast
}

// NewQueue creates a queue whose toasts live for ttl
func NewQueue(ttl time.Duration, c clock.Provider) *Queue {
	return &Queue{ttl: ttl, clock: c}
}

// Notify queues a warning toast
func (q *Queue) Notify(msg string) {
	q.Push(msg, Warning)
}

// Push queues a toast with the given severity
func (q *Queue) Push(msg string, sev Severity) uint64 {
	q.nextID++
	q.items = append(q.items, Toast{
		ID:       q.nextID,
		Message:  msg,
		Severity: sev,
		Expires:  q.clock.Now().Add(q.ttl),
	})
	if len(q.items) > MaxVisible {
		q.items = slices.Delete(q.items, 0, len(q.items)-MaxVisible)
	}
	return q.nextID
}

// Tick drops expired toasts
func (q *Queue) Tick() {
	now := q.clock.Now()
	q.items = slices.DeleteFunc(q.items, func(t Toast) bool { return !now.Before(t.Expires) })
}

// Active returns the live toasts, oldest first
func (q *Queue) Active() []Toast {
	return slices.Clone(q.items)
}

// Len returns the number of live toasts
func (q *Queue) Len() int {
	return len(q.items)
}
