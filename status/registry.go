// Package status holds the lock-free counters the table core publishes and the status line reads
package status

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Registry is the central metrics facade
// Components cache pointers at construction; per-frame code writes directly to atomics
type Registry struct {
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// Summary renders the named metrics as "label=value" pairs, in argument order
// Keys are trimmed to the segment after the last '.' for display
// A key registered as a float or string renders from that map; anything else is an integer
func (r *Registry) Summary(keys ...string) string {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		label := k
		if idx := strings.LastIndexByte(k, '.'); idx >= 0 {
			label = k[idx+1:]
		}
		switch {
		case r.Floats.Has(k):
			fmt.Fprintf(&b, "%s=%.1f", label, r.Floats.Get(k).Get())
		case r.Strings.Has(k):
			fmt.Fprintf(&b, "%s=%s", label, r.Strings.Get(k).Load())
		default:
			fmt.Fprintf(&b, "%s=%d", label, r.Ints.Get(k).Load())
		}
	}
	return b.String()
}
