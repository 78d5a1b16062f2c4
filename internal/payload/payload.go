// Package payload models transport jobs: immutable descriptors plus the
// mutable delivered flag, and a registry kept sorted by dispatch priority.
package payload

import (
	"fmt"
	"sort"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simerr"
)

// MaxCapacity is the maximum load an AGV (and therefore a single payload)
// may carry, in the same weight units as Payload.Weight.
const MaxCapacity = 10.0

// Payload is a transport job with a source, destination, weight, priority,
// and earliest-dispatch time. Everything but Delivered is immutable once
// constructed.
type Payload struct {
	ID           string `json:"id"`
	Source       int    `json:"source"`
	Destination  int    `json:"destination"`
	Weight       float64 `json:"weight"`
	Priority     int    `json:"priority"` // 1 (highest) .. 3 (lowest)
	DispatchTime int    `json:"dispatch_time"` // minutes since SIM_START

	Delivered bool `json:"delivered"`
}

// New constructs a Payload, validating the invariants spec.md §3 requires of
// every payload record. A violation is ErrInputInvalid — the input
// collaborator's job is to reject these before the scheduler ever sees them.
func New(id string, source, destination int, weight float64, priority, dispatchTime int) (*Payload, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: payload id must not be empty", simerr.ErrInputInvalid)
	}
	if source == destination {
		return nil, fmt.Errorf("%w: payload %s has source == destination (%d)", simerr.ErrInputInvalid, id, source)
	}
	if weight <= 0 || weight > MaxCapacity {
		return nil, fmt.Errorf("%w: payload %s weight %v out of range (0, %v]", simerr.ErrInputInvalid, id, weight, MaxCapacity)
	}
	if priority < 1 || priority > 3 {
		return nil, fmt.Errorf("%w: payload %s priority %d out of range [1,3]", simerr.ErrInputInvalid, id, priority)
	}
	if dispatchTime < 0 {
		return nil, fmt.Errorf("%w: payload %s has negative dispatch time %d", simerr.ErrInputInvalid, id, dispatchTime)
	}
	return &Payload{
		ID:           id,
		Source:       source,
		Destination:  destination,
		Weight:       weight,
		Priority:     priority,
		DispatchTime: dispatchTime,
	}, nil
}

// Registry holds the set of payloads for a run, kept retrievable in
// (priority ascending, dispatch-time ascending) order.
type Registry struct {
	byID  map[string]*Payload
	order []*Payload
}

// NewRegistry builds a Registry from payloads, rejecting duplicate ids.
func NewRegistry(payloads []*Payload) (*Registry, error) {
	r := &Registry{
		byID:  make(map[string]*Payload, len(payloads)),
		order: make([]*Payload, 0, len(payloads)),
	}
	for _, p := range payloads {
		if _, exists := r.byID[p.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate payload id %q", simerr.ErrInputInvalid, p.ID)
		}
		r.byID[p.ID] = p
		r.order = append(r.order, p)
	}
	sort.SliceStable(r.order, func(i, j int) bool {
		if r.order[i].Priority != r.order[j].Priority {
			return r.order[i].Priority < r.order[j].Priority
		}
		return r.order[i].DispatchTime < r.order[j].DispatchTime
	})
	return r, nil
}

// All returns every payload in (priority, dispatch-time) order. The slice
// shares backing storage with the registry; callers must not mutate it.
func (r *Registry) All() []*Payload {
	return r.order
}

// Get looks up a payload by id.
func (r *Registry) Get(id string) (*Payload, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Len returns the number of payloads registered.
func (r *Registry) Len() int {
	return len(r.order)
}

// AllDelivered reports whether every payload in the registry has been
// delivered — the scheduler's clean-termination condition.
func (r *Registry) AllDelivered() bool {
	for _, p := range r.order {
		if !p.Delivered {
			return false
		}
	}
	return true
}

// Pending returns payloads not yet delivered whose dispatch time has
// arrived, in registry order.
func (r *Registry) Pending(now int) []*Payload {
	var out []*Payload
	for _, p := range r.order {
		if !p.Delivered && p.DispatchTime <= now {
			out = append(out, p)
		}
	}
	return out
}

// NextDispatch returns the smallest dispatch time strictly greater than now
// among undelivered payloads, and whether one exists. Used by the driver to
// advance the clock when no other event is pending.
func (r *Registry) NextDispatch(now int) (int, bool) {
	found := false
	best := 0
	for _, p := range r.order {
		if p.Delivered || p.DispatchTime <= now {
			continue
		}
		if !found || p.DispatchTime < best {
			best = p.DispatchTime
			found = true
		}
	}
	return best, found
}
