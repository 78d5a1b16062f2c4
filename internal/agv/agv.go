// Package agv implements the per-vehicle state machine: location, battery,
// load, held payloads, and the Idle/Moving/Charging transitions the
// scheduler drives each tick.
package agv

import (
	"fmt"
	"math"
	"sort"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/payload"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simerr"
)

// Constants from the data model (spec.md §3). Time is minute-resolution,
// measured since SIM_START (08:00); callers format HH:MM only at the log
// boundary.
const (
	MaxCapacity           = payload.MaxCapacity
	EmptyTravelMinPerUnit = 5.0
	FullTravelMinPerUnit  = 10.0
	ChargeDurationMin     = 15
	DischargeReferenceMin = 45.0
	LowBatteryThreshold   = 30.0
	MinBatteryForPickup   = 20.0
	CriticalBattery       = 10.0
	FullBattery           = 100.0

	// maxBatteryUsedPerSegment clamps a single segment's battery
	// consumption, per spec.md §4.2.
	maxBatteryUsedPerSegment = 30.0
)

// Mode is the AGV's current activity.
type Mode int

const (
	Idle Mode = iota
	Moving
	Charging
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Charging:
		return "charging"
	default:
		return "unknown"
	}
}

// AGV is a single automated guided vehicle. All mutation happens through
// the transition methods below so the invariants of spec.md §3 hold at
// every tick boundary.
type AGV struct {
	ID string

	Station     int
	Battery     float64
	Load        float64
	Held        map[string]*payload.Payload
	BusyUntil   int
	Mode        Mode
	Destination int
	ChargeCount int

	// PickupTime records, per held payload id, the simulated minute at
	// which it was attached — needed for the pickup-to-delivery latency
	// metric (spec.md §4.4's resolved "now - pickup_time" convention).
	PickupTime map[string]int
}

// New creates an AGV at its starting station, Idle, with full battery and
// no held payloads — the spec's initial state.
func New(id string, startStation int) *AGV {
	return &AGV{
		ID:          id,
		Station:     startStation,
		Destination: startStation,
		Battery:     FullBattery,
		Mode:        Idle,
		Held:        make(map[string]*payload.Payload),
		PickupTime:  make(map[string]int),
	}
}

// TravelTime returns the minutes a segment of real distance d takes at the
// given load, per spec.md §4.2: per-unit minutes interpolate linearly
// between the empty and full rates, and the total is ceil'd.
func TravelTime(load, distance float64) int {
	perUnit := EmptyTravelMinPerUnit + (load/MaxCapacity)*(FullTravelMinPerUnit-EmptyTravelMinPerUnit)
	return int(math.Ceil(perUnit * distance))
}

// BatteryUsed returns the battery percentage points a segment consumes,
// per spec.md §4.2's simplified formula
// consumption_per_unit * load_factor * travel_time / 10, clamped to 30.
func BatteryUsed(load float64, travelTime int) float64 {
	consumptionPerUnit := 100.0 / DischargeReferenceMin
	loadFactor := 1 + load/MaxCapacity
	used := consumptionPerUnit * loadFactor * float64(travelTime) / 10.0
	return math.Min(used, maxBatteryUsedPerSegment)
}

// StartMove transitions Idle -> Moving. next is the single-edge hop the
// scheduler chose; segmentDistance is the real-valued edge weight.
func (a *AGV) StartMove(next int, segmentDistance float64, now int) error {
	if a.Mode != Idle {
		return fmt.Errorf("agv %s: StartMove requires Idle, got %s", a.ID, a.Mode)
	}
	if a.Battery <= 0 {
		return fmt.Errorf("%w: agv %s has no battery to start a move", simerr.ErrBatteryExhausted, a.ID)
	}
	travel := TravelTime(a.Load, segmentDistance)
	used := BatteryUsed(a.Load, travel)

	a.Mode = Moving
	a.Destination = next
	a.BusyUntil = now + travel
	a.Battery = math.Max(0, a.Battery-used)
	return nil
}

// CompleteMove transitions Moving -> Idle once now >= BusyUntil, arriving
// at Destination. It does not detach payloads; the scheduler does that
// after checking each held payload's destination against the new station.
func (a *AGV) CompleteMove(now int) error {
	if a.Mode != Moving {
		return fmt.Errorf("agv %s: CompleteMove requires Moving, got %s", a.ID, a.Mode)
	}
	if now < a.BusyUntil {
		return fmt.Errorf("agv %s: CompleteMove called before busy_until (%d < %d)", a.ID, now, a.BusyUntil)
	}
	a.Station = a.Destination
	a.Mode = Idle
	return nil
}

// StartCharge transitions Idle -> Charging at the charging station.
func (a *AGV) StartCharge(now int) error {
	if a.Mode != Idle {
		return fmt.Errorf("agv %s: StartCharge requires Idle, got %s", a.ID, a.Mode)
	}
	if a.Battery >= FullBattery {
		return fmt.Errorf("agv %s: StartCharge called at full battery", a.ID)
	}
	a.Mode = Charging
	a.BusyUntil = now + ChargeDurationMin
	a.ChargeCount++
	return nil
}

// CompleteCharge transitions Charging -> Idle, setting battery to exactly
// 100.
func (a *AGV) CompleteCharge(now int) error {
	if a.Mode != Charging {
		return fmt.Errorf("agv %s: CompleteCharge requires Charging, got %s", a.ID, a.Mode)
	}
	if now < a.BusyUntil {
		return fmt.Errorf("agv %s: CompleteCharge called before busy_until (%d < %d)", a.ID, now, a.BusyUntil)
	}
	a.Battery = FullBattery
	a.Mode = Idle
	return nil
}

// Attach picks up a payload at the AGV's current station. pickupTime is the
// simulated minute recorded for later latency accounting.
func (a *AGV) Attach(p *payload.Payload, pickupTime int) error {
	if a.Mode != Idle {
		return fmt.Errorf("agv %s: Attach requires Idle, got %s", a.ID, a.Mode)
	}
	if a.Station != p.Source {
		return fmt.Errorf("agv %s: Attach requires station == payload source (%d != %d)", a.ID, a.Station, p.Source)
	}
	if p.Delivered {
		return fmt.Errorf("agv %s: Attach called on already-delivered payload %s", a.ID, p.ID)
	}
	if a.Load+p.Weight > MaxCapacity+1e-9 {
		return fmt.Errorf("%w: agv %s load %v + payload %s weight %v exceeds capacity %v",
			simerr.ErrCapacityOverflow, a.ID, a.Load, p.ID, p.Weight, MaxCapacity)
	}
	a.Held[p.ID] = p
	a.PickupTime[p.ID] = pickupTime
	a.Load += p.Weight
	return nil
}

// Detach removes a payload from Held. Callers are responsible for marking
// p.Delivered once a.Station == p.Destination.
func (a *AGV) Detach(p *payload.Payload) error {
	if _, ok := a.Held[p.ID]; !ok {
		return fmt.Errorf("agv %s: Detach called on payload %s not held", a.ID, p.ID)
	}
	delete(a.Held, p.ID)
	delete(a.PickupTime, p.ID)
	a.Load -= p.Weight
	if a.Load < 0 {
		a.Load = 0
	}
	return nil
}

// HeldPayloadIDs returns the ids of currently held payloads, sorted, for
// deterministic log formatting.
func (a *AGV) HeldPayloadIDs() []string {
	ids := make([]string, 0, len(a.Held))
	for id := range a.Held {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
