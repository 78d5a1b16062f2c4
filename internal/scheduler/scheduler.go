// Package scheduler implements the per-tick dispatch policy: completing due
// AGV tasks, assigning idle AGVs to actions via a fixed priority ladder, and
// detecting deadlock when no tick makes progress.
package scheduler

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/agv"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/metrics"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/movelog"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/network"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/payload"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simerr"
)

// MaxStuck is the number of consecutive no-progress ticks tolerated before
// the scheduler declares deadlock and terminates.
const MaxStuck = 5

// FallbackAdvanceMinutes is the clock step taken when Phase C finds no
// pending event to jump to.
const FallbackAdvanceMinutes = 5

// Scheduler owns the fleet, network, and payload registry for a single run
// and drives them tick by tick. Fleet order is fixed at construction and
// iterated as a slice throughout, never a map, so execution is
// reproducible.
type Scheduler struct {
	Network  *network.Network
	Fleet    []*agv.AGV
	Payloads *payload.Registry
	Metrics  *metrics.Recorder
	Log      *movelog.Log

	now        int
	noProgress int
	deadlocked bool
}

// New constructs a Scheduler over the given network, fleet (in fixed
// dispatch order), and payload registry.
func New(net *network.Network, fleet []*agv.AGV, payloads *payload.Registry, simStartHour, simStartMinute int) *Scheduler {
	return &Scheduler{
		Network:  net,
		Fleet:    fleet,
		Payloads: payloads,
		Metrics:  metrics.NewRecorder(),
		Log:      movelog.NewLog(simStartHour, simStartMinute),
	}
}

// Now returns the current simulated clock, in minutes since SIM_START.
func (s *Scheduler) Now() int {
	return s.now
}

// Deadlocked reports whether the scheduler terminated via deadlock rather
// than full delivery.
func (s *Scheduler) Deadlocked() bool {
	return s.deadlocked
}

// Done reports whether the run has reached a terminal state: every payload
// delivered, or deadlock declared.
func (s *Scheduler) Done() bool {
	return s.Payloads.AllDelivered() || s.deadlocked
}

// Tick runs one iteration: Phase A (complete due tasks), Phase B (assign
// idle AGVs), Phase C (clock advance / deadlock detection). It is the unit
// the driver calls in a loop until Done returns true.
func (s *Scheduler) Tick() {
	progressA := s.phaseA()
	progressB := s.phaseB()
	s.phaseC(progressA || progressB)
}

// phaseA completes any AGV whose busy period has elapsed, in fleet order.
func (s *Scheduler) phaseA() bool {
	progress := false
	for _, a := range s.Fleet {
		switch a.Mode {
		case agv.Moving:
			if s.now < a.BusyUntil {
				continue
			}
			if err := a.CompleteMove(s.now); err != nil {
				slog.Error("scheduler: complete_move failed", "agv_id", a.ID, "now", s.now, "error", err)
				continue
			}
			progress = true
			slog.Debug("agv completed move", "agv_id", a.ID, "station", a.Station, "now", s.now)
			s.detachArrivals(a)
		case agv.Charging:
			if s.now < a.BusyUntil {
				continue
			}
			if err := a.CompleteCharge(s.now); err != nil {
				slog.Error("scheduler: complete_charge failed", "agv_id", a.ID, "now", s.now, "error", err)
				continue
			}
			progress = true
			slog.Debug("agv completed charge", "agv_id", a.ID, "battery", a.Battery, "now", s.now)
		}
	}
	return progress
}

// detachArrivals detaches and marks delivered every payload a has arrived
// at, recording its pickup-to-delivery latency.
func (s *Scheduler) detachArrivals(a *agv.AGV) {
	for _, id := range a.HeldPayloadIDs() {
		p := a.Held[id]
		if p.Destination != a.Station {
			continue
		}
		pickupTime := a.PickupTime[id]
		if err := a.Detach(p); err != nil {
			slog.Error("scheduler: detach failed", "agv_id", a.ID, "payload_id", id, "error", err)
			continue
		}
		p.Delivered = true
		latency := s.now - pickupTime
		s.Metrics.RecordDelivery(p.Priority, latency)
		slog.Info("payload delivered", "agv_id", a.ID, "payload_id", p.ID, "station", a.Station, "now", s.now, "latency_minutes", latency)
	}
}

// phaseB assigns one action to every idle AGV, in fleet order, via the
// fixed priority ladder (spec's rules 1-5).
func (s *Scheduler) phaseB() bool {
	progress := false
	for _, a := range s.Fleet {
		if a.Mode != agv.Idle {
			continue
		}
		if s.ruleCriticalChargeDash(a) {
			progress = true
			continue
		}
		if s.ruleBeginCharge(a) {
			progress = true
			continue
		}
		if s.ruleDeliverHeld(a) {
			progress = true
			continue
		}
		if s.rulePreventiveCharge(a) {
			progress = true
			continue
		}
		if s.rulePickup(a) {
			progress = true
			continue
		}
	}
	return progress
}

// ruleCriticalChargeDash is rule 1: below CriticalBattery, head to the
// charging station ahead of every other obligation.
func (s *Scheduler) ruleCriticalChargeDash(a *agv.AGV) bool {
	if a.Battery >= agv.CriticalBattery || a.Station == s.Network.ChargingStation() {
		return false
	}
	return s.hop(a, s.Network.ChargingStation())
}

// ruleBeginCharge is rule 2: at the charging station with room to charge.
func (s *Scheduler) ruleBeginCharge(a *agv.AGV) bool {
	if a.Station != s.Network.ChargingStation() || a.Battery >= agv.FullBattery {
		return false
	}
	if err := a.StartCharge(s.now); err != nil {
		slog.Error("scheduler: start_charge failed", "agv_id", a.ID, "error", err)
		return false
	}
	s.Metrics.RecordCharge(a.ID)
	slog.Debug("agv started charging", "agv_id", a.ID, "battery", a.Battery, "now", s.now)
	return true
}

// ruleDeliverHeld is rule 3: head toward the nearest held payload's
// destination, tie-broken on smaller station id.
func (s *Scheduler) ruleDeliverHeld(a *agv.AGV) bool {
	if len(a.Held) == 0 {
		return false
	}
	dest, ok := s.nearestHeldDestination(a)
	if !ok {
		return false
	}
	if dest == a.Station {
		// Already there; Phase A next tick detaches on arrival.
		return false
	}
	return s.hop(a, dest)
}

func (s *Scheduler) nearestHeldDestination(a *agv.AGV) (int, bool) {
	ids := a.HeldPayloadIDs()
	bestDest := 0
	bestDist := -1.0
	found := false
	for _, id := range ids {
		p := a.Held[id]
		d := s.Network.Distance(a.Station, p.Destination)
		if !found || d < bestDist || (d == bestDist && p.Destination < bestDest) {
			bestDist = d
			bestDest = p.Destination
			found = true
		}
	}
	return bestDest, found
}

// rulePreventiveCharge is rule 4: unladen and below LowBatteryThreshold,
// head toward the charging station.
func (s *Scheduler) rulePreventiveCharge(a *agv.AGV) bool {
	if len(a.Held) != 0 || a.Battery >= agv.LowBatteryThreshold || a.Station == s.Network.ChargingStation() {
		return false
	}
	return s.hop(a, s.Network.ChargingStation())
}

// rulePickup is rule 5: the pickup sub-algorithm (group by source, greedy
// capacity packing, priority/distance scoring).
func (s *Scheduler) rulePickup(a *agv.AGV) bool {
	if a.Battery < agv.MinBatteryForPickup {
		return false
	}
	groups := s.candidateGroups(a)
	if len(groups) == 0 {
		return false
	}
	best := selectBestGroup(groups)
	if a.Station == best.source {
		return s.attachGroup(a, best)
	}
	return s.hop(a, best.source)
}

// pickupGroup is the set of candidate payloads waiting at one source
// station, scored for rule 5's source selection.
type pickupGroup struct {
	source       int
	candidates   []*payload.Payload // admitted via greedy capacity packing
	bestPriority int
	distance     float64
}

// candidateGroups builds one pickupGroup per source station holding
// eligible payloads (undelivered, dispatched, individually fits remaining
// capacity), admitting candidates greedily by ascending priority while the
// running weight fits.
func (s *Scheduler) candidateGroups(a *agv.AGV) []pickupGroup {
	bySource := make(map[int][]*payload.Payload)
	for _, p := range s.Payloads.Pending(s.now) {
		if p.Weight > agv.MaxCapacity-a.Load {
			continue
		}
		bySource[p.Source] = append(bySource[p.Source], p)
	}
	if len(bySource) == 0 {
		return nil
	}

	sources := make([]int, 0, len(bySource))
	for src := range bySource {
		sources = append(sources, src)
	}
	sort.Ints(sources)

	groups := make([]pickupGroup, 0, len(sources))
	for _, src := range sources {
		ps := bySource[src]
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Priority < ps[j].Priority })

		var admitted []*payload.Payload
		running := a.Load
		bestPriority := ps[0].Priority
		for _, p := range ps {
			if running+p.Weight > agv.MaxCapacity+1e-9 {
				continue
			}
			running += p.Weight
			admitted = append(admitted, p)
		}
		if len(admitted) == 0 {
			continue
		}
		groups = append(groups, pickupGroup{
			source:       src,
			candidates:   admitted,
			bestPriority: bestPriority,
			distance:     s.Network.Distance(a.Station, src),
		})
	}
	return groups
}

// selectBestGroup picks the group with the lowest best-priority, breaking
// ties by smallest distance, then smallest source station id.
func selectBestGroup(groups []pickupGroup) pickupGroup {
	best := groups[0]
	for _, g := range groups[1:] {
		if g.bestPriority < best.bestPriority {
			best = g
			continue
		}
		if g.bestPriority > best.bestPriority {
			continue
		}
		if g.distance < best.distance {
			best = g
			continue
		}
		if g.distance > best.distance {
			continue
		}
		if g.source < best.source {
			best = g
		}
	}
	return best
}

// attachGroup attaches every candidate in g that still fits after
// re-checking capacity per payload (a defensive re-check, since the
// pickup sub-algorithm must never cause CapacityOverflow).
func (s *Scheduler) attachGroup(a *agv.AGV, g pickupGroup) bool {
	attachedAny := false
	for _, p := range g.candidates {
		if a.Load+p.Weight > agv.MaxCapacity+1e-9 {
			continue
		}
		if err := a.Attach(p, s.now); err != nil {
			if errors.Is(err, simerr.ErrCapacityOverflow) {
				slog.Warn("scheduler: pickup attach rejected by capacity guard", "agv_id", a.ID, "payload_id", p.ID, "error", err)
			} else {
				slog.Error("scheduler: attach failed", "agv_id", a.ID, "payload_id", p.ID, "error", err)
			}
			continue
		}
		attachedAny = true
		slog.Debug("agv picked up payload", "agv_id", a.ID, "payload_id", p.ID, "station", a.Station, "now", s.now)
	}
	return attachedAny
}

// hop takes a single-edge move toward dest, recording a move-log entry.
// Returns false without acting if dest is unreachable (NetworkUnreachable:
// logged, not fatal — the affected payload/AGV simply makes no progress
// this tick).
func (s *Scheduler) hop(a *agv.AGV, dest int) bool {
	next, ok := s.Network.NextHop(a.Station, dest)
	if !ok {
		slog.Warn("scheduler: destination unreachable", "agv_id", a.ID, "from", a.Station, "to", dest, "now", s.now)
		return false
	}
	distance := s.Network.Distance(a.Station, next)
	from := a.Station
	if err := a.StartMove(next, distance, s.now); err != nil {
		slog.Error("scheduler: start_move failed", "agv_id", a.ID, "error", err)
		return false
	}
	s.Log.Append(movelog.Entry{
		AGVID:       a.ID,
		FromStation: from,
		ToStation:   next,
		Minute:      s.now,
		Load:        a.Load,
		PayloadIDs:  a.HeldPayloadIDs(),
	})
	slog.Debug("agv started move", "agv_id", a.ID, "from", from, "to", next, "now", s.now, "busy_until", a.BusyUntil)
	return true
}

// phaseC advances the clock when no action occurred this tick, and tracks
// the consecutive-no-progress counter for deadlock detection.
func (s *Scheduler) phaseC(progress bool) {
	if progress {
		s.noProgress = 0
		return
	}

	next, ok := s.nextEventTime()
	if ok {
		s.now = next
	} else {
		s.now += FallbackAdvanceMinutes
	}

	s.noProgress++
	if s.noProgress >= MaxStuck {
		s.deadlocked = true
		slog.Warn("scheduler: deadlock declared", "now", s.now, "consecutive_no_progress_ticks", s.noProgress)
	}
}

// nextEventTime finds the earliest time at which an event (an AGV becoming
// free, or a payload's dispatch time arriving) could occur.
func (s *Scheduler) nextEventTime() (int, bool) {
	found := false
	best := 0
	for _, a := range s.Fleet {
		if a.Mode == agv.Idle {
			continue
		}
		if !found || a.BusyUntil < best {
			best = a.BusyUntil
			found = true
		}
	}
	if dispatch, ok := s.Payloads.NextDispatch(s.now); ok {
		if !found || dispatch < best {
			best = dispatch
			found = true
		}
	}
	return best, found
}
