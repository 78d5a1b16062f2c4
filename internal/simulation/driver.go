// Package simulation owns the clock-driven run loop around a scheduler:
// it ticks until termination or cancellation and bundles the resulting
// execution log and metrics into a single Result.
package simulation

import (
	"context"
	"log/slog"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/agv"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/metrics"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/movelog"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/network"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/payload"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/scheduler"
)

// SimStartHour and SimStartMinute anchor the simulated clock's HH:MM
// formatting, per spec's SIM_START = 08:00.
const (
	SimStartHour   = 8
	SimStartMinute = 0
)

// Result bundles everything a run produces.
type Result struct {
	ExecutionLog   []string
	Entries        []movelog.Entry
	Metrics        metrics.Summary
	Deadlocked     bool
	MakespanMinute int
}

// Driver runs a single simulation to termination.
type Driver struct {
	sched *scheduler.Scheduler
}

// New constructs a Driver over a fresh scheduler for the given network,
// fleet, and payload registry.
func New(net *network.Network, fleet []*agv.AGV, payloads *payload.Registry) *Driver {
	return &Driver{sched: scheduler.New(net, fleet, payloads, SimStartHour, SimStartMinute)}
}

// Run ticks the scheduler until every payload is delivered, deadlock is
// declared, or ctx is cancelled. The core loop itself performs no I/O; it
// checks ctx.Err() once per tick purely as a cooperative-cancellation hook
// for the surrounding service.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	slog.Info("simulation run started", "fleet_size", len(d.sched.Fleet), "payload_count", d.sched.Payloads.Len())

	for !d.sched.Done() {
		if err := ctx.Err(); err != nil {
			slog.Warn("simulation run cancelled", "now", d.sched.Now(), "error", err)
			return nil, err
		}
		d.sched.Tick()
	}

	d.sched.Metrics.SetMakespan(d.sched.Now())
	summary := d.sched.Metrics.Snapshot()

	if d.sched.Deadlocked() {
		slog.Warn("simulation run ended in deadlock", "now", d.sched.Now(), "delivered_count", summary.DeliveredCount)
	} else {
		slog.Info("simulation run completed", "makespan_minutes", summary.MakespanMinutes, "delivered_count", summary.DeliveredCount)
	}

	return &Result{
		ExecutionLog:   d.sched.Log.Lines(),
		Entries:        d.sched.Log.Entries(),
		Metrics:        summary,
		Deadlocked:     d.sched.Deadlocked(),
		MakespanMinute: d.sched.Now(),
	}, nil
}
