package simulation

import (
	"context"
	"testing"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/agv"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/network"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/payload"
)

func TestDriver_RunDeliversSinglePayload(t *testing.T) {
	n, err := network.NewNetwork([]int{1, 2}, 2)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	n.AddEdge(1, 2, 10)

	fleet := []*agv.AGV{agv.New("agv_1", 1)}
	p1, _ := payload.New("p1", 1, 2, 3.0, 1, 0)
	reg, _ := payload.NewRegistry([]*payload.Payload{p1})

	d := New(n, fleet, reg)
	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Deadlocked {
		t.Fatal("expected clean completion, got deadlock")
	}
	if result.Metrics.DeliveredCount != 1 {
		t.Errorf("DeliveredCount = %d, want 1", result.Metrics.DeliveredCount)
	}
	if len(result.ExecutionLog) == 0 {
		t.Error("expected at least one execution log entry")
	}
}

func TestDriver_RunRespectsCancellation(t *testing.T) {
	n, err := network.NewNetwork([]int{1, 2}, 1)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	// No edges: station 2 unreachable, so the run would otherwise deadlock
	// slowly; cancellation should short-circuit it immediately.
	fleet := []*agv.AGV{agv.New("agv_1", 1)}
	p1, _ := payload.New("p1", 1, 2, 1.0, 1, 0)
	reg, _ := payload.NewRegistry([]*payload.Payload{p1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(n, fleet, reg)
	_, err = d.Run(ctx)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
