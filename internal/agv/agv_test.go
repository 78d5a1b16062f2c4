package agv

import (
	"errors"
	"testing"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/payload"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simerr"
)

func TestNew(t *testing.T) {
	a := New("agv-1", 3)

	if a.ID != "agv-1" {
		t.Errorf("ID = %q, want agv-1", a.ID)
	}
	if a.Station != 3 || a.Destination != 3 {
		t.Errorf("Station/Destination = %d/%d, want 3/3", a.Station, a.Destination)
	}
	if a.Battery != FullBattery {
		t.Errorf("Battery = %v, want %v", a.Battery, FullBattery)
	}
	if a.Mode != Idle {
		t.Errorf("Mode = %v, want Idle", a.Mode)
	}
	if len(a.Held) != 0 {
		t.Errorf("Held = %v, want empty", a.Held)
	}
}

func TestTravelTime_EmptyAndFull(t *testing.T) {
	if got := TravelTime(0, 10); got != 50 {
		t.Errorf("TravelTime(0,10) = %d, want 50", got)
	}
	if got := TravelTime(10, 10); got != 100 {
		t.Errorf("TravelTime(10,10) = %d, want 100", got)
	}
	// scenario 1 from spec.md §8: load 3, distance 10 -> ceil(65) = 65
	if got := TravelTime(3, 10); got != 65 {
		t.Errorf("TravelTime(3,10) = %d, want 65", got)
	}
}

func TestStartMove_DecrementsBatteryAndSetsBusyUntil(t *testing.T) {
	a := New("agv-1", 1)
	if err := a.StartMove(2, 10, 0); err != nil {
		t.Fatalf("StartMove: %v", err)
	}
	if a.Mode != Moving {
		t.Errorf("Mode = %v, want Moving", a.Mode)
	}
	if a.Destination != 2 {
		t.Errorf("Destination = %d, want 2", a.Destination)
	}
	wantBusy := TravelTime(0, 10)
	if a.BusyUntil != wantBusy {
		t.Errorf("BusyUntil = %d, want %d", a.BusyUntil, wantBusy)
	}
	if a.Battery >= FullBattery {
		t.Errorf("Battery = %v, want < %v after a move", a.Battery, FullBattery)
	}
	// station is unchanged until CompleteMove
	if a.Station != 1 {
		t.Errorf("Station = %d, want unchanged at 1", a.Station)
	}
}

func TestStartMove_RequiresIdle(t *testing.T) {
	a := New("agv-1", 1)
	_ = a.StartMove(2, 10, 0)
	if err := a.StartMove(3, 5, 0); err == nil {
		t.Fatal("expected error starting a move while already Moving")
	}
}

func TestCompleteMove_RequiresBusyUntilReached(t *testing.T) {
	a := New("agv-1", 1)
	_ = a.StartMove(2, 10, 0)
	if err := a.CompleteMove(a.BusyUntil - 1); err == nil {
		t.Fatal("expected error completing a move before busy_until")
	}
	if err := a.CompleteMove(a.BusyUntil); err != nil {
		t.Fatalf("CompleteMove: %v", err)
	}
	if a.Station != 2 || a.Mode != Idle {
		t.Errorf("after CompleteMove: station=%d mode=%v, want 2/Idle", a.Station, a.Mode)
	}
}

func TestStartCharge_RequiresChargeableState(t *testing.T) {
	a := New("agv-1", 9)
	a.Battery = 50
	if err := a.StartCharge(0); err != nil {
		t.Fatalf("StartCharge: %v", err)
	}
	if a.Mode != Charging || a.ChargeCount != 1 {
		t.Errorf("mode=%v chargeCount=%d, want Charging/1", a.Mode, a.ChargeCount)
	}
	if a.BusyUntil != ChargeDurationMin {
		t.Errorf("BusyUntil = %d, want %d", a.BusyUntil, ChargeDurationMin)
	}
}

func TestStartCharge_RejectsFullBattery(t *testing.T) {
	a := New("agv-1", 9)
	if err := a.StartCharge(0); err == nil {
		t.Fatal("expected error starting charge at full battery")
	}
}

func TestCompleteCharge_SetsBatteryToExactly100(t *testing.T) {
	a := New("agv-1", 9)
	a.Battery = 20
	_ = a.StartCharge(0)
	if err := a.CompleteCharge(a.BusyUntil); err != nil {
		t.Fatalf("CompleteCharge: %v", err)
	}
	if a.Battery != FullBattery {
		t.Errorf("Battery = %v, want %v", a.Battery, FullBattery)
	}
	if a.Mode != Idle {
		t.Errorf("Mode = %v, want Idle", a.Mode)
	}
}

func TestAttachDetach_UpdatesLoadAndCapacityOverflow(t *testing.T) {
	a := New("agv-1", 1)
	p1, _ := payload.New("p1", 1, 2, 6, 1, 0)
	p2, _ := payload.New("p2", 1, 2, 5, 1, 0)

	if err := a.Attach(p1, 0); err != nil {
		t.Fatalf("Attach p1: %v", err)
	}
	if a.Load != 6 {
		t.Errorf("Load = %v, want 6", a.Load)
	}

	if err := a.Attach(p2, 0); !errors.Is(err, simerr.ErrCapacityOverflow) {
		t.Fatalf("Attach p2 should overflow capacity, got %v", err)
	}

	if err := a.Detach(p1); err != nil {
		t.Fatalf("Detach p1: %v", err)
	}
	if a.Load != 0 {
		t.Errorf("Load after detach = %v, want 0", a.Load)
	}
}

func TestAttach_RequiresAtSource(t *testing.T) {
	a := New("agv-1", 5)
	p, _ := payload.New("p1", 1, 2, 3, 1, 0)
	if err := a.Attach(p, 0); err == nil {
		t.Fatal("expected error attaching payload when not at its source station")
	}
}

func TestAttach_ExactCapacityAllowed(t *testing.T) {
	a := New("agv-1", 1)
	p, _ := payload.New("p1", 1, 2, MaxCapacity, 1, 0)
	if err := a.Attach(p, 0); err != nil {
		t.Fatalf("Attach exact-capacity payload: %v", err)
	}
	if a.Load != MaxCapacity {
		t.Errorf("Load = %v, want %v", a.Load, MaxCapacity)
	}
}
