package simservice

import (
	"context"
	"testing"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/runstore"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/telemetry"
)

const testNetworkYAML = `
stations: [1, 2]
charging_station: 2
edges:
  - {from: 1, to: 2, weight: 10}
fleet:
  - {id: agv_1, start_station: 1}
`

func TestSubmitRun_PersistsCompletedRun(t *testing.T) {
	store := runstore.NewMemoryRunStore()
	svc := New(store, telemetry.NewStreamer(nil, ""))

	payloadCSV := "p1,1,2,3.0,1,0\n"
	run, err := svc.SubmitRun(context.Background(), []byte(payloadCSV), []byte(testNetworkYAML))
	if err != nil {
		t.Fatalf("SubmitRun: %v", err)
	}
	if run.DeliveredCount != 1 {
		t.Errorf("DeliveredCount = %d, want 1", run.DeliveredCount)
	}
	if run.MakespanMinutes != 65 {
		t.Errorf("MakespanMinutes = %d, want 65", run.MakespanMinutes)
	}

	got, err := svc.GetRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.RunID != run.RunID {
		t.Errorf("GetRun returned a different run")
	}
}

func TestSubmitRun_InvalidNetworkYAMLFails(t *testing.T) {
	store := runstore.NewMemoryRunStore()
	svc := New(store, telemetry.NewStreamer(nil, ""))

	_, err := svc.SubmitRun(context.Background(), []byte("p1,1,2,3.0,1,0\n"), []byte("not: [valid"))
	if err == nil {
		t.Fatal("expected error for invalid network yaml")
	}
}

func TestListRuns_ReturnsAllSubmitted(t *testing.T) {
	store := runstore.NewMemoryRunStore()
	svc := New(store, telemetry.NewStreamer(nil, ""))

	if _, err := svc.SubmitRun(context.Background(), []byte("p1,1,2,3.0,1,0\n"), []byte(testNetworkYAML)); err != nil {
		t.Fatalf("SubmitRun: %v", err)
	}

	runs, err := svc.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
}
