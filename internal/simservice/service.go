// Package simservice is the service layer behind simapi: it turns a
// submitted payload CSV + network YAML into a completed run, persists
// the summary, and streams lifecycle events — mirroring the shape of
// fleet-service's internal/service.FleetService, which wraps a storage
// interface behind domain-specific methods for its HTTP handler.
package simservice

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/config"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/payload"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/runstore"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simulation"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/telemetry"
)

// runCounter disambiguates run ids created at the same nanosecond
// timestamp; in production, use a UUID.
var runCounter int64

func generateRunID() string {
	n := atomic.AddInt64(&runCounter, 1)
	return fmt.Sprintf("run-%d-%d", time.Now().UnixNano(), n)
}

// Service executes submitted runs and manages their persisted history.
type Service struct {
	store    runstore.RunStorage
	streamer *telemetry.Streamer
}

// New constructs a Service. streamer may be a Streamer wrapping a nil
// Kinesis client, in which case streaming is a no-op.
func New(store runstore.RunStorage, streamer *telemetry.Streamer) *Service {
	return &Service{store: store, streamer: streamer}
}

// SubmitRun parses payloadCSV and networkYAML, runs the simulation to
// completion, persists the resulting RunSummary, and returns it.
func (s *Service) SubmitRun(ctx context.Context, payloadCSV, networkYAML []byte) (*runstore.RunSummary, error) {
	netCfg, err := config.LoadNetworkConfigBytes(networkYAML)
	if err != nil {
		return nil, fmt.Errorf("submit run: %w", err)
	}
	net, fleet, err := config.BuildNetwork(netCfg)
	if err != nil {
		return nil, fmt.Errorf("submit run: %w", err)
	}

	payloads, err := config.ParsePayloadCSV(bytes.NewReader(payloadCSV), config.StationSet(netCfg))
	if err != nil {
		return nil, fmt.Errorf("submit run: %w", err)
	}
	registry, err := payload.NewRegistry(payloads)
	if err != nil {
		return nil, fmt.Errorf("submit run: %w", err)
	}
	config.ValidateReachability(net, fleet, payloads)

	runID := generateRunID()
	startedAt := time.Now().UTC()
	s.streamer.StreamRunEvent(runID, "run_started")

	driver := simulation.New(net, fleet, registry)
	result, err := driver.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("submit run: %w", err)
	}

	for _, entry := range result.Entries {
		s.streamer.StreamMove(entry)
	}

	if result.Deadlocked {
		s.streamer.StreamRunEvent(runID, "deadlock")
	} else {
		s.streamer.StreamRunEvent(runID, "run_completed")
	}

	run := &runstore.RunSummary{
		RunID:                 runID,
		StartedAt:             startedAt,
		MakespanMinutes:       result.MakespanMinute,
		AvgDeliveryByPriority: result.Metrics.AvgDeliveryByPriority,
		ChargeCounts:          result.Metrics.ChargeCounts,
		DeliveredCount:        result.Metrics.DeliveredCount,
		Deadlocked:            result.Deadlocked,
	}

	if err := s.store.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("submit run: %w", err)
	}
	return run, nil
}

// GetRun fetches a previously persisted run.
func (s *Service) GetRun(ctx context.Context, runID string) (*runstore.RunSummary, error) {
	return s.store.GetRun(ctx, runID)
}

// ListRuns lists every persisted run.
func (s *Service) ListRuns(ctx context.Context) ([]*runstore.RunSummary, error) {
	return s.store.ListRuns(ctx)
}
