// Package telemetry streams move-log entries and run-lifecycle events to
// Kinesis as supplemental analytics — the simulation's own execution log
// and metrics remain the source of truth; Kinesis is optional and a no-op
// when unconfigured.
package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/kinesis"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/movelog"
)

// MoveEvent is the wire shape of a streamed move-log entry.
type MoveEvent struct {
	AGVID       string    `json:"agv_id"`
	FromStation int       `json:"from_station"`
	ToStation   int       `json:"to_station"`
	Minute      int       `json:"minute"`
	Load        float64   `json:"load"`
	PayloadIDs  []string  `json:"payload_ids,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// RunEvent is the wire shape of a run-lifecycle event: run_started,
// run_completed, or deadlock.
type RunEvent struct {
	RunID     string    `json:"run_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// Streamer wraps a Kinesis client. A nil client makes every method a
// no-op, matching the teacher's "Kinesis is optional" posture throughout.
type Streamer struct {
	client     *kinesis.Client
	streamName string
}

// NewStreamer constructs a Streamer. Pass a nil client to disable
// streaming entirely.
func NewStreamer(client *kinesis.Client, streamName string) *Streamer {
	return &Streamer{client: client, streamName: streamName}
}

// StreamMove sends one move-log entry, partitioned by AGV id.
func (s *Streamer) StreamMove(e movelog.Entry) {
	if s.client == nil {
		return
	}

	event := MoveEvent{
		AGVID:       e.AGVID,
		FromStation: e.FromStation,
		ToStation:   e.ToStation,
		Minute:      e.Minute,
		Load:        e.Load,
		PayloadIDs:  e.PayloadIDs,
		Timestamp:   time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("telemetry: failed to marshal move event", "agv_id", e.AGVID, "error", err)
		return
	}

	_, err = s.client.PutRecord(context.TODO(), &kinesis.PutRecordInput{
		StreamName:   &s.streamName,
		Data:         data,
		PartitionKey: &e.AGVID,
	})
	if err != nil {
		slog.Error("telemetry: failed to stream move event", "agv_id", e.AGVID, "error", err)
	} else {
		slog.Debug("telemetry: streamed move event", "agv_id", e.AGVID, "minute", e.Minute)
	}
}

// StreamRunEvent sends a run-lifecycle event, partitioned by run id.
func (s *Streamer) StreamRunEvent(runID, eventType string) {
	if s.client == nil {
		return
	}

	event := RunEvent{RunID: runID, EventType: eventType, Timestamp: time.Now().UTC()}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("telemetry: failed to marshal run event", "run_id", runID, "error", err)
		return
	}

	_, err = s.client.PutRecord(context.TODO(), &kinesis.PutRecordInput{
		StreamName:   &s.streamName,
		Data:         data,
		PartitionKey: &runID,
	})
	if err != nil {
		slog.Error("telemetry: failed to stream run event", "run_id", runID, "event_type", eventType, "error", err)
	} else {
		slog.Debug("telemetry: streamed run event", "run_id", runID, "event_type", eventType)
	}
}
