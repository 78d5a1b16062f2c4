package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
)

// Feed is a thread-safe in-memory buffer of the most recent move events,
// consumed by a live-run dashboard endpoint.
type Feed struct {
	mu     sync.RWMutex
	events []MoveEvent
	cap    int
}

// NewFeed creates a Feed retaining at most capacity recent events.
func NewFeed(capacity int) *Feed {
	return &Feed{cap: capacity}
}

// Push appends an event to the feed, evicting the oldest entry once the
// buffer is at capacity. Exported so tests outside this package can seed a
// Feed without going through the Kinesis consumer loop.
func (f *Feed) Push(e MoveEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	if len(f.events) > f.cap {
		f.events = f.events[len(f.events)-f.cap:]
	}
}

// Recent returns a copy of the buffered events, oldest first.
func (f *Feed) Recent() []MoveEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]MoveEvent, len(f.events))
	copy(out, f.events)
	return out
}

// Consumer ingests the move-event stream off Kinesis into a Feed, mirroring
// the shard-iteration loop the teacher's fleet-service uses to ingest
// vehicle telemetry.
type Consumer struct {
	client     *kinesis.Client
	streamName string
	feed       *Feed
}

// NewConsumer constructs a Consumer over the given stream, publishing
// decoded events into feed.
func NewConsumer(client *kinesis.Client, streamName string, feed *Feed) *Consumer {
	return &Consumer{client: client, streamName: streamName, feed: feed}
}

// Start describes the stream's shards and launches one goroutine per shard
// to poll for records until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	slog.Info("telemetry: starting Kinesis consumer", "stream", c.streamName)

	describeOutput, err := c.client.DescribeStream(ctx, &kinesis.DescribeStreamInput{
		StreamName: &c.streamName,
	})
	if err != nil {
		slog.Error("telemetry: failed to describe Kinesis stream", "error", err)
		return
	}

	for _, shard := range describeOutput.StreamDescription.Shards {
		go c.processShard(ctx, *shard.ShardId)
	}
}

func (c *Consumer) processShard(ctx context.Context, shardID string) {
	slog.Info("telemetry: processing shard", "shard_id", shardID)

	iteratorOutput, err := c.client.GetShardIterator(ctx, &kinesis.GetShardIteratorInput{
		StreamName:        &c.streamName,
		ShardId:           &shardID,
		ShardIteratorType: types.ShardIteratorTypeLatest,
	})
	if err != nil {
		slog.Error("telemetry: failed to get shard iterator", "error", err, "shard_id", shardID)
		return
	}
	shardIterator := iteratorOutput.ShardIterator

	for {
		select {
		case <-ctx.Done():
			slog.Info("telemetry: stopping shard processing", "shard_id", shardID)
			return
		default:
			if shardIterator == nil {
				slog.Warn("telemetry: shard iterator is nil, stopping", "shard_id", shardID)
				return
			}

			recordsOutput, err := c.client.GetRecords(ctx, &kinesis.GetRecordsInput{
				ShardIterator: shardIterator,
			})
			if err != nil {
				slog.Error("telemetry: failed to get records", "error", err, "shard_id", shardID)
				time.Sleep(time.Second)
				continue
			}

			for _, record := range recordsOutput.Records {
				c.processRecord(record)
			}

			shardIterator = recordsOutput.NextShardIterator
			time.Sleep(time.Second)
		}
	}
}

func (c *Consumer) processRecord(record types.Record) {
	var event MoveEvent
	if err := json.Unmarshal(record.Data, &event); err != nil || event.AGVID == "" {
		// Not every record on the stream is a move event (run-lifecycle
		// events share the stream); ignore anything that doesn't decode
		// into one.
		return
	}
	c.feed.Push(event)
	slog.Debug("telemetry: ingested move event", "agv_id", event.AGVID, "minute", event.Minute)
}
