package runstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the narrow slice of the DynamoDB client this package
// needs, kept as an interface so tests can supply a mock.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoRunStore implements RunStorage on top of DynamoDB.
type DynamoRunStore struct {
	client    DynamoDBAPI
	tableName string
}

// NewDynamoRunStore constructs a DynamoRunStore over the given table.
func NewDynamoRunStore(client DynamoDBAPI, tableName string) *DynamoRunStore {
	return &DynamoRunStore{client: client, tableName: tableName}
}

// dynamoRunSummary is RunSummary's wire shape: DynamoDB attribute maps
// require string keys, so the priority map is re-keyed to strings for
// storage, and StartedAt is stored as Unix seconds; both are converted
// back on read.
type dynamoRunSummary struct {
	RunID                 string            `dynamodbav:"run_id"`
	StartedAtUnix         int64             `dynamodbav:"started_at_unix"`
	MakespanMinutes       int               `dynamodbav:"makespan_minutes"`
	AvgDeliveryByPriority map[string]float64 `dynamodbav:"avg_delivery_by_priority"`
	ChargeCounts          map[string]int    `dynamodbav:"charge_counts"`
	DeliveredCount        int               `dynamodbav:"delivered_count"`
	Deadlocked            bool              `dynamodbav:"deadlocked"`
}

func toDynamo(r *RunSummary) dynamoRunSummary {
	avg := make(map[string]float64, len(r.AvgDeliveryByPriority))
	for priority, v := range r.AvgDeliveryByPriority {
		avg[strconv.Itoa(priority)] = v
	}
	return dynamoRunSummary{
		RunID:                 r.RunID,
		StartedAtUnix:         r.StartedAt.Unix(),
		MakespanMinutes:       r.MakespanMinutes,
		AvgDeliveryByPriority: avg,
		ChargeCounts:          r.ChargeCounts,
		DeliveredCount:        r.DeliveredCount,
		Deadlocked:            r.Deadlocked,
	}
}

func fromDynamo(d dynamoRunSummary) (*RunSummary, error) {
	avg := make(map[int]float64, len(d.AvgDeliveryByPriority))
	for key, v := range d.AvgDeliveryByPriority {
		priority, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse priority key %q: %w", key, err)
		}
		avg[priority] = v
	}
	return &RunSummary{
		RunID:                 d.RunID,
		StartedAt:             time.Unix(d.StartedAtUnix, 0).UTC(),
		MakespanMinutes:       d.MakespanMinutes,
		AvgDeliveryByPriority: avg,
		ChargeCounts:          d.ChargeCounts,
		DeliveredCount:        d.DeliveredCount,
		Deadlocked:            d.Deadlocked,
	}, nil
}

func (s *DynamoRunStore) SaveRun(ctx context.Context, run *RunSummary) error {
	item, err := attributevalue.MarshalMap(toDynamo(run))
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put run: %w", err)
	}
	return nil
}

func (s *DynamoRunStore) GetRun(ctx context.Context, runID string) (*RunSummary, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"run_id": &types.AttributeValueMemberS{Value: runID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("run %s not found", runID)
	}

	var d dynamoRunSummary
	if err := attributevalue.UnmarshalMap(result.Item, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return fromDynamo(d)
}

func (s *DynamoRunStore) ListRuns(ctx context.Context) ([]*RunSummary, error) {
	result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan runs: %w", err)
	}

	runs := make([]*RunSummary, 0, len(result.Items))
	for _, item := range result.Items {
		var d dynamoRunSummary
		if err := attributevalue.UnmarshalMap(item, &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		run, err := fromDynamo(d)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
