package sink

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/contentonrails/newsmon/internal/models"
)

// MongoSink inserts monitoring events into the process_monitoring
// collection.
type MongoSink struct {
	events *mongo.Collection
}

func NewMongoSink(db *mongo.Database) *MongoSink {
	return &MongoSink{events: db.Collection("process_monitoring")}
}

func (s *MongoSink) RecordStatus(ctx context.Context, verdict models.Verdict) error {
	event := models.MonitoringEvent{
		ServiceName: verdict.Service,
		Status:      verdict.Status,
		LastCheck:   verdict.CheckedAt,
		Metadata: map[string]interface{}{
			"issues":       verdict.Issues,
			"recent_runs":  verdict.RecentRuns,
			"success_rate": verdict.SuccessRate,
		},
	}
	if verdict.LastRun != nil {
		event.Metadata["last_run"] = verdict.LastRun.UTC()
	}
	if _, err := s.events.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to record monitoring event for %s: %w", verdict.Service, err)
	}
	return nil
}

func (s *MongoSink) Heartbeat(ctx context.Context) error {
	event := models.MonitoringEvent{
		ServiceName: "monitoring",
		Status:      "active",
		LastCheck:   time.Now().UTC(),
	}
	if _, err := s.events.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to record monitoring heartbeat: %w", err)
	}
	return nil
}
