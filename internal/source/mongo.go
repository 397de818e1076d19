package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/contentonrails/newsmon/internal/models"
)

// internalTitles matches CONFIG_* and PROMPT_* newsletters, which are
// configuration documents rather than real publications.
var internalTitles = bson.M{"$not": bson.M{"$regex": "^(CONFIG_|PROMPT_)"}}

// MongoSource reads worker_runs, workers, and newsletters collections
// directly.
type MongoSource struct {
	runs        *mongo.Collection
	workers     *mongo.Collection
	newsletters *mongo.Collection
}

func NewMongoSource(db *mongo.Database) *MongoSource {
	return &MongoSource{
		runs:        db.Collection("worker_runs"),
		workers:     db.Collection("workers"),
		newsletters: db.Collection("newsletters"),
	}
}

func (s *MongoSource) WorkerActivity(ctx context.Context, now time.Time, window time.Duration) (models.WorkerActivity, error) {
	cutoff := now.UTC().Add(-window)

	cursor, err := s.runs.Find(ctx,
		bson.M{"started_at": bson.M{"$gte": cutoff}},
		options.Find().SetSort(bson.M{"started_at": -1}))
	if err != nil {
		return models.WorkerActivity{}, fmt.Errorf("failed to fetch worker runs: %w", err)
	}
	var runs []models.ObservedRun
	if err := cursor.All(ctx, &runs); err != nil {
		return models.WorkerActivity{}, fmt.Errorf("failed to decode worker runs: %w", err)
	}

	workerCount, err := s.workers.CountDocuments(ctx, bson.M{"registered_at": bson.M{"$gte": cutoff}})
	if err != nil {
		return models.WorkerActivity{}, fmt.Errorf("failed to count recent workers: %w", err)
	}

	activity := models.WorkerActivity{
		RecentRuns:    len(runs),
		RecentWorkers: int(workerCount),
	}
	if len(runs) > 0 {
		completed := 0
		for _, run := range runs {
			if run.Status == "completed" {
				completed++
			}
		}
		activity.SuccessRate = float64(completed) / float64(len(runs)) * 100
		last := runs[0].StartedAt
		activity.LastRun = &last
	}
	return activity, nil
}

func (s *MongoSource) PublisherActivity(ctx context.Context, now time.Time, window time.Duration) (models.PublisherActivity, error) {
	cutoff := now.UTC().Add(-window)

	cursor, err := s.newsletters.Find(ctx,
		bson.M{"generated_at": bson.M{"$gte": cutoff}, "title": internalTitles},
		options.Find().SetSort(bson.M{"generated_at": -1}))
	if err != nil {
		return models.PublisherActivity{}, fmt.Errorf("failed to fetch newsletters: %w", err)
	}
	var newsletters []models.Newsletter
	if err := cursor.All(ctx, &newsletters); err != nil {
		return models.PublisherActivity{}, fmt.Errorf("failed to decode newsletters: %w", err)
	}

	activity := models.PublisherActivity{RecentNewsletters: len(newsletters)}
	if len(newsletters) > 0 {
		last := newsletters[0].GeneratedAt
		activity.LastGeneration = &last
	}
	return activity, nil
}

func (s *MongoSource) RanInWindow(ctx context.Context, service string, from, to time.Time) (bool, error) {
	var filter bson.M
	var col *mongo.Collection

	switch service {
	case ServiceWorker:
		col = s.runs
		filter = bson.M{"started_at": bson.M{"$gte": from.UTC(), "$lte": to.UTC()}}
	case ServicePublisher:
		col = s.newsletters
		filter = bson.M{
			"generated_at": bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
			"title":        internalTitles,
		}
	default:
		return false, fmt.Errorf("unknown service %q", service)
	}

	count, err := col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to search %s runs in window: %w", service, err)
	}
	return count > 0, nil
}
