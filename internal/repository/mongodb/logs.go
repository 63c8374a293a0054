package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
)

// LogRepository persists worksheet logs.
type LogRepository struct {
	coll *mongo.Collection
}

// NewLogRepository binds the repository to the logs collection of db.
func NewLogRepository(db *mongo.Database) *LogRepository {
	return &LogRepository{coll: db.Collection(query.LogsCollection)}
}

// List runs a listing pipeline and decodes every resulting log.
func (r *LogRepository) List(ctx context.Context, pipeline mongo.Pipeline) ([]models.LogView, error) {
	logs, err := aggregateAll[models.LogView](ctx, r.coll, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate logs: %w", err)
	}
	return logs, nil
}

// FindView runs a single-log pipeline. It returns nil when nothing matched.
func (r *LogRepository) FindView(ctx context.Context, pipeline mongo.Pipeline) (*models.LogView, error) {
	var view models.LogView
	found, err := aggregateOne(ctx, r.coll, pipeline, &view)
	if err != nil {
		return nil, fmt.Errorf("aggregate log: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &view, nil
}

// PaymentsSum sums the payment of the given logs; zero when there are none.
func (r *LogRepository) PaymentsSum(ctx context.Context, ids []primitive.ObjectID) (float64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var result struct {
		PaymentsSum float64 `bson:"paymentsSum"`
	}
	if _, err := aggregateOne(ctx, r.coll, query.PaymentsSumPipeline(ids), &result); err != nil {
		return 0, fmt.Errorf("aggregate payments sum: %w", err)
	}
	return result.PaymentsSum, nil
}

// AttendanceSums counts the present days and sums OTV of the given logs;
// zeros when there are none.
func (r *LogRepository) AttendanceSums(ctx context.Context, ids []primitive.ObjectID) (int64, float64, error) {
	if len(ids) == 0 {
		return 0, 0, nil
	}

	var result struct {
		DaysCount int64   `bson:"daysCount"`
		OTVSum    float64 `bson:"OTVSum"`
	}
	if _, err := aggregateOne(ctx, r.coll, query.AttendanceSumsPipeline(ids), &result); err != nil {
		return 0, 0, fmt.Errorf("aggregate attendance sums: %w", err)
	}
	return result.DaysCount, result.OTVSum, nil
}

// DigestByWorker groups the logs dated in [start, end) per worker.
func (r *LogRepository) DigestByWorker(ctx context.Context, start, end time.Time) ([]models.WorkerDigest, error) {
	digests, err := aggregateAll[models.WorkerDigest](ctx, r.coll, query.WorkerDigestPipeline(start, end))
	if err != nil {
		return nil, fmt.Errorf("aggregate worker digest: %w", err)
	}
	return digests, nil
}

// Insert stores a new log and sets its id.
func (r *LogRepository) Insert(ctx context.Context, entry *models.LogEntry) error {
	res, err := r.coll.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert log: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return nil
}

// Update applies the given fields and reports whether the log exists.
func (r *LogRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.D) (bool, error) {
	found, err := updateByID(ctx, r.coll, id, set)
	if err != nil {
		return false, fmt.Errorf("failed to update log: %w", err)
	}
	return found, nil
}

// Exists reports whether a log with id is stored.
func (r *LogRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	found, err := existsByID(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to look up log: %w", err)
	}
	return found, nil
}

// Delete removes the log and reports whether it existed.
func (r *LogRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	deleted, err := deleteByID(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete log: %w", err)
	}
	return deleted, nil
}
