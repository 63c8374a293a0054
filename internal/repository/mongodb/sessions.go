package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
)

// SessionRepository persists login sessions. Expired sessions are removed by
// the TTL index on expiresAt.
type SessionRepository struct {
	coll *mongo.Collection
}

// NewSessionRepository binds the repository to the sessions collection of db.
func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(query.SessionsCollection)}
}

// Insert stores a new session.
func (r *SessionRepository) Insert(ctx context.Context, session models.Session) error {
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Active reports whether the session exists for user and has not expired at now.
func (r *SessionRepository) Active(ctx context.Context, id string, user primitive.ObjectID, now time.Time) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: "user", Value: user},
		{Key: "expiresAt", Value: bson.D{{Key: "$gt", Value: now}}},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up session: %w", err)
	}
	return n > 0, nil
}

// Delete removes a single session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUser revokes every session of user.
func (r *SessionRepository) DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "user", Value: user}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return res.DeletedCount, nil
}
