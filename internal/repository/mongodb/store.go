package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/bizdesk/internal/query"
)

// Store owns the MongoDB client and hands out per-collection repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBStore connects to MongoDB and verifies the connection.
func NewMongoDBStore(ctx context.Context, uri string, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Database exposes the underlying database handle.
func (s *Store) Database() *mongo.Database { return s.db }

// Logs returns the worksheet log repository.
func (s *Store) Logs() *LogRepository { return NewLogRepository(s.db) }

// Users returns the user repository.
func (s *Store) Users() *UserRepository { return NewUserRepository(s.db) }

// Payees returns the payee repository.
func (s *Store) Payees() *PayeeRepository { return NewPayeeRepository(s.db) }

// Cheques returns the cheque repository.
func (s *Store) Cheques() *ChequeRepository { return NewChequeRepository(s.db) }

// Bills returns the bill repository.
func (s *Store) Bills() *BillRepository { return NewBillRepository(s.db) }

// Sessions returns the session repository.
func (s *Store) Sessions() *SessionRepository { return NewSessionRepository(s.db) }

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		query.LogsCollection: {
			{Keys: bson.D{{Key: "worker", Value: 1}, {Key: "date", Value: -1}}},
			{Keys: bson.D{{Key: "date", Value: -1}}},
		},
		query.UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		query.ChequesCollection: {
			{Keys: bson.D{{Key: "payee", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: -1}}},
		},
		query.BillsCollection: {
			{Keys: bson.D{{Key: "date", Value: -1}}},
		},
		query.SessionsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for coll, specs := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func aggregateAll[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make([]T, 0)
	}
	return out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.D, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make([]T, 0)
	}
	return out, nil
}

// aggregateOne decodes the first document of the pipeline into out and
// reports whether there was one.
func aggregateOne(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out any) (bool, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return false, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return false, cursor.Err()
	}
	if err := cursor.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

func findByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, out any) (bool, error) {
	err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func existsByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// updateByID applies set to the document in a single find-and-modify and
// reports whether a document matched.
func updateByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, set bson.D) (bool, error) {
	err := coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (bool, error) {
	res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
