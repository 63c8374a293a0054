package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
)

// ChequeRepository persists cheques.
type ChequeRepository struct {
	coll *mongo.Collection
}

// NewChequeRepository binds the repository to the cheques collection of db.
func NewChequeRepository(db *mongo.Database) *ChequeRepository {
	return &ChequeRepository{coll: db.Collection(query.ChequesCollection)}
}

// List runs a cheque listing pipeline.
func (r *ChequeRepository) List(ctx context.Context, pipeline mongo.Pipeline) ([]models.ChequeView, error) {
	cheques, err := aggregateAll[models.ChequeView](ctx, r.coll, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate cheques: %w", err)
	}
	return cheques, nil
}

// FindByID returns the cheque or nil when it does not exist.
func (r *ChequeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Cheque, error) {
	var cheque models.Cheque
	found, err := findByID(ctx, r.coll, id, &cheque)
	if err != nil {
		return nil, fmt.Errorf("find cheque: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &cheque, nil
}

// ValuesSum sums the value of the given cheques; zero when there are none.
func (r *ChequeRepository) ValuesSum(ctx context.Context, ids []primitive.ObjectID) (float64, error) {
	sum, err := valuesSum(ctx, r.coll, ids)
	if err != nil {
		return 0, fmt.Errorf("aggregate cheque values: %w", err)
	}
	return sum, nil
}

// Insert stores a new cheque and sets its id.
func (r *ChequeRepository) Insert(ctx context.Context, cheque *models.Cheque) error {
	res, err := r.coll.InsertOne(ctx, cheque)
	if err != nil {
		return fmt.Errorf("failed to insert cheque: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		cheque.ID = id
	}
	return nil
}

// Update applies the given fields and reports whether the cheque exists.
func (r *ChequeRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.D) (bool, error) {
	found, err := updateByID(ctx, r.coll, id, set)
	if err != nil {
		return false, fmt.Errorf("failed to update cheque: %w", err)
	}
	return found, nil
}

// Delete removes the cheque and reports whether it existed.
func (r *ChequeRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	deleted, err := deleteByID(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete cheque: %w", err)
	}
	return deleted, nil
}

// DetachPayee sets payee to null on every cheque that referenced it and
// returns how many cheques were touched.
func (r *ChequeRepository) DetachPayee(ctx context.Context, payee primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.D{{Key: "payee", Value: payee}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "payee", Value: nil}}}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to detach payee from cheques: %w", err)
	}
	return res.ModifiedCount, nil
}

func valuesSum(ctx context.Context, coll *mongo.Collection, ids []primitive.ObjectID) (float64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var result struct {
		ValuesSum float64 `bson:"valuesSum"`
	}
	if _, err := aggregateOne(ctx, coll, query.ValuesSumPipeline(ids), &result); err != nil {
		return 0, err
	}
	return result.ValuesSum, nil
}
