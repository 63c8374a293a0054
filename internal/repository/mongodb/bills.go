package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
)

// BillRepository persists bills.
type BillRepository struct {
	coll *mongo.Collection
}

// NewBillRepository binds the repository to the bills collection of db.
func NewBillRepository(db *mongo.Database) *BillRepository {
	return &BillRepository{coll: db.Collection(query.BillsCollection)}
}

// List returns the bills matching filter, newest first.
func (r *BillRepository) List(ctx context.Context, filter bson.D) ([]models.Bill, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	bills, err := findAll[models.Bill](ctx, r.coll, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find bills: %w", err)
	}
	return bills, nil
}

// FindByID returns the bill or nil when it does not exist.
func (r *BillRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bill, error) {
	var bill models.Bill
	found, err := findByID(ctx, r.coll, id, &bill)
	if err != nil {
		return nil, fmt.Errorf("find bill: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &bill, nil
}

// ValuesSum sums the value of the given bills; zero when there are none.
func (r *BillRepository) ValuesSum(ctx context.Context, ids []primitive.ObjectID) (float64, error) {
	sum, err := valuesSum(ctx, r.coll, ids)
	if err != nil {
		return 0, fmt.Errorf("aggregate bill values: %w", err)
	}
	return sum, nil
}

// Insert stores a new bill and sets its id.
func (r *BillRepository) Insert(ctx context.Context, bill *models.Bill) error {
	res, err := r.coll.InsertOne(ctx, bill)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		bill.ID = id
	}
	return nil
}

// Update applies the given fields and reports whether the bill exists.
func (r *BillRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.D) (bool, error) {
	found, err := updateByID(ctx, r.coll, id, set)
	if err != nil {
		return false, fmt.Errorf("failed to update bill: %w", err)
	}
	return found, nil
}

// Delete removes the bill and reports whether it existed.
func (r *BillRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	deleted, err := deleteByID(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete bill: %w", err)
	}
	return deleted, nil
}
