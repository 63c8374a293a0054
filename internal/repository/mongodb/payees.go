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

// PayeeRepository persists cheque payees.
type PayeeRepository struct {
	coll *mongo.Collection
}

// NewPayeeRepository binds the repository to the payees collection of db.
func NewPayeeRepository(db *mongo.Database) *PayeeRepository {
	return &PayeeRepository{coll: db.Collection(query.PayeesCollection)}
}

// List returns the payees matching filter ordered by name.
func (r *PayeeRepository) List(ctx context.Context, filter bson.D) ([]models.Payee, error) {
	payees, err := findAll[models.Payee](ctx, r.coll, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find payees: %w", err)
	}
	return payees, nil
}

// FindByID returns the payee or nil when it does not exist.
func (r *PayeeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payee, error) {
	var payee models.Payee
	found, err := findByID(ctx, r.coll, id, &payee)
	if err != nil {
		return nil, fmt.Errorf("find payee: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &payee, nil
}

// Exists reports whether a payee with id is stored.
func (r *PayeeRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	found, err := existsByID(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to look up payee: %w", err)
	}
	return found, nil
}

// Insert stores a new payee and sets its id.
func (r *PayeeRepository) Insert(ctx context.Context, payee *models.Payee) error {
	res, err := r.coll.InsertOne(ctx, payee)
	if err != nil {
		return fmt.Errorf("failed to insert payee: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		payee.ID = id
	}
	return nil
}

// Update applies the given fields and reports whether the payee exists.
func (r *PayeeRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.D) (bool, error) {
	found, err := updateByID(ctx, r.coll, id, set)
	if err != nil {
		return false, fmt.Errorf("failed to update payee: %w", err)
	}
	return found, nil
}

// Delete removes the payee and reports whether it existed.
func (r *PayeeRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	deleted, err := deleteByID(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete payee: %w", err)
	}
	return deleted, nil
}
