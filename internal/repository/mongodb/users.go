package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
)

// ErrDuplicateUsername is returned when an insert or update collides with
// the unique username index.
var ErrDuplicateUsername = errors.New("username already exists")

// UserRepository persists user accounts.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository binds the repository to the users collection of db.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(query.UsersCollection)}
}

// List returns the users matching filter ordered by name.
func (r *UserRepository) List(ctx context.Context, filter bson.D) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "firstName", Value: 1}, {Key: "lastName", Value: 1}})
	users, err := findAll[models.User](ctx, r.coll, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

// FindByID returns the user or nil when it does not exist.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	found, err := findByID(ctx, r.coll, id, &user)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

// FindByUsername returns the user or nil when it does not exist.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// Exists reports whether a user with id is stored.
func (r *UserRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	found, err := existsByID(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return found, nil
}

// Insert stores a new user and sets its id.
func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	res, err := r.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

// Update applies the given fields and reports whether the user exists.
func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.D) (bool, error) {
	found, err := updateByID(ctx, r.coll, id, set)
	if mongo.IsDuplicateKeyError(err) {
		return false, ErrDuplicateUsername
	}
	if err != nil {
		return false, fmt.Errorf("failed to update user: %w", err)
	}
	return found, nil
}

// Delete removes the user and reports whether it existed.
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	deleted, err := deleteByID(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return deleted, nil
}
