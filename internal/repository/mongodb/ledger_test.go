package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
)

func TestChequeRepository_DetachPayee(t *testing.T) {
	mt := newMock(t)

	mt.Run("reports modified cheques", func(mt *mtest.T) {
		repo := NewChequeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(2)},
			bson.E{Key: "nModified", Value: int32(2)},
		))

		n, err := repo.DetachPayee(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}

func TestChequeRepository_ValuesSum(t *testing.T) {
	mt := newMock(t)

	mt.Run("sums values", func(mt *mtest.T) {
		repo := NewChequeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bizdesk.cheques", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: nil}, {Key: "valuesSum", Value: int32(700)}}))

		sum, err := repo.ValuesSum(context.Background(), []primitive.ObjectID{primitive.NewObjectID()})
		require.NoError(t, err)
		assert.Equal(t, 700.0, sum)
	})
}

func TestPayeeRepository_DeleteMissing(t *testing.T) {
	mt := newMock(t)

	mt.Run("nothing deleted", func(mt *mtest.T) {
		repo := NewPayeeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))

		deleted, err := repo.Delete(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestUserRepository_Insert(t *testing.T) {
	mt := newMock(t)

	mt.Run("duplicate username", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: bizdesk.users index: username_1",
		}))

		err := repo.Insert(context.Background(), &models.User{Username: "ali"})
		assert.ErrorIs(t, err, ErrDuplicateUsername)
	})

	mt.Run("find by username not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bizdesk.users", mtest.FirstBatch))

		user, err := repo.FindByUsername(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}
