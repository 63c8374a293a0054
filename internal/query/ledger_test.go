package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
)

func TestChequesPipeline_PayeeAndRange(t *testing.T) {
	start := day(t, "2024-05-01")
	payee := primitive.NewObjectID()

	p := ChequesPipeline(models.Filter{StartDate: &start, Search: "rent"}, &payee)

	first := p[0][0].Value.(bson.D).Map()
	assert.Equal(t, payee, first["payee"])
	assert.Contains(t, first, "date")

	last := p[len(p)-1][0].Value.(bson.D)
	require.Equal(t, "$or", last[0].Key)
	assert.Len(t, last[0].Value.(bson.A), 3)
}

func TestChequesPipeline_NoFilter(t *testing.T) {
	p := ChequesPipeline(models.Filter{}, nil)
	assert.Equal(t, []string{"$lookup", "$unwind", "$addFields", "$project"}, stageNames(p))
}

func TestBillsQuery(t *testing.T) {
	assert.Equal(t, bson.D{}, BillsQuery(models.Filter{}))

	q := BillsQuery(models.Filter{Search: "fuel"}).Map()
	assert.Contains(t, q, "$or")
	assert.NotContains(t, q, "date")
}

func TestPayeesAndUsersQuery(t *testing.T) {
	assert.Equal(t, bson.D{}, PayeesQuery(""))
	assert.Equal(t, bson.D{}, UsersQuery(""))

	or := PayeesQuery("acme")[0].Value.(bson.A)
	require.Len(t, or, 2)
	assert.Equal(t, bson.D{{Key: "name", Value: primitive.Regex{Pattern: "acme", Options: "i"}}}, or[0])

	or = UsersQuery("Jo")[0].Value.(bson.A)
	assert.Equal(t, bson.D{{Key: "lastName", Value: primitive.Regex{Pattern: "Jo", Options: "i"}}}, or[1])
}

func TestValuesSumPipeline(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID()}
	p := ValuesSumPipeline(ids)
	assert.Equal(t, []string{"$match", "$group"}, stageNames(p))
}
