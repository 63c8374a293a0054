package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
)

// ChequesPipeline lists cheques dated within the filter range, optionally for
// one payee, with the payee name joined and matched against the search term
// together with serial number and description.
func ChequesPipeline(f models.Filter, payee *primitive.ObjectID) mongo.Pipeline {
	match := DateMatch("date", f)
	if payee != nil {
		match = append(match, bson.E{Key: "payee", Value: *payee})
	}

	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: PayeesCollection},
			{Key: "localField", Value: "payee"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "payeeInfo"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$payeeInfo"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "payeeName", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$payeeInfo.name", ""}}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "payeeInfo", Value: 0}}}},
	)

	if f.Search != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: AnyFieldMatches(f.Search,
			"payeeName", "serialNumber", "description")}})
	}

	return pipeline
}

// BillsQuery filters bills dated within the range whose description or
// notes contain the search term.
func BillsQuery(f models.Filter) bson.D {
	query := DateMatch("date", f)
	if f.Search != "" {
		query = append(query, AnyFieldMatches(f.Search, "description", "extraNotes")...)
	}
	if query == nil {
		return bson.D{}
	}
	return query
}

// ValuesSumPipeline sums `value` over exactly the given ids.
func ValuesSumPipeline(ids []primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "valuesSum", Value: bson.D{{Key: "$sum", Value: "$value"}}},
		}}},
	}
}

// PayeesQuery matches payees whose name or notes contain the search term.
func PayeesQuery(search string) bson.D {
	if search == "" {
		return bson.D{}
	}
	return AnyFieldMatches(search, "name", "extraNotes")
}

// UsersQuery matches users whose first or last name contains the search term.
func UsersQuery(search string) bson.D {
	if search == "" {
		return bson.D{}
	}
	return AnyFieldMatches(search, "firstName", "lastName")
}

// AnyFieldMatches builds an $or of case-insensitive partial matches.
func AnyFieldMatches(search string, fields ...string) bson.D {
	or := make(bson.A, 0, len(fields))
	for _, field := range fields {
		or = append(or, bson.D{{Key: field, Value: SearchRegex(search)}})
	}
	return bson.D{{Key: "$or", Value: or}}
}
