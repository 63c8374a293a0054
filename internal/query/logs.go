package query

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
)

// Collection names shared by the pipelines and the repository.
const (
	LogsCollection     = "logs"
	UsersCollection    = "users"
	PayeesCollection   = "payees"
	ChequesCollection  = "cheques"
	BillsCollection    = "bills"
	SessionsCollection = "sessions"
)

// LogsPipeline builds the listing pipeline for worksheet logs: an inclusive
// date range on `date`, the worker name join, then a case-insensitive partial
// match of the search term on that name. Absent bounds and an empty search
// add no stage.
func LogsPipeline(f models.Filter) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if match := DateMatch("date", f); match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	pipeline = append(pipeline, workerJoin()...)

	if f.Search != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: "workerName", Value: SearchRegex(f.Search)},
		}}})
	}

	return pipeline
}

// LogByIDPipeline selects a single log with its worker name joined.
func LogByIDPipeline(id primitive.ObjectID) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
	}
	return append(pipeline, workerJoin()...)
}

// ScopeToCaller prepends a match restricting logs to the caller's own records
// when the caller is not elevated. Elevated callers get the pipeline back
// unchanged. The input slice is never modified.
func ScopeToCaller(pipeline mongo.Pipeline, caller models.Caller) (mongo.Pipeline, error) {
	if caller.AccessLevel.Elevated() {
		return pipeline, nil
	}

	workerID, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		return nil, apperror.Unauthorized("invalid caller identity")
	}

	scoped := make(mongo.Pipeline, 0, len(pipeline)+1)
	scoped = append(scoped, bson.D{{Key: "$match", Value: bson.D{{Key: "worker", Value: workerID}}}})
	return append(scoped, pipeline...), nil
}

// SortByDateDesc appends the newest-first ordering used by every listing.
func SortByDateDesc(pipeline mongo.Pipeline) mongo.Pipeline {
	return append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "date", Value: -1},
		{Key: "_id", Value: -1},
	}}})
}

// PaymentsSumPipeline sums `payment` over exactly the given log ids.
func PaymentsSumPipeline(ids []primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "paymentsSum", Value: bson.D{{Key: "$sum", Value: "$payment"}}},
		}}},
	}
}

// AttendanceSumsPipeline counts the present days and sums `OTV` over exactly
// the given log ids.
func AttendanceSumsPipeline(ids []primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
			{Key: "isAbsent", Value: bson.D{{Key: "$ne", Value: true}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "daysCount", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "OTVSum", Value: bson.D{{Key: "$sum", Value: "$OTV"}}},
		}}},
	}
}

// WorkerDigestPipeline groups the logs dated in [start, end) per worker.
func WorkerDigestPipeline(start, end time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "date", Value: bson.D{
			{Key: "$gte", Value: start},
			{Key: "$lt", Value: end},
		}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$worker"},
			{Key: "paymentsSum", Value: bson.D{{Key: "$sum", Value: "$payment"}}},
			{Key: "daysCount", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{"$isAbsent", 0, 1}},
			}}}},
			{Key: "absentCount", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{"$isAbsent", 1, 0}},
			}}}},
			{Key: "OTVSum", Value: bson.D{{Key: "$sum", Value: "$OTV"}}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "workerInfo"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$workerInfo"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "workerName", Value: fullNameExpr("$workerInfo")}}}},
		{{Key: "$project", Value: bson.D{{Key: "workerInfo", Value: 0}}}},
		{{Key: "$sort", Value: bson.D{{Key: "workerName", Value: 1}}}},
	}
}

// DateMatch returns the inclusive day range condition on field, or nil when
// the filter has no bound. The end bound covers the whole end day.
func DateMatch(field string, f models.Filter) bson.D {
	var cond bson.D
	if f.StartDate != nil {
		cond = append(cond, bson.E{Key: "$gte", Value: *f.StartDate})
	}
	if f.EndDate != nil {
		cond = append(cond, bson.E{Key: "$lt", Value: f.EndDate.AddDate(0, 0, 1)})
	}
	if cond == nil {
		return nil
	}
	return bson.D{{Key: field, Value: cond}}
}

// SearchRegex matches term literally anywhere in a field, ignoring case.
func SearchRegex(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

func workerJoin() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "worker"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "workerInfo"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$workerInfo"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "workerName", Value: fullNameExpr("$workerInfo")},
			{Key: "workerUsername", Value: "$workerInfo.username"},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "workerInfo", Value: 0}}}},
	}
}

func fullNameExpr(prefix string) bson.D {
	return bson.D{{Key: "$trim", Value: bson.D{{Key: "input", Value: bson.D{{Key: "$concat", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{prefix + ".firstName", ""}}},
		" ",
		bson.D{{Key: "$ifNull", Value: bson.A{prefix + ".lastName", ""}}},
	}}}}}}}
}
