package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LogEntry is one attendance/work record for a worker on a date.
type LogEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Worker        primitive.ObjectID `bson:"worker" json:"worker"`
	Date          time.Time          `bson:"date" json:"date"`
	IsAbsent      bool               `bson:"isAbsent" json:"isAbsent"`
	StartingTime  string             `bson:"startingTime,omitempty" json:"startingTime,omitempty"`
	FinishingTime string             `bson:"finishingTime,omitempty" json:"finishingTime,omitempty"`
	Payment       float64            `bson:"payment" json:"payment"`
	OTV           float64            `bson:"OTV" json:"OTV"`
	ExtraNotes    string             `bson:"extraNotes,omitempty" json:"extraNotes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LogView is a LogEntry joined with the name of its worker.
type LogView struct {
	LogEntry       `bson:",inline"`
	WorkerName     string `bson:"workerName" json:"workerName"`
	WorkerUsername string `bson:"workerUsername,omitempty" json:"workerUsername,omitempty"`
}

// LogInput carries the fields of a create or update request. Nil pointers
// are fields the caller did not send.
type LogInput struct {
	Worker        *string  `json:"worker"`
	Date          *string  `json:"date"`
	IsAbsent      *bool    `json:"isAbsent"`
	StartingTime  *string  `json:"startingTime"`
	FinishingTime *string  `json:"finishingTime"`
	Payment       *float64 `json:"payment"`
	OTV           *float64 `json:"OTV"`
	ExtraNotes    *string  `json:"extraNotes"`
}

// LogTotals is the aggregate computed over a filtered set of logs.
type LogTotals struct {
	PaymentsSum float64 `json:"paymentsSum"`
	DaysCount   int64   `json:"daysCount"`
	OTVSum      float64 `json:"OTVSum"`
}

// LogsPage is the assembled response of a log listing.
type LogsPage struct {
	Logs []LogView `json:"logs"`
	LogTotals
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Search    string  `json:"search"`
}
