package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkerDigest aggregates one worker's logs over a reporting period.
type WorkerDigest struct {
	Worker      primitive.ObjectID `bson:"_id" json:"worker"`
	WorkerName  string             `bson:"workerName" json:"workerName"`
	PaymentsSum float64            `bson:"paymentsSum" json:"paymentsSum"`
	DaysCount   int64              `bson:"daysCount" json:"daysCount"`
	AbsentCount int64              `bson:"absentCount" json:"absentCount"`
	OTVSum      float64            `bson:"OTVSum" json:"OTVSum"`
}

// WeeklyDigest is the periodic worksheet summary sent to managers.
type WeeklyDigest struct {
	Start   time.Time      `json:"start"`
	End     time.Time      `json:"end"`
	Workers []WorkerDigest `json:"workers"`
	Totals  LogTotals      `json:"totals"`
}
