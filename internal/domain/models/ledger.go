package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payee receives cheques.
type Payee struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	ExtraNotes  string             `bson:"extraNotes,omitempty" json:"extraNotes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// PayeeInput carries payee fields of a create or update request.
type PayeeInput struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	ExtraNotes  *string `json:"extraNotes"`
}

// Cheque is a written cheque. Payee is nil once its payee has been deleted.
type Cheque struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	SerialNumber string              `bson:"serialNumber" json:"serialNumber"`
	Value        float64             `bson:"value" json:"value"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Payee        *primitive.ObjectID `bson:"payee" json:"payee"`
	Date         time.Time           `bson:"date" json:"date"`
	ExtraNotes   string              `bson:"extraNotes,omitempty" json:"extraNotes,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
}

// ChequeView is a Cheque joined with its payee name.
type ChequeView struct {
	Cheque    `bson:",inline"`
	PayeeName string `bson:"payeeName" json:"payeeName"`
}

// Bill is an expense record.
type Bill struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Value       float64            `bson:"value" json:"value"`
	Description string             `bson:"description" json:"description"`
	Date        time.Time          `bson:"date" json:"date"`
	ExtraNotes  string             `bson:"extraNotes,omitempty" json:"extraNotes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// LedgerInput carries cheque and bill fields of a create or update request.
// SerialNumber and Payee only apply to cheques.
type LedgerInput struct {
	SerialNumber *string  `json:"serialNumber"`
	Value        *float64 `json:"value"`
	Description  *string  `json:"description"`
	Payee        *string  `json:"payee"`
	Date         *string  `json:"date"`
	ExtraNotes   *string  `json:"extraNotes"`
}

// ChequesPage is the assembled response of a cheque listing.
type ChequesPage struct {
	Cheques   []ChequeView `json:"cheques"`
	ValuesSum float64      `json:"valuesSum"`
	StartDate *string      `json:"startDate"`
	EndDate   *string      `json:"endDate"`
	Search    string       `json:"search"`
	Payee     string       `json:"payee,omitempty"`
}

// BillsPage is the assembled response of a bill listing.
type BillsPage struct {
	Bills     []Bill  `json:"bills"`
	ValuesSum float64 `json:"valuesSum"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Search    string  `json:"search"`
}
