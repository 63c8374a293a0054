// Package ledger manages the cheque book and the bills register. Both list
// with the worksheet filter (date range plus search) and report the sum of
// the listed values.
package ledger

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
)

// commonFields collects the value, description, date and notes present in a
// patch. It is shared by cheques and bills.
func commonFields(in models.LedgerInput) (bson.D, error) {
	set := bson.D{}
	if in.Value != nil {
		if *in.Value < 0 {
			return nil, apperror.Validation("value cannot be negative")
		}
		set = append(set, bson.E{Key: "value", Value: *in.Value})
	}
	if in.Description != nil {
		set = append(set, bson.E{Key: "description", Value: strings.TrimSpace(*in.Description)})
	}
	if in.Date != nil {
		date, err := parseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "date", Value: date})
	}
	if in.ExtraNotes != nil {
		set = append(set, bson.E{Key: "extraNotes", Value: *in.ExtraNotes})
	}
	return set, nil
}

func parseDate(raw string) (time.Time, error) {
	date, err := query.ParseDay(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperror.Validation("date must be YYYY-MM-DD")
	}
	return date, nil
}

func blank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}

func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(what + " not found")
	}
	return oid, nil
}
