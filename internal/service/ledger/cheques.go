package ledger

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
)

// ChequeRepository stores cheques.
type ChequeRepository interface {
	List(ctx context.Context, pipeline mongo.Pipeline) ([]models.ChequeView, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Cheque, error)
	ValuesSum(ctx context.Context, ids []primitive.ObjectID) (float64, error)
	Insert(ctx context.Context, cheque *models.Cheque) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.D) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// PayeeDirectory resolves payee references.
type PayeeDirectory interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// ChequeService describes the cheque operations exposed over HTTP.
type ChequeService interface {
	List(ctx context.Context, filter models.Filter, payee string) (models.ChequesPage, error)
	Get(ctx context.Context, id string) (*models.Cheque, error)
	Create(ctx context.Context, in models.LedgerInput) (*models.Cheque, error)
	Update(ctx context.Context, id string, in models.LedgerInput) error
	Delete(ctx context.Context, id string) error
}

// ChequesService implements ChequeService.
type ChequesService struct {
	cheques ChequeRepository
	payees  PayeeDirectory
	logger  *zap.Logger
	now     func() time.Time
}

// NewChequesService wires a cheque service.
func NewChequesService(cheques ChequeRepository, payees PayeeDirectory, logger *zap.Logger) *ChequesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChequesService{cheques: cheques, payees: payees, logger: logger, now: time.Now}
}

// List returns cheques matching the filter, newest first, with the sum of
// their values. An empty payee means every payee.
func (s *ChequesService) List(ctx context.Context, filter models.Filter, payee string) (models.ChequesPage, error) {
	var payeeID *primitive.ObjectID
	if payee = strings.TrimSpace(payee); payee != "" {
		oid, err := primitive.ObjectIDFromHex(payee)
		if err != nil {
			return models.ChequesPage{}, apperror.Validation("payee must be a valid id")
		}
		payeeID = &oid
	}

	cheques, err := s.cheques.List(ctx, query.SortByDateDesc(query.ChequesPipeline(filter, payeeID)))
	if err != nil {
		return models.ChequesPage{}, err
	}
	if cheques == nil {
		cheques = []models.ChequeView{}
	}

	page := models.ChequesPage{
		Cheques:   cheques,
		StartDate: filter.StartDateString(),
		EndDate:   filter.EndDateString(),
		Search:    filter.Search,
		Payee:     payee,
	}
	if len(cheques) == 0 {
		return page, nil
	}

	ids := make([]primitive.ObjectID, 0, len(cheques))
	for _, c := range cheques {
		ids = append(ids, c.ID)
	}
	if page.ValuesSum, err = s.cheques.ValuesSum(ctx, ids); err != nil {
		return models.ChequesPage{}, err
	}
	return page, nil
}

func (s *ChequesService) Get(ctx context.Context, id string) (*models.Cheque, error) {
	chequeID, err := parseID(id, "Cheque")
	if err != nil {
		return nil, err
	}

	cheque, err := s.cheques.FindByID(ctx, chequeID)
	if err != nil {
		return nil, err
	}
	if cheque == nil {
		return nil, apperror.NotFound("Cheque not found")
	}
	return cheque, nil
}

func (s *ChequesService) Create(ctx context.Context, in models.LedgerInput) (*models.Cheque, error) {
	if blank(in.SerialNumber) || in.Value == nil || blank(in.Date) {
		return nil, apperror.Validation("Please provide a serialNumber, value and date")
	}

	if *in.Value < 0 {
		return nil, apperror.Validation("value cannot be negative")
	}
	date, err := parseDate(*in.Date)
	if err != nil {
		return nil, err
	}

	cheque := &models.Cheque{
		SerialNumber: strings.TrimSpace(*in.SerialNumber),
		Value:        *in.Value,
		Date:         date,
		CreatedAt:    s.now().UTC(),
	}
	if in.Description != nil {
		cheque.Description = strings.TrimSpace(*in.Description)
	}
	if in.ExtraNotes != nil {
		cheque.ExtraNotes = *in.ExtraNotes
	}

	if !blank(in.Payee) {
		payeeID, err := s.resolvePayee(ctx, *in.Payee)
		if err != nil {
			return nil, err
		}
		cheque.Payee = &payeeID
	}

	if err := s.cheques.Insert(ctx, cheque); err != nil {
		return nil, err
	}
	s.logger.Info("cheque created",
		zap.String("cheque_id", cheque.ID.Hex()),
		zap.String("serial_number", cheque.SerialNumber))
	return cheque, nil
}

// Update applies a partial change. An empty payee clears the reference.
func (s *ChequesService) Update(ctx context.Context, id string, in models.LedgerInput) error {
	chequeID, err := parseID(id, "Cheque")
	if err != nil {
		return err
	}

	set, err := commonFields(in)
	if err != nil {
		return err
	}
	if in.SerialNumber != nil {
		if blank(in.SerialNumber) {
			return apperror.Validation("serialNumber cannot be empty")
		}
		set = append(set, bson.E{Key: "serialNumber", Value: strings.TrimSpace(*in.SerialNumber)})
	}
	if in.Payee != nil {
		if blank(in.Payee) {
			set = append(set, bson.E{Key: "payee", Value: nil})
		} else {
			payeeID, err := s.resolvePayee(ctx, *in.Payee)
			if err != nil {
				return err
			}
			set = append(set, bson.E{Key: "payee", Value: payeeID})
		}
	}
	if len(set) == 0 {
		return apperror.Validation("Nothing to update")
	}

	found, err := s.cheques.Update(ctx, chequeID, set)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NotFound("Cheque not found")
	}
	return nil
}

func (s *ChequesService) Delete(ctx context.Context, id string) error {
	chequeID, err := parseID(id, "Cheque")
	if err != nil {
		return err
	}

	deleted, err := s.cheques.Delete(ctx, chequeID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("Cheque not found")
	}
	s.logger.Info("cheque deleted", zap.String("cheque_id", id))
	return nil
}

func (s *ChequesService) resolvePayee(ctx context.Context, raw string) (primitive.ObjectID, error) {
	payeeID, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound("Payee not found")
	}

	exists, err := s.payees.Exists(ctx, payeeID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !exists {
		return primitive.NilObjectID, apperror.NotFound("Payee not found")
	}
	return payeeID, nil
}
