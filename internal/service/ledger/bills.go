package ledger

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
)

// BillRepository stores bills.
type BillRepository interface {
	List(ctx context.Context, filter bson.D) ([]models.Bill, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bill, error)
	ValuesSum(ctx context.Context, ids []primitive.ObjectID) (float64, error)
	Insert(ctx context.Context, bill *models.Bill) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.D) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// BillService describes the bill operations exposed over HTTP.
type BillService interface {
	List(ctx context.Context, filter models.Filter) (models.BillsPage, error)
	Get(ctx context.Context, id string) (*models.Bill, error)
	Create(ctx context.Context, in models.LedgerInput) (*models.Bill, error)
	Update(ctx context.Context, id string, in models.LedgerInput) error
	Delete(ctx context.Context, id string) error
}

// BillsService implements BillService.
type BillsService struct {
	bills  BillRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewBillsService wires a bill service.
func NewBillsService(bills BillRepository, logger *zap.Logger) *BillsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillsService{bills: bills, logger: logger, now: time.Now}
}

func (s *BillsService) List(ctx context.Context, filter models.Filter) (models.BillsPage, error) {
	bills, err := s.bills.List(ctx, query.BillsQuery(filter))
	if err != nil {
		return models.BillsPage{}, err
	}
	if bills == nil {
		bills = []models.Bill{}
	}

	page := models.BillsPage{
		Bills:     bills,
		StartDate: filter.StartDateString(),
		EndDate:   filter.EndDateString(),
		Search:    filter.Search,
	}
	if len(bills) == 0 {
		return page, nil
	}

	ids := make([]primitive.ObjectID, 0, len(bills))
	for _, b := range bills {
		ids = append(ids, b.ID)
	}
	if page.ValuesSum, err = s.bills.ValuesSum(ctx, ids); err != nil {
		return models.BillsPage{}, err
	}
	return page, nil
}

func (s *BillsService) Get(ctx context.Context, id string) (*models.Bill, error) {
	billID, err := parseID(id, "Bill")
	if err != nil {
		return nil, err
	}

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NotFound("Bill not found")
	}
	return bill, nil
}

func (s *BillsService) Create(ctx context.Context, in models.LedgerInput) (*models.Bill, error) {
	if in.Value == nil || blank(in.Description) || blank(in.Date) {
		return nil, apperror.Validation("Please provide a value, description and date")
	}

	if *in.Value < 0 {
		return nil, apperror.Validation("value cannot be negative")
	}
	date, err := parseDate(*in.Date)
	if err != nil {
		return nil, err
	}

	bill := &models.Bill{
		Value:       *in.Value,
		Description: strings.TrimSpace(*in.Description),
		Date:        date,
		CreatedAt:   s.now().UTC(),
	}
	if in.ExtraNotes != nil {
		bill.ExtraNotes = *in.ExtraNotes
	}

	if err := s.bills.Insert(ctx, bill); err != nil {
		return nil, err
	}
	s.logger.Info("bill created", zap.String("bill_id", bill.ID.Hex()))
	return bill, nil
}

func (s *BillsService) Update(ctx context.Context, id string, in models.LedgerInput) error {
	billID, err := parseID(id, "Bill")
	if err != nil {
		return err
	}

	set, err := commonFields(in)
	if err != nil {
		return err
	}
	if in.Description != nil && blank(in.Description) {
		return apperror.Validation("description cannot be empty")
	}
	if len(set) == 0 {
		return apperror.Validation("Nothing to update")
	}

	found, err := s.bills.Update(ctx, billID, set)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NotFound("Bill not found")
	}
	return nil
}

func (s *BillsService) Delete(ctx context.Context, id string) error {
	billID, err := parseID(id, "Bill")
	if err != nil {
		return err
	}

	deleted, err := s.bills.Delete(ctx, billID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("Bill not found")
	}
	s.logger.Info("bill deleted", zap.String("bill_id", id))
	return nil
}
