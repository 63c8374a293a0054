package payees

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

// Repository stores payees.
type Repository interface {
	List(ctx context.Context, filter bson.D) ([]models.Payee, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payee, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Insert(ctx context.Context, payee *models.Payee) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.D) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// ChequeDetacher clears the payee reference of cheques.
type ChequeDetacher interface {
	DetachPayee(ctx context.Context, payee primitive.ObjectID) (int64, error)
}

// PayeeService describes the payee operations exposed over HTTP.
type PayeeService interface {
	List(ctx context.Context, search string) ([]models.Payee, error)
	Get(ctx context.Context, id string) (*models.Payee, error)
	Create(ctx context.Context, in models.PayeeInput) (*models.Payee, error)
	Update(ctx context.Context, id string, in models.PayeeInput) error
	Delete(ctx context.Context, id string) error
}

// Service implements PayeeService.
type Service struct {
	payees  Repository
	cheques ChequeDetacher
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a payee service.
func NewService(payees Repository, cheques ChequeDetacher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{payees: payees, cheques: cheques, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context, search string) ([]models.Payee, error) {
	payees, err := s.payees.List(ctx, query.PayeesQuery(strings.TrimSpace(search)))
	if err != nil {
		return nil, err
	}
	if payees == nil {
		payees = []models.Payee{}
	}
	return payees, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Payee, error) {
	payeeID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("Payee not found")
	}

	payee, err := s.payees.FindByID(ctx, payeeID)
	if err != nil {
		return nil, err
	}
	if payee == nil {
		return nil, apperror.NotFound("Payee not found")
	}
	return payee, nil
}

func (s *Service) Create(ctx context.Context, in models.PayeeInput) (*models.Payee, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperror.Validation("Please provide a name")
	}

	payee := &models.Payee{
		Name:      strings.TrimSpace(*in.Name),
		CreatedAt: s.now().UTC(),
	}
	if in.Email != nil {
		payee.Email = strings.TrimSpace(*in.Email)
	}
	if in.PhoneNumber != nil {
		payee.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.ExtraNotes != nil {
		payee.ExtraNotes = *in.ExtraNotes
	}

	if err := s.payees.Insert(ctx, payee); err != nil {
		return nil, err
	}
	s.logger.Info("payee created", zap.String("payee_id", payee.ID.Hex()))
	return payee, nil
}

func (s *Service) Update(ctx context.Context, id string, in models.PayeeInput) error {
	payeeID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NotFound("Payee not found")
	}

	set := bson.D{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperror.Validation("name cannot be empty")
		}
		set = append(set, bson.E{Key: "name", Value: name})
	}
	if in.Email != nil {
		set = append(set, bson.E{Key: "email", Value: strings.TrimSpace(*in.Email)})
	}
	if in.PhoneNumber != nil {
		set = append(set, bson.E{Key: "phoneNumber", Value: strings.TrimSpace(*in.PhoneNumber)})
	}
	if in.ExtraNotes != nil {
		set = append(set, bson.E{Key: "extraNotes", Value: *in.ExtraNotes})
	}
	if len(set) == 0 {
		return apperror.Validation("Nothing to update")
	}

	found, err := s.payees.Update(ctx, payeeID, set)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NotFound("Payee not found")
	}
	return nil
}

// Delete removes the payee and clears it from every cheque that referenced
// it. Cheques themselves are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	payeeID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NotFound("Payee not found")
	}

	exists, err := s.payees.Exists(ctx, payeeID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound("Payee not found")
	}

	if _, err := s.payees.Delete(ctx, payeeID); err != nil {
		return err
	}

	detached, err := s.cheques.DetachPayee(ctx, payeeID)
	if err != nil {
		return err
	}

	s.logger.Info("payee deleted",
		zap.String("payee_id", id),
		zap.Int64("cheques_detached", detached))
	return nil
}
