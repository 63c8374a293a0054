package logs

import (
	"context"
	"math"
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

const clockLayout = "15:04"

// Repository is the log storage the service executes pipelines against.
type Repository interface {
	List(ctx context.Context, pipeline mongo.Pipeline) ([]models.LogView, error)
	FindView(ctx context.Context, pipeline mongo.Pipeline) (*models.LogView, error)
	PaymentsSum(ctx context.Context, ids []primitive.ObjectID) (float64, error)
	AttendanceSums(ctx context.Context, ids []primitive.ObjectID) (int64, float64, error)
	Insert(ctx context.Context, entry *models.LogEntry) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.D) (bool, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// WorkerDirectory resolves worker references.
type WorkerDirectory interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// LogService describes the worksheet operations the HTTP layer can perform.
type LogService interface {
	List(ctx context.Context, caller models.Caller, filter models.Filter) (models.LogsPage, error)
	Get(ctx context.Context, caller models.Caller, id string) (*models.LogView, error)
	Create(ctx context.Context, in models.LogInput) (*models.LogEntry, error)
	Update(ctx context.Context, id string, in models.LogInput) error
	Delete(ctx context.Context, id string) error
}

// Service implements LogService.
type Service struct {
	logs         Repository
	workers      WorkerDirectory
	workdayHours float64
	logger       *zap.Logger
	now          func() time.Time
}

// NewService wires a new worksheet service instance.
func NewService(logs Repository, workers WorkerDirectory, workdayHours float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logs:         logs,
		workers:      workers,
		workdayHours: workdayHours,
		logger:       logger,
		now:          time.Now,
	}
}

// List filters the logs visible to caller, newest first, and computes the
// totals over exactly the listed records.
func (s *Service) List(ctx context.Context, caller models.Caller, filter models.Filter) (models.LogsPage, error) {
	pipeline, err := query.ScopeToCaller(query.LogsPipeline(filter), caller)
	if err != nil {
		return models.LogsPage{}, err
	}

	logs, totals, err := s.aggregate(ctx, query.SortByDateDesc(pipeline))
	if err != nil {
		return models.LogsPage{}, err
	}

	s.logger.Debug("logs listed",
		zap.String("caller", caller.ID),
		zap.String("access_level", string(caller.AccessLevel)),
		zap.Int("count", len(logs)))

	return models.LogsPage{
		Logs:      logs,
		LogTotals: totals,
		StartDate: filter.StartDateString(),
		EndDate:   filter.EndDateString(),
		Search:    filter.Search,
	}, nil
}

// aggregate runs the listing pipeline then the two sums keyed by the ids of
// its result. The three reads are independent; an empty listing yields zeros
// without touching the database again.
func (s *Service) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.LogView, models.LogTotals, error) {
	logs, err := s.logs.List(ctx, pipeline)
	if err != nil {
		return nil, models.LogTotals{}, err
	}
	if logs == nil {
		logs = []models.LogView{}
	}

	var totals models.LogTotals
	if len(logs) == 0 {
		return logs, totals, nil
	}

	ids := make([]primitive.ObjectID, 0, len(logs))
	for _, log := range logs {
		ids = append(ids, log.ID)
	}

	if totals.PaymentsSum, err = s.logs.PaymentsSum(ctx, ids); err != nil {
		return nil, models.LogTotals{}, err
	}
	if totals.DaysCount, totals.OTVSum, err = s.logs.AttendanceSums(ctx, ids); err != nil {
		return nil, models.LogTotals{}, err
	}

	return logs, totals, nil
}

// Get returns one log. Callers limited to their own logs get not found for
// anyone else's.
func (s *Service) Get(ctx context.Context, caller models.Caller, id string) (*models.LogView, error) {
	logID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("Log not found")
	}

	pipeline, err := query.ScopeToCaller(query.LogByIDPipeline(logID), caller)
	if err != nil {
		return nil, err
	}

	view, err := s.logs.FindView(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, apperror.NotFound("Log not found")
	}
	return view, nil
}

// Create validates and stores a new log for an existing worker.
func (s *Service) Create(ctx context.Context, in models.LogInput) (*models.LogEntry, error) {
	if blank(in.Date) || blank(in.Worker) {
		return nil, apperror.Validation("Please provide a date and workerId")
	}
	if err := checkHours(in); err != nil {
		return nil, err
	}

	date, err := query.ParseDay(strings.TrimSpace(*in.Date))
	if err != nil {
		return nil, apperror.Validation("date must be YYYY-MM-DD")
	}

	workerID, err := s.resolveWorker(ctx, *in.Worker)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	entry := &models.LogEntry{
		Worker:    workerID,
		Date:      date,
		IsAbsent:  in.IsAbsent != nil && *in.IsAbsent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !entry.IsAbsent {
		entry.StartingTime = strings.TrimSpace(*in.StartingTime)
		entry.FinishingTime = strings.TrimSpace(*in.FinishingTime)
	}
	if in.Payment != nil {
		entry.Payment = *in.Payment
	}
	if in.ExtraNotes != nil {
		entry.ExtraNotes = *in.ExtraNotes
	}

	switch {
	case in.OTV != nil:
		entry.OTV = *in.OTV
	case !entry.IsAbsent:
		entry.OTV = overtime(entry.StartingTime, entry.FinishingTime, s.workdayHours)
	}

	if err := s.logs.Insert(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("log created",
		zap.String("log_id", entry.ID.Hex()),
		zap.String("worker", workerID.Hex()),
		zap.Time("date", date))
	return entry, nil
}

// Update applies a partial change in a single find-and-modify.
func (s *Service) Update(ctx context.Context, id string, in models.LogInput) error {
	if err := checkHours(in); err != nil {
		return err
	}

	logID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NotFound("Log not found")
	}

	set := bson.D{}
	if in.Worker != nil {
		workerID, err := s.resolveWorker(ctx, *in.Worker)
		if err != nil {
			return err
		}
		set = append(set, bson.E{Key: "worker", Value: workerID})
	}
	if in.Date != nil {
		date, err := query.ParseDay(strings.TrimSpace(*in.Date))
		if err != nil {
			return apperror.Validation("date must be YYYY-MM-DD")
		}
		set = append(set, bson.E{Key: "date", Value: date})
	}

	absent := in.IsAbsent != nil && *in.IsAbsent
	if in.IsAbsent != nil {
		set = append(set, bson.E{Key: "isAbsent", Value: absent})
	}
	if !absent {
		if in.StartingTime != nil {
			set = append(set, bson.E{Key: "startingTime", Value: strings.TrimSpace(*in.StartingTime)})
		}
		if in.FinishingTime != nil {
			set = append(set, bson.E{Key: "finishingTime", Value: strings.TrimSpace(*in.FinishingTime)})
		}
	}
	if in.Payment != nil {
		set = append(set, bson.E{Key: "payment", Value: *in.Payment})
	}
	if in.ExtraNotes != nil {
		set = append(set, bson.E{Key: "extraNotes", Value: *in.ExtraNotes})
	}

	switch {
	case in.OTV != nil:
		set = append(set, bson.E{Key: "OTV", Value: *in.OTV})
	case absent:
		set = append(set, bson.E{Key: "OTV", Value: 0.0})
	case !blank(in.StartingTime) && !blank(in.FinishingTime):
		set = append(set, bson.E{Key: "OTV", Value: overtime(*in.StartingTime, *in.FinishingTime, s.workdayHours)})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: s.now().UTC()})

	found, err := s.logs.Update(ctx, logID, set)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NotFound("Log not found")
	}

	s.logger.Info("log updated", zap.String("log_id", id))
	return nil
}

// Delete removes a log after confirming it exists.
func (s *Service) Delete(ctx context.Context, id string) error {
	logID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NotFound("Log not found")
	}

	exists, err := s.logs.Exists(ctx, logID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound("Log not found")
	}

	deleted, err := s.logs.Delete(ctx, logID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("Log not found")
	}

	s.logger.Info("log deleted", zap.String("log_id", id))
	return nil
}

func (s *Service) resolveWorker(ctx context.Context, raw string) (primitive.ObjectID, error) {
	workerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound("Worker not found")
	}

	exists, err := s.workers.Exists(ctx, workerID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !exists {
		return primitive.NilObjectID, apperror.NotFound("Worker not found")
	}
	return workerID, nil
}

// checkHours enforces that a log which is not marked absent carries both a
// starting and a finishing time, each formatted HH:MM.
func checkHours(in models.LogInput) error {
	absent := in.IsAbsent != nil && *in.IsAbsent
	if !absent && (blank(in.StartingTime) || blank(in.FinishingTime)) {
		return apperror.Validation("Please provide a starting time and finishing time")
	}

	for name, value := range map[string]*string{"startingTime": in.StartingTime, "finishingTime": in.FinishingTime} {
		if blank(value) {
			continue
		}
		if _, err := time.Parse(clockLayout, strings.TrimSpace(*value)); err != nil {
			return apperror.Validation(name + " must be HH:MM")
		}
	}
	return nil
}

// overtime returns the hours worked beyond the workday, negative when short.
// A finishing time earlier than the starting time is a shift past midnight.
func overtime(start, finish string, workdayHours float64) float64 {
	from, err := time.Parse(clockLayout, strings.TrimSpace(start))
	if err != nil {
		return 0
	}
	to, err := time.Parse(clockLayout, strings.TrimSpace(finish))
	if err != nil {
		return 0
	}

	worked := to.Sub(from)
	if worked < 0 {
		worked += 24 * time.Hour
	}
	return math.Round((worked.Hours()-workdayHours)*100) / 100
}

func blank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}
