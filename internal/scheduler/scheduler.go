package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/config"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/repository/sheets"
	"github.com/mamadbah2/bizdesk/internal/service/reporting"
	"github.com/mamadbah2/bizdesk/internal/service/whatsapp"
)

// DigestGenerator builds the weekly worksheet digest.
type DigestGenerator interface {
	GenerateWeeklyDigest(ctx context.Context, now time.Time) (models.WeeklyDigest, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc DigestGenerator
	messagingSvc whatsapp.MessagingService
	sheetsRepo   sheets.Repository
	cfg          config.Config
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduler creates a new scheduler instance. messagingSvc and sheetsRepo
// may be nil, in which case that delivery is skipped.
func NewScheduler(cfg config.Config, reportingSvc DigestGenerator, messagingSvc whatsapp.MessagingService, sheetsRepo sheets.Repository, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Reporting.Timezone, err)
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		reportingSvc: reportingSvc,
		messagingSvc: messagingSvc,
		sheetsRepo:   sheetsRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Start registers the weekly digest on the configured schedule and starts
// the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly digest %q: %w", s.cfg.Reporting.CronSchedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunWeeklyDigest(ctx); err != nil {
		s.logger.Error("weekly digest failed", zap.Error(err))
	}
}

// RunWeeklyDigest generates the digest now and hands it to every configured
// sink. A failing sink does not prevent the others from running.
func (s *Scheduler) RunWeeklyDigest(ctx context.Context) error {
	s.logger.Info("generating weekly digest")

	digest, err := s.reportingSvc.GenerateWeeklyDigest(ctx, s.now())
	if err != nil {
		return err
	}

	var errs []error

	if s.messagingSvc != nil {
		req := models.OutboundMessageRequest{
			To:      s.cfg.WhatsApp.RecipientID,
			Message: reporting.FormatDigest(digest),
		}
		if err := s.messagingSvc.SendOutbound(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("send digest: %w", err))
		} else {
			s.logger.Info("weekly digest sent", zap.Int("workers", len(digest.Workers)))
		}
	}

	if s.sheetsRepo != nil {
		if err := s.sheetsRepo.AppendRows(ctx, s.cfg.Sheets.DigestRange, reporting.DigestRows(digest)); err != nil {
			errs = append(errs, fmt.Errorf("append digest rows: %w", err))
		} else {
			s.logger.Info("weekly digest appended to sheet", zap.String("range", s.cfg.Sheets.DigestRange))
		}
	}

	return errors.Join(errs...)
}
