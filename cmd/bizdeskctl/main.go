package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/cli"
	"github.com/mamadbah2/bizdesk/internal/config"
	"github.com/mamadbah2/bizdesk/internal/repository/mongodb"
	"github.com/mamadbah2/bizdesk/internal/repository/sheets"
	"github.com/mamadbah2/bizdesk/internal/scheduler"
	logsvc "github.com/mamadbah2/bizdesk/internal/service/logs"
	reportingsvc "github.com/mamadbah2/bizdesk/internal/service/reporting"
	usersvc "github.com/mamadbah2/bizdesk/internal/service/users"
	whatsappsvc "github.com/mamadbah2/bizdesk/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/bizdesk/pkg/clients/whatsapp"
	"github.com/mamadbah2/bizdesk/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("BIZDESK_ENV_FILE"))
	if err != nil {
		return err
	}

	baseLogger, err := logger.New(cfg.Server.IsDevelopment())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = baseLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	store, err := mongodb.NewMongoDBStore(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := store.EnsureIndexes(connectCtx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	reportingService := reportingsvc.NewService(store.Logs(), location, baseLogger.Named("svc.reporting"))

	var messagingService whatsappsvc.MessagingService
	if cfg.WhatsApp.Enabled() {
		messagingService = whatsappsvc.NewMetaWhatsAppService(whatsappclient.NewClient(cfg.WhatsApp), baseLogger.Named("svc.whatsapp"))
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(connectCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			return fmt.Errorf("init sheets repository: %w", err)
		}
		sheetsRepo = repo
	}

	// The scheduler is never started here; it only runs the digest on demand.
	runner, err := scheduler.NewScheduler(*cfg, reportingService, messagingService, sheetsRepo, baseLogger.Named("scheduler"))
	if err != nil {
		return err
	}

	app := &cli.App{
		Users:   usersvc.NewService(store.Users(), store.Sessions(), baseLogger.Named("svc.users")),
		Logs:    logsvc.NewService(store.Logs(), store.Users(), cfg.Worksheets.WorkdayHours, baseLogger.Named("svc.logs")),
		Digests: reportingService,
		Runner:  runner,
	}

	baseLogger.Debug("bizdeskctl ready", zap.String("db", cfg.MongoDB.DBName))

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
