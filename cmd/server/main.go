package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/config"
	"github.com/mamadbah2/bizdesk/internal/repository/mongodb"
	"github.com/mamadbah2/bizdesk/internal/repository/sheets"
	"github.com/mamadbah2/bizdesk/internal/scheduler"
	"github.com/mamadbah2/bizdesk/internal/server/handlers"
	"github.com/mamadbah2/bizdesk/internal/server/router"
	authsvc "github.com/mamadbah2/bizdesk/internal/service/auth"
	ledgersvc "github.com/mamadbah2/bizdesk/internal/service/ledger"
	logsvc "github.com/mamadbah2/bizdesk/internal/service/logs"
	payeesvc "github.com/mamadbah2/bizdesk/internal/service/payees"
	reportingsvc "github.com/mamadbah2/bizdesk/internal/service/reporting"
	usersvc "github.com/mamadbah2/bizdesk/internal/service/users"
	whatsappsvc "github.com/mamadbah2/bizdesk/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/bizdesk/pkg/clients/whatsapp"
	"github.com/mamadbah2/bizdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.IsDevelopment()))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()

	store, err := mongodb.NewMongoDBStore(initCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := store.EnsureIndexes(initCtx); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid reporting timezone", zap.Error(err))
	}

	authService := authsvc.NewService(store.Users(), store.Sessions(), cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, baseLogger.Named("svc.auth"))
	logService := logsvc.NewService(store.Logs(), store.Users(), cfg.Worksheets.WorkdayHours, baseLogger.Named("svc.logs"))
	payeeService := payeesvc.NewService(store.Payees(), store.Cheques(), baseLogger.Named("svc.payees"))
	chequeService := ledgersvc.NewChequesService(store.Cheques(), store.Payees(), baseLogger.Named("svc.cheques"))
	billService := ledgersvc.NewBillsService(store.Bills(), baseLogger.Named("svc.bills"))
	userService := usersvc.NewService(store.Users(), store.Sessions(), baseLogger.Named("svc.users"))
	reportingService := reportingsvc.NewService(store.Logs(), location, baseLogger.Named("svc.reporting"))

	// Both digest sinks are optional; they stay nil interfaces when unconfigured.
	var messagingService whatsappsvc.MessagingService
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingService = whatsappsvc.NewMetaWhatsAppService(whatsClient, baseLogger.Named("svc.whatsapp"))
		baseLogger.Info("whatsapp delivery enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, digest delivery by message disabled")
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(initCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
	} else {
		baseLogger.Warn("google sheets not configured, digest export disabled")
	}

	sched, err := scheduler.NewScheduler(*cfg, reportingService, messagingService, sheetsRepo, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(router.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Logs:    handlers.NewLogHandler(logService, baseLogger.Named("handlers.logs")),
		Payees:  handlers.NewPayeeHandler(payeeService),
		Cheques: handlers.NewChequeHandler(chequeService),
		Bills:   handlers.NewBillHandler(billService),
		Users:   handlers.NewUserHandler(userService),
		Reports: handlers.NewReportHandler(reportingService, sched, messagingService, baseLogger.Named("handlers.reports")),
	}, authService, router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Development:    cfg.Server.IsDevelopment(),
	}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
