package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/config"
	appHTTP "github.com/sitecrew/timesheet-backend/internal/handler/http"
	"github.com/sitecrew/timesheet-backend/internal/pkg/cron"
	"github.com/sitecrew/timesheet-backend/internal/pkg/database"
	"github.com/sitecrew/timesheet-backend/internal/pkg/jwt"
	"github.com/sitecrew/timesheet-backend/internal/repository/postgresql"
	consolidationService "github.com/sitecrew/timesheet-backend/internal/service/consolidation"
	leaveService "github.com/sitecrew/timesheet-backend/internal/service/leave"
	ownershipService "github.com/sitecrew/timesheet-backend/internal/service/ownership"
	timesheetService "github.com/sitecrew/timesheet-backend/internal/service/timesheet"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	dsn := cfg.DatabaseURL()
	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(dsn); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	timesheetRepo := postgresql.NewTimesheetRepository(db)
	entryRepo := postgresql.NewDailyEntryRepository(db)
	ownershipRepo := postgresql.NewOwnershipRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	workerRepo := postgresql.NewWorkerRepository(db)
	siteRepo := postgresql.NewSiteRepository(db)
	crewRepo := postgresql.NewCrewRepository(db)
	affectationRepo := postgresql.NewAffectationRepository(db)
	closedPeriodRepo := postgresql.NewClosedPeriodRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	registry := ownershipService.NewRegistry(transactor, ownershipRepo, workerRepo, crewRepo, cfg.Timesheet.OwnershipLegacyMode)
	injector := leaveService.NewInjector(transactor, timesheetRepo, entryRepo, leaveRequestRepo)
	timesheetSvc := timesheetService.NewTimesheetService(
		transactor,
		timesheetRepo,
		entryRepo,
		workerRepo,
		siteRepo,
		closedPeriodRepo,
		registry,
		injector,
		cfg.Timesheet.AutoValidateAfterDays,
	)
	consolidationSvc := consolidationService.NewConsolidationService(
		transactor,
		timesheetRepo,
		entryRepo,
		workerRepo,
		siteRepo,
		crewRepo,
		affectationRepo,
		ownershipRepo,
		cfg.Timesheet.OwnershipLegacyMode,
	)
	periodSvc := consolidationService.NewPeriodService(transactor, timesheetRepo, closedPeriodRepo, consolidationSvc, injector)

	ownershipHandler := appHTTP.NewOwnershipHandler(registry)
	timesheetHandler := appHTTP.NewTimesheetHandler(timesheetSvc)
	consolidationHandler := appHTTP.NewConsolidationHandler(consolidationSvc, periodSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.CORSOrigins,
			Env:            cfg.App.Env,
			Version:        version,
		},
		JWTService,
		ownershipHandler,
		timesheetHandler,
		consolidationHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewTimesheetJobs(timesheetSvc, cfg.Timesheet.AutoValidateInterval).RegisterJobs(scheduler)
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "legacy_ownership", cfg.Timesheet.OwnershipLegacyMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	scheduler.Stop()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}
