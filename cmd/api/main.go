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

	"github.com/cmlabs-hris/hris-timekeeping/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/retention"
	appHTTP "github.com/cmlabs-hris/hris-timekeeping/internal/handler/http"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/postgresql"
	approvalService "github.com/cmlabs-hris/hris-timekeeping/internal/service/approval"
	attendanceService "github.com/cmlabs-hris/hris-timekeeping/internal/service/attendance"
	messageService "github.com/cmlabs-hris/hris-timekeeping/internal/service/message"
	reportService "github.com/cmlabs-hris/hris-timekeeping/internal/service/report"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	overtimeRequestRepo := postgresql.NewOvertimeRequestRepository(db)
	timeOffRequestRepo := postgresql.NewTimeOffRequestRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)
	toilBalanceRepo := postgresql.NewToilBalanceRepository(db)
	messageRepo := postgresql.NewMessageRepository(db)
	deliveryLogRepo := postgresql.NewDeliveryLogRepository(db)
	groupRepo := postgresql.NewGroupRepository(db)
	retentionRepo := postgresql.NewRetentionRepository(db)

	accessExpiration, _ := time.ParseDuration(cfg.JWT.AccessExpiration)
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, accessExpiration)
	hub := sse.NewHub()

	attendanceSvc := attendanceService.NewAttendanceService(transactor, attendanceRepo, employeeRepo, cfg.App.Location, cfg.Work)
	approvalSvc := approvalService.NewApprovalService(
		transactor,
		leaveRequestRepo,
		overtimeRequestRepo,
		timeOffRequestRepo,
		requestRepo,
		toilBalanceRepo,
		employeeRepo,
	)
	messageSvc := messageService.NewMessageService(transactor, messageRepo, deliveryLogRepo, groupRepo, employeeRepo, hub)
	reportSvc := reportService.NewReportService(
		attendanceRepo,
		employeeRepo,
		overtimeRequestRepo,
		timeOffRequestRepo,
		toilBalanceRepo,
		cfg.App.Location,
	)

	// Background jobs
	scheduler := cron.NewScheduler()
	jobs := cfg.Jobs
	if jobs.Reconciler.IsEnabled() {
		cron.NewAttendanceJobs(attendanceRepo, cfg.App.Location, jobs.Reconciler.Interval).RegisterJobs(scheduler)
	}
	var retryInterval, cleanupInterval time.Duration
	if jobs.MessageRetry.IsEnabled() {
		retryInterval = jobs.MessageRetry.Interval
	}
	if jobs.MessageCleanup.IsEnabled() {
		cleanupInterval = jobs.MessageCleanup.Interval
	}
	cron.NewMessageJobs(messageSvc, retryInterval, cleanupInterval).RegisterJobs(scheduler)
	if jobs.Retention.IsEnabled() {
		rules := retention.ApplyOverrides(retention.DefaultRules(), cron.RetentionOverrides(jobs.Retention))
		cron.NewRetentionJobs(retentionRepo, rules, jobs.Retention.Interval).RegisterJobs(scheduler)
	}
	if jobNames := scheduler.Jobs(); len(jobNames) > 0 {
		slog.Info("Background jobs registered", "jobs", jobNames)
	} else {
		slog.Warn("All background jobs are disabled")
	}
	scheduler.Start()

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewApprovalHandler(approvalSvc),
		appHTTP.NewMessageHandler(messageSvc, hub, JWTService),
		appHTTP.NewReportHandler(reportSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "timezone", cfg.App.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server error", "error", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}
