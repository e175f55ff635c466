package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"condomanager/internal/access"
	"condomanager/internal/config"
	"condomanager/internal/database"
	"condomanager/internal/logger"
	"condomanager/internal/mail"
	"condomanager/internal/outbox"
	"condomanager/internal/report"
	"condomanager/internal/server"
	"condomanager/internal/services"
	"condomanager/internal/session"
	"condomanager/internal/storage"
	"condomanager/internal/validator"
)

// @title           Condominium Expense Manager API
// @version         1.0
// @description     Backend for managing condominium expenses: approval workflow, attachments, notifications and PDF reports.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	db := dbManager.DB()

	files, err := newFileStore(ctx, appConfig)
	if err != nil {
		return err
	}

	revoker, closeRevoker, err := newRevoker(ctx, appConfig)
	if err != nil {
		return err
	}
	defer closeRevoker()

	// Outbox dispatcher delivers queued emails
	dispatcher := outbox.NewDispatcher(db, newMailer(appConfig), outbox.Config{
		PollInterval: appConfig.OutboxPollInterval,
		BatchSize:    appConfig.OutboxBatchSize,
		MaxRetries:   appConfig.OutboxMaxRetries,
	})
	dispatcher.Start(ctx)

	// Initialize services
	policy := access.ApprovalPolicy{
		AllowManagerApproval:   appConfig.ApprovalAllowManagers,
		RequireRejectionReason: appConfig.ApprovalRequireReason,
	}
	router := server.NewRouter(server.Deps{
		UserService:         services.NewUserService(db),
		CondominiumService:  services.NewCondominiumService(db, files),
		ExpenseService:      services.NewExpenseService(db, files, policy),
		NotificationService: services.NewNotificationService(db),
		ReportService:       services.NewReportService(db, report.NewPDFRenderer()),
		AuditService:        services.NewAuditService(db),
		Revoker:             revoker,
		CORSAllowedOrigins:  appConfig.CORSAllowedOrigins,
		ServiceAPIKey:       appConfig.ServiceAPIKey,
		Ready: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting condominium expense server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("http server shutdown failed", "error", err)
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Errorw("outbox dispatcher shutdown failed", "error", err)
	}
	return nil
}

func newFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, error) {
	switch cfg.StorageDriver {
	case "s3":
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 store: %w", err)
		}
		return store, nil
	case "local", "":
		store, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (use local or s3)", cfg.StorageDriver)
	}
}

func newRevoker(ctx context.Context, cfg *config.Config) (session.Revoker, func(), error) {
	if cfg.RedisURL == "" {
		logger.Get().Warn("REDIS_URL not set, token revocation is kept in memory")
		return session.NewMemoryRevoker(), func() {}, nil
	}
	r, err := session.NewRedisRevoker(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { _ = r.Close() }, nil
}

func newMailer(cfg *config.Config) mail.Mailer {
	if cfg.SMTPServer == "" {
		logger.Get().Warn("SMTP_SERVER not set, emails are only logged")
		return mail.LogMailer{}
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:      cfg.SMTPServer,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
		FromName:  cfg.SMTPFromName,
	})
}
