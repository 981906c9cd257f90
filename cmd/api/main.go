package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"domain-locker/internal/api"
	"domain-locker/internal/conf"
	"domain-locker/internal/database"
	"domain-locker/internal/repository"
	"domain-locker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// 1. Config
	cfg, err := conf.LoadConfig()
	if err != nil {
		logrus.Fatalf("Config error: %v", err)
	}
	setupLogging(cfg.Log)

	// 2. Database
	db, err := database.Connect(cfg.PG)
	if err != nil {
		logrus.Fatalf("Database error: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("Migration error: %v", err)
	}

	// 3. Dependency injection: Repo -> Service -> Handler
	domainRepo := repository.NewPostgresDomainRepo(db)
	tagRepo := repository.NewPostgresTagRepo(db)
	notificationRepo := repository.NewPostgresNotificationRepo(db)
	preferenceRepo := repository.NewPostgresPreferenceRepo(db)

	notifierService := service.NewNotifierService()
	lookupService := service.NewLookupService(cfg.Lookup)
	notificationService := service.NewNotificationService(notificationRepo, preferenceRepo, notifierService)
	domainService := service.NewDomainService(domainRepo, lookupService)
	tagService := service.NewTagService(tagRepo, domainRepo)
	preferenceService := service.NewPreferenceService(preferenceRepo, notifierService)
	cfService := service.NewCloudflareService(cfg.Cloudflare.APIToken, domainRepo)
	trackerService := service.NewTrackerService(domainRepo, lookupService, notificationService)
	reminderService := service.NewReminderService(domainRepo, preferenceRepo, notificationService)

	cronService := service.NewCronService(cfg.Cron, trackerService, reminderService)
	if err := cronService.Start(); err != nil {
		logrus.Fatalf("Scheduler error: %v", err)
	}

	handlers := api.Handlers{
		Domains:       api.NewDomainHandler(domainService, lookupService, cfService),
		Tags:          api.NewTagHandler(tagService),
		Notifications: api.NewNotificationHandler(notificationService),
		Preferences:   api.NewPreferenceHandler(preferenceService),
		Jobs:          api.NewJobHandler(cronService),
		Tools:         api.NewToolHandler(),
		Health:        api.NewHealthHandler(db),
		Metrics:       api.NewMetrics(),
	}
	if cfg.PgExec.Enabled {
		handlers.PgExec = api.NewPgExecHandler(repository.NewPgExecutor(db))
		logrus.Info("pg-executer endpoint enabled")
	}

	// 4. Gin router
	if logrus.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: api.NewRouter(cfg, handlers),
	}

	// 5. Start server
	go func() {
		logrus.Infof("Server starting on %s (%s)", cfg.Server.Port, cfg.EnvType)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server startup failed: %v", err)
		}
	}()

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP shutdown: %v", err)
	}
	cronService.Stop(ctx)
	notifierService.Close()
	logrus.Info("Bye")
}

func setupLogging(cfg conf.LogConfig) {
	if cfg.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
