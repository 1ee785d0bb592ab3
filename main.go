package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicflow/config"
	"clinicflow/cron"
	"clinicflow/database"
	appointmentRepo "clinicflow/database/repository/appointment"
	calendareventRepo "clinicflow/database/repository/calendarevent"
	clinicRepo "clinicflow/database/repository/clinic"
	"clinicflow/handlers"
	"clinicflow/routes"
	"clinicflow/services/availability"
	"clinicflow/services/calendar"
	"clinicflow/services/flow"
	"clinicflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitFlowCache()
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetFlowCacheClient()},
		database.MongoClient,
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	eventRepo := calendareventRepo.NewMongoCalendarEventRepo()
	directory := clinicRepo.NewMongoDirectoryRepo()

	// remote calendar behind the resilient client.
	remote, err := calendar.NewGoogleCalendar(
		context.Background(),
		config.AppConfig.GoogleCredentialsFile,
		config.AppConfig.GoogleCalendarID,
		config.AppConfig.DefaultTimezone,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize google calendar: %v", err)
	}
	client := calendar.NewClient(remote, calendar.ClientConfig{
		MaxRetries:       config.AppConfig.CalendarMaxRetries,
		BaseDelay:        time.Duration(config.AppConfig.CalendarRetryBaseMs) * time.Millisecond,
		MaxDelay:         time.Duration(config.AppConfig.CalendarRetryMaxMs) * time.Millisecond,
		RequestTimeout:   time.Duration(config.AppConfig.CalendarTimeoutSecs) * time.Second,
		FailureThreshold: config.AppConfig.BreakerFailureThreshold,
		RecoveryTimeout:  time.Duration(config.AppConfig.BreakerRecoverySeconds) * time.Second,
	})

	// services.
	syncEngine := &calendar.SyncEngine{
		Client:         client,
		Events:         eventRepo,
		Appointments:   apptRepo,
		ConflictPolicy: config.AppConfig.SyncConflictPolicy,
		Bidirectional:  config.AppConfig.SyncBidirectional,
	}

	resolver := &availability.DefaultResolver{
		Directory:    directory,
		Appointments: apptRepo,
		Events:       eventRepo,
	}

	flowStore := flow.NewRedisStore(
		utils.GetFlowCacheClient(),
		time.Duration(config.AppConfig.FlowTTLMinutes)*time.Minute,
	)
	flowService := &flow.DefaultFlowService{
		Store:        flowStore,
		Directory:    directory,
		Appointments: apptRepo,
		Conflicts:    syncEngine,
		Publisher:    syncEngine,
		CleanupTTL:   time.Duration(config.AppConfig.FlowCleanupMinutes) * time.Minute,
	}

	// Background calendar sync.
	cron.InitSyncWorker(syncEngine, directory)

	// Assemble the handler bundle and register routes.
	handlerBundle := handlers.NewHandlerBundle(flowService, resolver, syncEngine)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
