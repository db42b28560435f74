package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frontdesk/config"
	"frontdesk/cron"
	"frontdesk/database"
	appointmentRepo "frontdesk/database/repository/appointment"
	tenantRepoPkg "frontdesk/database/repository/tenant"
	"frontdesk/handlers"
	"frontdesk/middleware"
	"frontdesk/routes"
	"frontdesk/services/booking"
	"frontdesk/services/calendar"
	"frontdesk/services/conversation"
	ai "frontdesk/services/intelligence"
	"frontdesk/services/notification"
	"frontdesk/tasks"
	"frontdesk/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitCache()

	calendarService, err := calendar.NewGoogleCalendarService(
		config.AppConfig.GoogleCredentialsFile,
		time.Duration(config.AppConfig.CalendarTimeoutSec)*time.Second,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar service: %v", err)
	}

	model, err := ai.NewGeminiClient(
		config.AppConfig.GeminiAPIKey,
		time.Duration(config.AppConfig.ModelTimeoutSec)*time.Second,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize model client: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	tenantRepo := tenantRepoPkg.NewMongoTenantRepo(utils.GetCacheClient())
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()

	// services.
	dispatcher := tasks.NewAsynqDispatcher()
	defer dispatcher.Close()

	availability := &booking.DefaultAvailabilityEngine{
		Calendar: calendarService,
	}
	engine := &booking.DefaultEngine{
		Calendar:   calendarService,
		Repo:       apptRepo,
		Dispatcher: dispatcher,
	}

	sessionStore := conversation.NewRedisSessionStore(
		utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionTTLHours)*time.Hour,
	)
	orchestrator := &conversation.Orchestrator{
		Tenants:      tenantRepo,
		Sessions:     sessionStore,
		Extractor:    &conversation.FieldExtractor{Model: model},
		Availability: availability,
		Engine:       engine,
		Model:        model,
	}

	chatHandler := handlers.NewChatHandler(orchestrator)
	voiceHandler := handlers.NewVoiceHandler(orchestrator)

	// Background worker for confirmation email and calendar reconciliation.
	emailService := notification.NewEmailService()
	cron.InitBookingWorker(emailService, tenantRepo, calendarService)

	utils.StartHealthMonitor(utils.GetSessionCacheClient(), utils.GetCacheClient(), database.MongoClient)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ChatHandler:          chatHandler.HandleChat,
		VoiceGetDaysHandler:  voiceHandler.GetDaysHandler,
		VoiceGetSlotsHandler: voiceHandler.GetSlotsHandler,
		VoiceBookHandler:     voiceHandler.BookHandler,
	}

	// Register routes with the assembled handler bundle.
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
