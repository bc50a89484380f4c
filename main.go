package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"nocta-service/internal/db"
	"nocta-service/internal/functions"
	"nocta-service/internal/handlers"
	"nocta-service/internal/inbox"
	"nocta-service/internal/middleware"
	"nocta-service/internal/observability"
	"nocta-service/internal/rabbitmq"
	"nocta-service/internal/repositories"
	"nocta-service/internal/telemetry"
	"nocta-service/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx := context.Background()

	shutdownTracing := observability.InitTracing(ctx, "nocta-service", getEnv("OTLP_ENDPOINT", ""))
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	functionsClient := functions.NewClient(getEnv("FUNCTIONS_BASE_URL", "http://localhost:8090"))

	messageRepo := repositories.NewMessageRepo(database)
	profileRepo := repositories.NewProfileRepo(database)
	eventRepo := repositories.NewEventRepo(database)
	kvRepo := repositories.NewKVRepo(database)

	tracker := inbox.NewTracker(kvRepo)
	inboxService := inbox.NewService(messageRepo, profileRepo, tracker)

	auditPublisher := rabbitmq.NewPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "nocta.audit"))
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))

	audit := telemetry.NewAuditEmitter(auditPublisher, getEnv("AUDIT_ROUTING_KEY", "audit.nocta"), "nocta-service", getEnv("ENVIRONMENT", "development"))

	if wsEventsPublisher, err := observability.NewAMQPPublisher(getEnv("AMQP_URL", ""), getEnv("WS_EVENTS_EXCHANGE", "nocta.ws_events")); err != nil {
		log.Printf("ws events publisher disabled: %v", err)
	} else {
		observability.SetPublisher(wsEventsPublisher)
		defer wsEventsPublisher.Close()
	}

	hub := ws.NewHub()

	inboxHandler := handlers.NewInboxHandler(inboxService)
	messageHandler := handlers.NewMessageHandler(messageRepo, profileRepo, hub, audit)
	eventHandler := handlers.NewEventHandler(eventRepo, functionsClient, audit)
	accountHandler := handlers.NewAccountHandler(profileRepo, functionsClient, audit)

	inboxWS := ws.NewInboxWebSocketHandler(hub, inboxService, functionsClient)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("nocta-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(functionsClient)
	callbackSecret := getEnv("INTERNAL_CALLBACK_SECRET", "")

	router.GET("/inbox", authMiddleware, inboxHandler.ListThreads)
	router.POST("/inbox/:counterparty_id/read", authMiddleware, inboxHandler.MarkThreadRead)

	router.GET("/partitions/:company_id/messages", authMiddleware, messageHandler.GetConversation)
	router.POST("/partitions/:company_id/messages", authMiddleware, messageHandler.PostMessage)
	router.DELETE("/partitions/:company_id/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)

	router.GET("/events", eventHandler.ListEvents)
	router.GET("/events/:event_id", eventHandler.GetEvent)
	router.POST("/events/sweep", authMiddleware, eventHandler.SweepExpired)
	router.GET("/company/events", authMiddleware, middleware.RequireCompany(), eventHandler.ListCompanyEvents)
	router.POST("/company/events", authMiddleware, middleware.RequireCompany(), eventHandler.CreateEvent)
	router.PUT("/company/events/:event_id", authMiddleware, middleware.RequireCompany(), eventHandler.UpdateEvent)
	router.POST("/company/events/:event_id/reencode", authMiddleware, middleware.RequireCompany(), eventHandler.ReencodeVideo)

	router.GET("/profile", authMiddleware, accountHandler.GetProfile)
	router.PUT("/profile", authMiddleware, accountHandler.UpsertProfile)
	router.POST("/company/verification", authMiddleware, middleware.RequireCompany(), accountHandler.RequestVerification)
	router.POST("/company/verification/:company_id/approve", middleware.RequireInternalSecret(callbackSecret), accountHandler.ApproveVerification)
	router.POST("/payments/session", authMiddleware, accountHandler.CreatePaymentSession)
	router.POST("/media", authMiddleware, accountHandler.UploadMedia)
	router.DELETE("/account", authMiddleware, accountHandler.DeleteAccount)

	router.GET("/ws/inbox", inboxWS.Handle)

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
