package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/Temirlan472/Learning_Tracker/internal/config"
	"github.com/Temirlan472/Learning_Tracker/internal/database"
	"github.com/Temirlan472/Learning_Tracker/internal/handlers"
	"github.com/Temirlan472/Learning_Tracker/internal/jobs"
	"github.com/Temirlan472/Learning_Tracker/internal/realtime"
	"github.com/Temirlan472/Learning_Tracker/internal/repository"
	cronjobs "github.com/Temirlan472/Learning_Tracker/internal/scheduler"
	"github.com/Temirlan472/Learning_Tracker/internal/services"
	"github.com/Temirlan472/Learning_Tracker/pkg/logger"
	"github.com/Temirlan472/Learning_Tracker/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	ctx := context.Background()
	if err := activityRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Activity index error: %v", err)
	}
	if err := notificationRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Notification index error: %v", err)
	}
	if err := analyticsRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Analytics index error: %v", err)
	}

	// --- Realtime hub (presence registry + delivery dispatcher) ---
	hub := realtime.NewHub(cfg.SingleSessionPresence)

	// --- Services ---
	activityService := services.NewActivityService(activityRepo, hub)
	notificationService := services.NewNotificationService(notificationRepo, hub)
	analyticsService := services.NewAnalyticsService(analyticsRepo, hub)

	// --- Handlers ---
	activityHandler := handlers.NewActivityHandler(activityService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	wsHandler := handlers.NewWSHandler(hub, cfg.JWTSecret)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Activity routes
	activityRoutes := router.PathPrefix("/activities").Subrouter()
	activityRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	activityRoutes.HandleFunc("", activityHandler.CreateActivityHandler).Methods("POST")
	activityRoutes.HandleFunc("/{userId}", activityHandler.GetUserActivitiesHandler).Methods("GET")
	activityRoutes.HandleFunc("/{userId}/unread/count", activityHandler.GetUnreadCountHandler).Methods("GET")
	activityRoutes.HandleFunc("/{id}/read", activityHandler.MarkAsReadHandler).Methods("PATCH")
	activityRoutes.HandleFunc("/{userId}/read-all", activityHandler.MarkAllAsReadHandler).Methods("PATCH")
	activityRoutes.HandleFunc("/{id}", activityHandler.DeleteActivityHandler).Methods("DELETE")

	// Notification routes
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.CreateNotificationHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{userId}", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{userId}/unread/count", notificationHandler.GetUnreadCountHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("PATCH")
	notificationRoutes.HandleFunc("/{userId}/read-all", notificationHandler.MarkAllAsReadHandler).Methods("PATCH")
	notificationRoutes.HandleFunc("/{userId}/clear-all", notificationHandler.ClearAllHandler).Methods("DELETE")
	notificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Analytics routes. Leaderboard goes first so /{userId} does not capture it.
	analyticsRoutes := router.PathPrefix("/analytics").Subrouter()
	analyticsRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	analyticsRoutes.HandleFunc("/leaderboard/all", analyticsHandler.GetLeaderboardHandler).Methods("GET")
	analyticsRoutes.HandleFunc("/{userId}", analyticsHandler.GetAnalyticsHandler).Methods("GET")
	analyticsRoutes.HandleFunc("/{userId}/init", analyticsHandler.InitAnalyticsHandler).Methods("POST")
	analyticsRoutes.HandleFunc("/{userId}/learning-hours", analyticsHandler.UpdateLearningHoursHandler).Methods("PATCH")
	analyticsRoutes.HandleFunc("/{userId}/streak", analyticsHandler.UpdateStreakHandler).Methods("PATCH")
	analyticsRoutes.HandleFunc("/{userId}/increment", analyticsHandler.IncrementStatHandler).Methods("PATCH")
	analyticsRoutes.HandleFunc("/{userId}/weekly", analyticsHandler.AddWeeklyDataHandler).Methods("POST")

	// Realtime endpoint: identity arrives over the socket, not the header
	router.HandleFunc("/ws", wsHandler.ServeWS).Methods("GET")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"Server is running","activeUsers":%d}`, hub.ActiveCount())
	}).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Periodic maintenance: TTL sweep + history rollup
	rollup := jobs.NewHistoryRollup(analyticsService)
	cronjobs.StartMaintenanceCronJobs(notificationService, rollup)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
