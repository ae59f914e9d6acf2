package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studyLogAPI/handlers"
	"studyLogAPI/internal/events"
	"studyLogAPI/internal/notification"
	"studyLogAPI/internal/sse"
	"studyLogAPI/middleware"
	"studyLogAPI/services"
)

var (
	dbPool              *pgxpool.Pool
	bus                 *events.Bus
	registry            *sse.Registry
	userService         *services.UserService
	streakService       *services.StreakService
	recordService       *services.RecordService
	rankingService      *services.RankingService
	notificationService *services.NotificationService
	friendService       *services.FriendService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	bus = events.NewBus(4)
	registry = sse.NewRegistry()

	streakService = services.NewStreakService(dbPool)
	recordService = services.NewRecordService(dbPool, streakService, bus)
	rankingService = services.NewRankingService(dbPool)
	notificationService = services.NewNotificationService(dbPool, registry)
	friendService = services.NewFriendService(dbPool, bus)
	userService = services.NewUserService(dbPool)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	// Ranking maintenance and notification dispatch react to committed
	// business actions through the bus, never inside request handlers.
	pipeline := services.NewPipeline(rankingService, notificationService)
	pipeline.Register(bus)
	bus.Start()

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService, streakService)
	recordHandler := handlers.NewRecordHandler(recordService)
	rankingHandler := handlers.NewRankingHandler(rankingService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, registry)
	friendHandler := handlers.NewFriendHandler(friendService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "studyLog-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetUserInfo).Methods("GET")
	protected.HandleFunc("/user/profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/streak", userHandler.GetStreak).Methods("GET")
	protected.HandleFunc("/user/streak/calendar", userHandler.GetStreakCalendar).Methods("GET")

	protected.HandleFunc("/records", recordHandler.CreateRecord).Methods("POST")
	protected.HandleFunc("/records/{id}", recordHandler.DeleteRecord).Methods("DELETE")

	protected.HandleFunc("/rankings", rankingHandler.GetRankings).Methods("GET")

	protected.HandleFunc("/friends", friendHandler.GetFriends).Methods("GET")
	protected.HandleFunc("/friends", friendHandler.AddFriend).Methods("POST")
	protected.HandleFunc("/friends/{code}", friendHandler.RemoveFriend).Methods("DELETE")
	protected.HandleFunc("/friends/lookup", friendHandler.LookupByCode).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/subscribe", notificationHandler.Subscribe).Methods("GET")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:        port,
		Handler:     corsHandler(r),
		ReadTimeout: 5 * time.Second,
		// No server-wide write timeout: the notification stream stays
		// open for up to an hour and manages its own write deadlines.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Stop dispatch workers before the pool they write through closes.
	bus.Stop()

	log.Println("Server shutdown complete")
}
