package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/exam-prep/backend/internal/auth"
	"github.com/exam-prep/backend/internal/concepts"
	"github.com/exam-prep/backend/internal/database"
	"github.com/exam-prep/backend/internal/middleware"
	"github.com/exam-prep/backend/internal/mistakes"
	"github.com/exam-prep/backend/internal/practice"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Wiring: stores, background aggregator, services, handlers
	conceptStore := concepts.NewStore(db)
	aggregator := concepts.NewAggregator(conceptStore)
	aggregator.Start(ctx)
	defer aggregator.Stop()

	mistakeStore := mistakes.NewStore(db)
	mistakeService := mistakes.NewService(mistakeStore)

	practiceStore := practice.NewStore(db)
	practiceService := practice.NewService(practiceStore, mistakeService, aggregator)

	authHandler := auth.NewHandler(db)
	practiceHandler := practice.NewHandler(practiceService)
	mistakeHandler := mistakes.NewHandler(mistakeService)
	conceptHandler := concepts.NewHandler(conceptStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/practice/config", practiceHandler.GetConfig).Methods("GET")
	protected.HandleFunc("/practice/config", practiceHandler.UpdateConfig).Methods("PUT")
	protected.HandleFunc("/practice/sessions", practiceHandler.GenerateSession).Methods("POST")
	protected.HandleFunc("/practice/sessions", practiceHandler.ListSessions).Methods("GET")
	protected.HandleFunc("/practice/sessions/{id:[0-9]+}", practiceHandler.GetSession).Methods("GET")
	protected.HandleFunc("/practice/sessions/{id:[0-9]+}/submit", practiceHandler.SubmitSession).Methods("POST")

	protected.HandleFunc("/mistakes", mistakeHandler.List).Methods("GET")
	protected.HandleFunc("/mistakes/{id:[0-9]+}/practice", mistakeHandler.Practice).Methods("POST")
	protected.HandleFunc("/mistakes/{id:[0-9]+}/retry", mistakeHandler.Retry).Methods("POST")

	protected.HandleFunc("/concepts/stats", conceptHandler.GetStats).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: handler}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		srv.Shutdown(context.Background())
	}()

	log.Printf("Server starting on :%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
