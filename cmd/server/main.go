package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jadewell/loon/internal/db"
	"github.com/jadewell/loon/internal/handlers"
	"github.com/jadewell/loon/internal/logger"
	"github.com/jadewell/loon/internal/repositories"
	"github.com/jadewell/loon/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Database connection
	config := db.NewConfig()
	database, err := db.Connect(config)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Health(); err != nil {
		log.Fatal("Database health check failed", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}
	log.Info("Database connection established")

	// Repositories
	transactionRepo := repositories.NewTransactionRepository(database)
	snapshotRepo := repositories.NewFxSnapshotRepository(database)

	// Rate source: live HTTP provider, or the mock when requested
	var rateSource services.RateSource
	if os.Getenv("FX_PROVIDER") == "mock" {
		rateSource = services.NewMockRateSource()
	} else {
		rateSource = services.NewHTTPRateSource(os.Getenv("FX_API_KEY"))
	}

	// Services
	snapshotService := services.NewFxSnapshotService(rateSource, snapshotRepo, log)
	converter := services.NewCurrencyConverter(snapshotService)
	expander := services.NewScheduleExpander()
	materializer := services.NewOccurrenceMaterializer(expander, converter)
	scopeResolver := services.NewScopeResolver(transactionRepo)
	seriesService := services.NewSeriesService(transactionRepo, snapshotService, converter, materializer, scopeResolver, log)

	// Handlers
	transactionHandler := handlers.NewTransactionHandler(seriesService, log)

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "loon",
		})
	})

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", transactionHandler.HandleTransactions)
	api.HandleFunc("/transactions/{id}", transactionHandler.HandleTransaction)
	api.HandleFunc("/schedules/{ruleID}/occurrences", transactionHandler.HandleRuleOccurrences)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("Server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
