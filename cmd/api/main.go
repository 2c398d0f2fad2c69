package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/finbase/payment-service/internal/config"
	"github.com/finbase/payment-service/internal/digest"
	"github.com/finbase/payment-service/internal/handler"
	"github.com/finbase/payment-service/internal/integrations/rates"
	"github.com/finbase/payment-service/internal/middleware"
	"github.com/finbase/payment-service/internal/repository"
	"github.com/finbase/payment-service/internal/service"
	"github.com/finbase/payment-service/internal/token"
	"github.com/finbase/payment-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	authority := token.NewAuthority(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	authSvc := service.NewAuthService(repo, authority, logger)
	paymentSvc := service.NewPaymentService(repo, repo, service.WeightedDecider{}, logger)
	h := handler.NewHandler(authSvc, paymentSvc, logger)
	ratesClient := rates.NewClient(cfg, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestID(logger))
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Daily reference rates
	r.HandleFunc("/rates", func(w http.ResponseWriter, r *http.Request) {
		daily, err := ratesClient.GetDailyRates()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get rates: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(daily)
	}).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(authority))
	authRouter.HandleFunc("/me", h.Me).Methods("GET")
	authRouter.HandleFunc("/payments", h.CreatePayment).Methods("POST")
	authRouter.HandleFunc("/payments", h.ListPayments).Methods("GET")
	authRouter.HandleFunc("/payments/stats", h.PaymentStats).Methods("GET")
	authRouter.HandleFunc("/payments/{id:[0-9]+}", h.GetPayment).Methods("GET")

	// Schedule the daily digest when SMTP is configured
	scheduler := cron.New()
	if cfg.SMTPHost != "" {
		sender := email.NewSender(cfg, logger)
		job := digest.NewJob(repo, paymentSvc, sender, logger)
		if _, err := scheduler.AddJob(cfg.DigestSchedule, job); err != nil {
			logger.Fatalf("Failed to schedule digest job: %v", err)
		}
		scheduler.Start()
		logger.Infof("Digest job scheduled: %s", cfg.DigestSchedule)
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}
