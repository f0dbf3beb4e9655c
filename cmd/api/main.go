package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rancho/rancho-credits-api/internal/config"
	"github.com/rancho/rancho-credits-api/internal/domain/catalog"
	"github.com/rancho/rancho-credits-api/internal/domain/credit"
	"github.com/rancho/rancho-credits-api/internal/domain/payment"
	"github.com/rancho/rancho-credits-api/internal/middleware"
	"github.com/rancho/rancho-credits-api/internal/pkg/database"
	"github.com/rancho/rancho-credits-api/internal/pkg/jwt"
	"github.com/rancho/rancho-credits-api/internal/pkg/logger"
	"github.com/rancho/rancho-credits-api/internal/pkg/pricing"
	"github.com/rancho/rancho-credits-api/internal/pkg/razorpay"
	pkgresponse "github.com/rancho/rancho-credits-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Rancho credits API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	costs := pricing.NewTable(cfg.VideoGenerationCost, cfg.GameGenerationCost)

	razorpayClient := razorpay.NewClient(razorpay.Config{
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
	})

	// ---------- Repositories ----------
	catalogRepo := catalog.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	if cfg.SeedPackages {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := catalogRepo.Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed credit packages")
		}
		cancel()
	}

	// ---------- Services ----------
	creditService := credit.NewService(db)
	paymentService := payment.NewService(paymentRepo, catalogRepo, creditService, razorpayClient, redisClient, cfg.RazorpayKeySecret)

	// ---------- Handlers ----------
	creditHandler := credit.NewHandler(creditService, costs)
	catalogHandler := catalog.NewHandler(catalogRepo)
	paymentHandler := payment.NewHandler(paymentService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/credits", func(r chi.Router) {
			// Pricing page is visible before sign-in
			r.Mount("/packages", catalogHandler.Routes())

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Get("/", creditHandler.GetBalance)
				r.Get("/transactions", creditHandler.ListTransactions)
				r.Post("/verify", creditHandler.VerifyGeneration)
			})
		})

		r.Mount("/payments", paymentHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
