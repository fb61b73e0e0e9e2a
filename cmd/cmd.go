package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hannatrush/PetSoft/internal/config"
	"github.com/hannatrush/PetSoft/internal/handlers"
	"github.com/hannatrush/PetSoft/internal/middleware"
	"github.com/hannatrush/PetSoft/internal/repository"
	"github.com/hannatrush/PetSoft/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	petRepo := repository.NewPetRepository(db)

	// Initialize services
	tokenTTL := time.Duration(cfg.JWT.ExpiryHours) * time.Hour
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, tokenTTL)
	petService := services.NewPetService(petRepo)
	billingService := services.NewBillingService(
		services.NewStripeCheckout(cfg.Stripe.SecretKey),
		cfg.Stripe.PriceID,
		cfg.Server.CanonicalURL,
	)
	imageService, err := services.NewImageService(
		context.Background(),
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create image service")
	}
	hub := services.NewRefreshHub()

	// Initialize handlers
	secureCookies := strings.HasPrefix(cfg.Server.CanonicalURL, "https://")
	authHandler := handlers.NewAuthHandler(userService, secureCookies)
	petHandler := handlers.NewPetHandler(petService, hub)
	billingHandler := handlers.NewBillingHandler(billingService, userService, authHandler)
	imageHandler := handlers.NewImageHandler(imageService)
	wsHandler := handlers.NewWebSocketHandler(hub, userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(middleware.Authenticate(userService))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", authHandler.SignUp)
		r.Post("/auth/login", authHandler.LogIn)
		r.Post("/auth/logout", authHandler.LogOut)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Logged-in routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/checkout", billingHandler.CreateCheckoutSession)
			r.Post("/checkout/confirm", billingHandler.ConfirmCheckout)
		})

		// Paid routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAccess)
			r.Get("/pets", petHandler.ListPets)
			r.Post("/pets", petHandler.AddPet)
			r.Post("/pets/images", imageHandler.UploadImage)
			r.Put("/pets/{pet_id}", petHandler.EditPet)
			r.Delete("/pets/{pet_id}", petHandler.DeletePet)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Page routes pass through the route gate
	r.Group(func(r chi.Router) {
		r.Use(middleware.RouteGate)
		r.NotFound(handlers.Pages())
		r.Get("/", handlers.Pages())
		r.Get("/login", handlers.Pages())
		r.Get("/signup", handlers.Pages())
		r.Get("/payment", handlers.Pages())
		r.Get("/app/*", handlers.Pages())
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
