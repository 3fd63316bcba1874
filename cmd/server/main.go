package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	"github.com/vlocker/backend/internal/database"
	"github.com/vlocker/backend/internal/fortnite"
	"github.com/vlocker/backend/internal/handlers"
	mW "github.com/vlocker/backend/internal/middleware"
	"github.com/vlocker/backend/internal/services"
	"github.com/vlocker/backend/internal/store"
)

func main() {
	// Initialize config
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.BindEnv("fortnite.base_url", "FORTNITE_BASE_URL")
	viper.BindEnv("sync.interval", "SYNC_INTERVAL")
	viper.BindEnv("sync.http_timeout", "SYNC_HTTP_TIMEOUT")

	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)
	viper.SetDefault("fortnite.base_url", fortnite.DefaultBaseURL)
	viper.SetDefault("sync.interval", 6*time.Hour)
	viper.SetDefault("sync.http_timeout", 30*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize services
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	authService := services.NewAuthService(db, redisClient)
	purchaseService := services.NewPurchaseService(db)
	cosmeticService := services.NewCosmeticService(db, redisClient)
	userService := services.NewUserService(db)

	cosmeticHandler := handlers.NewCosmeticHandler(cosmeticService, purchaseService)
	userHandler := handlers.NewUserHandler(userService)

	// Background catalog sync
	fortniteClient := fortnite.NewClient(viper.GetString("fortnite.base_url"), viper.GetDuration("sync.http_timeout"))
	syncService := services.NewSyncService(fortniteClient, store.NewCosmeticStore(db), redisClient, viper.GetDuration("sync.interval"))
	syncCtx, stopSync := context.WithCancel(context.Background())
	go syncService.Run(syncCtx)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)

		r.Get("/cosmetics", cosmeticHandler.ListCosmetics)
		r.Get("/cosmetics/new", cosmeticHandler.ListNewCosmetics)
		r.Get("/cosmetics/{id}", cosmeticHandler.GetCosmetic)
		r.Get("/shop", cosmeticHandler.ListShop)

		r.Get("/users/{id}", userHandler.GetUser)
		r.Get("/users/{id}/cosmetics", userHandler.GetCosmetics)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.Auth(redisClient))

			r.Get("/users/me", userHandler.GetMe)
			r.Get("/users/{id}/transactions", userHandler.GetTransactions)

			r.Post("/cosmetics/{id}/purchase", cosmeticHandler.Purchase)
			r.Post("/cosmetics/{id}/return", cosmeticHandler.Return)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	stopSync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
