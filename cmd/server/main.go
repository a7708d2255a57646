package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"ecosort/internal/api"        // Custom package for API handlers
	"ecosort/internal/config"     // Custom package for configuration
	"ecosort/internal/domain"     // Role constants
	"ecosort/internal/middleware" // Custom package for middleware
	"ecosort/internal/store"      // Data-access layer

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database (sqlite file by default, mysql when configured)
	gdb, err := store.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	st := store.New(gdb)

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	auth := middleware.JWTAuthMiddleware(cfg.JWTSecret)

	// Auth routes
	r.POST("/user", api.RegisterHandler(st))                   // Registration endpoint
	r.POST("/user/login", api.LoginHandler(st, cfg.JWTSecret)) // Login endpoint

	// Resident routes: booking lifecycle, points, rewards
	bookings := r.Group("/bookings")
	bookings.Use(auth, middleware.RequireRole(st, domain.RoleResident))
	bookings.POST("", api.CreateBookingHandler(st, cfg, redisClient))                           // Schedule a pickup
	bookings.GET("", api.ListBookingsHandler(st))                                               // Booking history
	bookings.POST("/:id/cancel", api.CancelBookingHandler(st, redisClient, cfg.CancelAssigned)) // Cancel a pickup

	points := r.Group("/points")
	points.Use(auth, middleware.RequireRole(st, domain.RoleResident))
	points.GET("", api.PointsHandler(st, redisClient))                  // Balance + ledger history
	points.GET("/leaderboard", api.LeaderboardHandler(st, redisClient)) // Top recyclers

	rewards := r.Group("/rewards")
	rewards.Use(auth, middleware.RequireRole(st, domain.RoleResident))
	rewards.GET("", api.ListRewardsHandler(st))                 // Reward catalog
	rewards.POST("/redeem", api.RedeemHandler(st, redisClient)) // Spend points

	// Collector routes: the job manifest and its transitions
	collector := r.Group("/collector")
	collector.Use(auth, middleware.RequireRole(st, domain.RoleCollector))
	collector.GET("/jobs", api.PendingJobsHandler(st, redisClient))                                   // Zone manifest
	collector.POST("/jobs/:id/assign", api.AssignJobHandler(st, redisClient))                         // Take a job
	collector.POST("/jobs/:id/complete", api.CompleteJobHandler(st, cfg, redisClient))                // Finish + accrue points
	collector.POST("/jobs/:id/issue", api.ReportIssueHandler(st))                                     // Flag a problem
	collector.POST("/jobs/:id/cancel", api.CancelBookingHandler(st, redisClient, cfg.CancelAssigned)) // Policy-gated cancel

	// Admin routes (protected, admin only)
	admin := r.Group("/admin")
	admin.Use(auth, middleware.RequireRole(st, domain.RoleAdmin))
	admin.GET("/users", api.AdminListUsersHandler(st, redisClient))       // List users + balances
	admin.GET("/bookings", api.AdminListBookingsHandler(st, redisClient)) // List/filter bookings
	admin.GET("/stats", api.AdminStatsHandler(st, redisClient))           // Dashboard numbers
	admin.POST("/zones", api.AssignZoneHandler(st, redisClient))          // Reassign collector zones

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
