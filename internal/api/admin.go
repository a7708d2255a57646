package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel error checks
	"net/http" // HTTP status codes
	"strconv"  // Cache key parts
	"time"     // Cache TTLs

	"ecosort/internal/domain" // Domain models and errors
	"ecosort/internal/store"  // Data-access layer
	"ecosort/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// AdminListUsersHandler returns all users with their live point balances
func AdminListUsersHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		page, pageSize := parsePage(c)
		cacheKey := utils.AdminUsersKey(page, pageSize)
		var cached struct {
			Users      []store.UserAdminRow `json:"users"`
			Page       int                  `json:"page"`
			PageSize   int                  `json:"page_size"`
			Total      int64                `json:"total"`
			TotalPages int                  `json:"total_pages"`
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,
				"page":        cached.Page,
				"page_size":   cached.PageSize,
				"total":       cached.Total,
				"total_pages": cached.TotalPages,
				"cached":      true,
			})
			return
		}
		users, total, err := st.ListUsers(page, pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		respData := gin.H{
			"users":       users,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData)
	}
}

// AdminListBookingsHandler returns all bookings with optional filtering by
// resident, status, waste type or scheduled-date range
func AdminListBookingsHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		page, pageSize := parsePage(c)
		filter := store.BookingFilter{
			ResidentID: c.Query("resident_id"),
			Status:     c.Query("status"),
			WasteType:  c.Query("waste_type"),
			From:       c.Query("from"),
			To:         c.Query("to"),
			Page:       page,
			PageSize:   pageSize,
		}
		cacheKey := utils.AdminBookingsKey([]string{
			filter.ResidentID, filter.Status, filter.WasteType, filter.From, filter.To,
			strconv.Itoa(page), strconv.Itoa(pageSize),
		})
		var cached struct {
			Bookings   []domain.Booking `json:"bookings"`
			Page       int              `json:"page"`
			PageSize   int              `json:"page_size"`
			Total      int64            `json:"total"`
			TotalPages int              `json:"total_pages"`
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"bookings":    cached.Bookings,
				"page":        cached.Page,
				"page_size":   cached.PageSize,
				"total":       cached.Total,
				"total_pages": cached.TotalPages,
				"cached":      true,
			})
			return
		}
		bookings, total, err := st.ListBookings(filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
			return
		}
		respData := gin.H{
			"bookings":    bookings,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData)
	}
}

// AdminStatsHandler returns the dashboard headline numbers
func AdminStatsHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := utils.AdminStatsKey()
		var cached store.Stats
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"stats": cached, "cached": true})
			return
		}
		stats, err := st.GetStats()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, stats, 30*time.Second)
		c.JSON(http.StatusOK, gin.H{"stats": stats, "cached": false})
	}
}

// AssignZoneRequest moves a collector to a new duty zone
type AssignZoneRequest struct {
	Username string `json:"username" binding:"required"` // Collector to reassign
	Zone     string `json:"zone" binding:"required"`     // New duty zone
}

// AssignZoneHandler reassigns a collector's duty zone
func AssignZoneHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AssignZoneRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := st.AssignZone(req.Username, req.Zone); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No collector with that username"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update zone"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"username": req.Username,
			"zone":     req.Zone,
		}).Info("Collector zone updated")
		// The user listing shows duty zones; drop its first pages like any
		// other listing invalidation.
		ctx := context.Background()
		for i := 1; i <= 5; i++ {
			_ = utils.DeleteCache(ctx, rdb, utils.AdminUsersKey(i, 20))
		}
		c.JSON(http.StatusOK, gin.H{"message": "Zone updated"})
	}
}
