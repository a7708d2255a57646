package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel error checks
	"net/http" // HTTP status codes
	"time"     // Cache TTLs

	"ecosort/internal/config"     // Point rates
	"ecosort/internal/domain"     // Domain models and errors
	"ecosort/internal/middleware" // Actor lookup
	"ecosort/internal/store"      // Data-access layer
	"ecosort/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// PendingJobsHandler returns the open manifest for the authenticated
// collector, filtered to their duty zone when one is assigned.
func PendingJobsHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		collector, ok := middleware.Actor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()
		cacheKey := utils.JobsKey(collector.Zone)
		var cached []domain.Booking
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"jobs": cached, "zone": collector.Zone, "cached": true})
			return
		}
		jobs, err := st.PendingJobs(collector.Zone)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch jobs"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, jobs, 30*time.Second)
		c.JSON(http.StatusOK, gin.H{"jobs": jobs, "zone": collector.Zone, "cached": false})
	}
}

// AssignJobHandler lets a collector take a pending booking
func AssignJobHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		collector, ok := middleware.Actor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := bookingID(c)
		if !ok {
			return
		}
		booking, err := st.AssignBooking(id, collector.ID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			case errors.Is(err, domain.ErrInvalidTransition):
				// Another collector got there first, or the booking is closed.
				c.JSON(http.StatusConflict, gin.H{"error": "Booking is not pending"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign booking"})
			}
			return
		}
		logrus.WithFields(logrus.Fields{
			"booking_id":   booking.ID,
			"collector_id": collector.ID,
			"zone":         booking.Zone,
		}).Info("Booking assigned")
		utils.InvalidateJobs(context.Background(), rdb, booking.Zone)
		c.JSON(http.StatusOK, gin.H{"message": "Booking assigned", "booking": booking})
	}
}

// CompleteJobRequest records the collected weight
type CompleteJobRequest struct {
	WeightKG float64 `json:"weight_kg" binding:"required,gt=0"` // Collected weight in kilograms
}

// CompleteJobHandler finishes an assigned pickup and credits the resident
func CompleteJobHandler(st *store.Store, cfg *config.Config, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		collector, ok := middleware.Actor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := bookingID(c)
		if !ok {
			return
		}
		var req CompleteJobRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid weight"})
			return
		}
		booking, entry, err := st.CompleteBooking(id, req.WeightKG, cfg.PointRates)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			case errors.Is(err, domain.ErrInvalidTransition):
				c.JSON(http.StatusConflict, gin.H{"error": "Booking is not assigned"})
			default:
				logrus.WithFields(logrus.Fields{
					"booking_id":   id,
					"collector_id": collector.ID,
					"error":        err.Error(),
				}).Error("Completion failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete booking"})
			}
			return
		}
		logrus.WithFields(logrus.Fields{
			"booking_id":   booking.ID,
			"collector_id": collector.ID,
			"resident_id":  booking.ResidentID,
			"weight_kg":    booking.WeightKG,
			"points":       entry.PointsDelta,
		}).Info("Booking completed")
		ctx := context.Background()
		utils.InvalidateJobs(ctx, rdb, booking.Zone)
		utils.InvalidatePoints(ctx, rdb, booking.ResidentID)
		c.JSON(http.StatusOK, gin.H{
			"message":        "Booking completed",
			"booking":        booking,
			"points_awarded": entry.PointsDelta,
		})
	}
}

// ReportIssueRequest flags a pickup problem
type ReportIssueRequest struct {
	Note string `json:"note" binding:"required"` // e.g. "Access blocked/contaminated"
}

// ReportIssueHandler records a driver note on an open booking. The status is
// left alone; a flagged job stays on the manifest until resolved.
func ReportIssueHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bookingID(c)
		if !ok {
			return
		}
		var req ReportIssueRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := st.RecordIssue(id, req.Note); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No open booking with that id"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record issue"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Issue recorded"})
	}
}
