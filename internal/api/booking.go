package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel error checks
	"net/http" // HTTP status codes
	"time"     // Date validation

	"ecosort/internal/config"     // Point rates and policies
	"ecosort/internal/domain"     // Domain models and errors
	"ecosort/internal/middleware" // Actor lookup
	"ecosort/internal/store"      // Data-access layer
	"ecosort/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// CreateBookingRequest schedules a new pickup
type CreateBookingRequest struct {
	ScheduledDate string `json:"scheduled_date" binding:"required"` // YYYY-MM-DD
	WasteType     string `json:"waste_type" binding:"required"`     // Must have a configured rate
	Notes         string `json:"notes"`                             // Gate codes, location hints
}

// CreateBookingHandler opens a pending pickup for the authenticated resident
func CreateBookingHandler(st *store.Store, cfg *config.Config, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		resident, ok := middleware.Actor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateBookingRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		when, err := time.Parse("2006-01-02", req.ScheduledDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Scheduled date must be YYYY-MM-DD"})
			return
		}
		// Same-day pickups are allowed, past dates are not.
		today := time.Now().Format("2006-01-02")
		if when.Format("2006-01-02") < today {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Scheduled date must not be in the past"})
			return
		}
		if !cfg.KnownWasteType(req.WasteType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown waste type"})
			return
		}
		booking, err := st.CreateBooking(resident.ID, req.ScheduledDate, req.WasteType, req.Notes)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"resident_id": resident.ID,
				"error":       err.Error(),
			}).Error("Booking creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"booking_id":  booking.ID,
			"resident_id": resident.ID,
			"waste_type":  booking.WasteType,
			"zone":        booking.Zone,
		}).Info("Booking created")
		// A new pending job changes the collector manifest.
		utils.InvalidateJobs(context.Background(), rdb, booking.Zone)
		c.JSON(http.StatusCreated, gin.H{"message": "Booking created", "booking": booking})
	}
}

// ListBookingsHandler returns the authenticated resident's booking history
func ListBookingsHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		resident, ok := middleware.Actor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		bookings, err := st.ListBookingsByResident(resident.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}

// CancelBookingHandler cancels a booking on behalf of the acting resident or
// collector; the store enforces ownership and the assigned-cancel policy.
// Mounted under both the resident and collector route groups.
func CancelBookingHandler(st *store.Store, rdb *redis.Client, policy string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.Actor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := bookingID(c)
		if !ok {
			return
		}
		booking, err := st.CancelBooking(id, actor, policy)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			case errors.Is(err, domain.ErrCancelNotAllowed):
				c.JSON(http.StatusForbidden, gin.H{"error": "Cancellation not permitted"})
			case errors.Is(err, domain.ErrInvalidTransition):
				c.JSON(http.StatusConflict, gin.H{"error": "Booking can no longer be cancelled"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
			}
			return
		}
		logrus.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"actor_id":   actor.ID,
			"actor_role": actor.Role,
		}).Info("Booking cancelled")
		utils.InvalidateJobs(context.Background(), rdb, booking.Zone)
		c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking": booking})
	}
}
