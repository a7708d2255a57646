package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel error checks
	"net/http" // HTTP status codes
	"time"     // Cache TTLs

	"ecosort/internal/domain"     // Domain models and errors
	"ecosort/internal/middleware" // Actor lookup
	"ecosort/internal/store"      // Data-access layer
	"ecosort/internal/utils"      // Cache helpers and voucher codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// pointsResponse is the cached shape of the balance endpoint
type pointsResponse struct {
	Points  int                  `json:"points"`  // Derived balance, sum of entries
	Entries []domain.LedgerEntry `json:"entries"` // Ledger history, newest first
}

// PointsHandler returns the resident's balance and ledger history
func PointsHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		resident, ok := middleware.Actor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()
		cacheKey := utils.PointsKey(resident.ID)
		var cached pointsResponse
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"points": cached.Points, "entries": cached.Entries, "cached": true})
			return
		}
		balance, err := st.Balance(resident.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch balance"})
			return
		}
		entries, err := st.LedgerEntries(resident.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ledger"})
			return
		}
		resp := pointsResponse{Points: balance, Entries: entries}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"points": resp.Points, "entries": resp.Entries, "cached": false})
	}
}

// LeaderboardHandler returns the top recyclers by ledger balance
func LeaderboardHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := utils.LeaderboardKey()
		var cached []store.LeaderboardRow
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"leaderboard": cached, "cached": true})
			return
		}
		rows, err := st.Leaderboard(10)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, rows, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"leaderboard": rows, "cached": false})
	}
}

// ListRewardsHandler returns the redeemable catalog
func ListRewardsHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rewards, err := st.Rewards()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rewards"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rewards": rewards})
	}
}

// RedeemRequest spends points on a catalog item
type RedeemRequest struct {
	RewardID uint `json:"reward_id" binding:"required"` // Catalog item to claim
}

// RedeemHandler exchanges points for a reward and returns a voucher code
func RedeemHandler(st *store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		resident, ok := middleware.Actor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req RedeemRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		reward, err := st.Redeem(resident.ID, req.RewardID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
			case errors.Is(err, domain.ErrInsufficientPoints):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough points"})
			default:
				logrus.WithFields(logrus.Fields{
					"resident_id": resident.ID,
					"reward_id":   req.RewardID,
					"error":       err.Error(),
				}).Error("Redemption failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Redemption failed"})
			}
			return
		}
		code := utils.VoucherCode()
		logrus.WithFields(logrus.Fields{
			"resident_id": resident.ID,
			"reward":      reward.Name,
			"cost":        reward.Cost,
		}).Info("Reward redeemed")
		utils.InvalidatePoints(context.Background(), rdb, resident.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Reward redeemed", "reward": reward.Name, "code": code})
	}
}
