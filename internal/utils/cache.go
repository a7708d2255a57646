package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache key builders live next to the cache helpers so the write paths that
// invalidate keys and the read paths that fill them cannot drift apart.

// PointsKey caches a resident's balance and ledger history
func PointsKey(residentID uint) string {
	return "points:resident:" + strconv.Itoa(int(residentID))
}

// LeaderboardKey caches the top-recyclers listing
func LeaderboardKey() string {
	return "points:leaderboard"
}

// JobsKey caches the pending-job manifest for one zone ("" = all zones)
func JobsKey(zone string) string {
	if zone == "" {
		return "jobs:all"
	}
	return "jobs:zone:" + zone
}

// AdminUsersKey caches one page of the admin user listing
func AdminUsersKey(page, pageSize int) string {
	return "admin:users:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
}

// AdminBookingsKey caches one filtered page of the admin booking listing
func AdminBookingsKey(parts []string) string {
	key := "admin:bookings"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// AdminStatsKey caches the dashboard headline numbers
func AdminStatsKey() string {
	return "admin:stats"
}

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err()
}

// InvalidateJobs drops the manifest caches a booking change can affect: the
// booking's own zone and the unfiltered listing.
func InvalidateJobs(ctx context.Context, rdb *redis.Client, zone string) {
	_ = DeleteCache(ctx, rdb, JobsKey(zone))
	_ = DeleteCache(ctx, rdb, JobsKey(""))
}

// InvalidatePoints drops a resident's balance cache and the leaderboard
func InvalidatePoints(ctx context.Context, rdb *redis.Client, residentID uint) {
	_ = DeleteCache(ctx, rdb, PointsKey(residentID))
	_ = DeleteCache(ctx, rdb, LeaderboardKey())
}
