package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For parsing the rate map

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string             // Application port
	DBDriver       string             // "sqlite" (default, local file) or "mysql"
	DBPath         string             // SQLite database file
	DBUser         string             // MySQL user
	DBPassword     string             // MySQL password
	DBHost         string             // MySQL host
	DBPort         string             // MySQL port
	DBName         string             // MySQL database name
	JWTSecret      string             // JWT secret key
	RedisAddr      string             // Redis server address
	RedisPass      string             // Redis password
	RedisDB        int                // Redis database number
	IsProd         bool               // Is production environment
	PointRates     map[string]float64 // Points per kg, keyed by waste type
	CancelAssigned string             // Who may cancel an assigned booking
}

// Default accrual rates in points per kilogram, keyed by waste type. The
// recyclable rate is the original 1 kg = 10 points formula; the others scale
// it by handling effort. Overridden per type through POINT_RATES.
var defaultPointRates = map[string]float64{
	"recyclable":   10,
	"e-waste":      25,
	"bulk item":    15,
	"garden waste": 5,
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBPath:         getEnv("DB_PATH", "ecosort.db"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         os.Getenv("DB_PORT"),
		DBName:         os.Getenv("DB_NAME"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        redisDB,
		IsProd:         os.Getenv("IS_PROD") == "true",
		PointRates:     parsePointRates(os.Getenv("POINT_RATES")),
		CancelAssigned: getEnv("CANCEL_ASSIGNED", "any"),
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "mysql" {
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
	}
	return c.DBPath
}

// KnownWasteType reports whether a waste type has a configured accrual rate.
// Bookings for unknown types are rejected at creation.
func (c *Config) KnownWasteType(wasteType string) bool {
	_, ok := c.PointRates[strings.ToLower(wasteType)]
	return ok
}

// RateFor returns the accrual rate for a waste type
func (c *Config) RateFor(wasteType string) float64 {
	return c.PointRates[strings.ToLower(wasteType)]
}

// getEnv returns the value of an environment variable or a fallback
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parsePointRates parses "recyclable:10,e-waste:25" into a rate map on top
// of the defaults. Malformed or non-positive pairs are skipped.
func parsePointRates(s string) map[string]float64 {
	rates := make(map[string]float64, len(defaultPointRates))
	for k, v := range defaultPointRates {
		rates[k] = v
	}
	if s == "" {
		return rates
	}
	for _, pair := range strings.Split(s, ",") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			continue
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil || rate <= 0 {
			continue
		}
		rates[strings.ToLower(strings.TrimSpace(kv[0]))] = rate
	}
	return rates
}
