package api

import (
	"errors"   // Sentinel error checks
	"net/http" // HTTP status codes
	"regexp"   // Username validation

	"ecosort/internal/domain" // Domain models and errors
	"ecosort/internal/store"  // Data-access layer
	"ecosort/internal/utils"  // JWT helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest carries a new account. Address and zone matter for
// residents (pickup location) and collectors (duty zone).
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
	Role     string `json:"role" binding:"required"`     // resident, collector or admin
	Address  string `json:"address"`                     // Required for residents
	Zone     string `json:"zone"`                        // Residential or duty zone
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the issued JWT
type AuthResponse struct {
	Token string `json:"token"` // JWT token
	Role  string `json:"role"`  // The authenticated role, for UI branching
}

// isValidUsername checks if the username contains only alphabetic characters
func isValidUsername(username string) bool {
	matched, _ := regexp.MatchString(`^[A-Za-z]+$`, username)
	return matched
}

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15
}

// RegisterHandler creates a new account
func RegisterHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !isValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be alphabetic only"})
			return
		}
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-15 characters"})
			return
		}
		if !domain.ValidRole(req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		// Residents must be reachable for pickups.
		if req.Role == domain.RoleResident && req.Address == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Residents must provide an address"})
			return
		}
		// Address and zone only apply to residents and collectors
		address, zone := req.Address, req.Zone
		if req.Role == domain.RoleAdmin {
			address, zone = "", ""
		}
		user, err := st.Register(req.Username, req.Password, req.Role, address, zone)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateUser) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "id": user.ID})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(st *store.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := st.Authenticate(req.Username, req.Password)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, Role: user.Role})
	}
}
