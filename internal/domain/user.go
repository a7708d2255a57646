package domain

// Roles form a closed set; a user's role is fixed at registration.
const (
	RoleResident  = "resident"  // Schedules pickups, earns points
	RoleCollector = "collector" // Fulfills pickups in an assigned zone
	RoleAdmin     = "admin"     // Read/aggregate visibility plus zone management
)

// ValidRole reports whether role is one of the known role values
func ValidRole(role string) bool {
	return role == RoleResident || role == RoleCollector || role == RoleAdmin
}

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`            // Primary key
	Username string `gorm:"unique;not null" json:"username"` // Unique username, stored lowercase
	Password string `gorm:"not null" json:"-"`               // Bcrypt hash, never serialized
	Role     string `gorm:"not null" json:"role"`            // One of the Role constants
	Address  string `json:"address,omitempty"`               // Home address (residents only)
	Zone     string `json:"zone,omitempty"`                  // Residential zone, or the collector's duty zone
}
