package domain

// Booking status values. Completed and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusAssigned  = "assigned"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// CancelAssigned policy values: which actor may cancel a booking that a
// collector has already taken. Operator configuration, see internal/config.
const (
	CancelByResident  = "resident"
	CancelByCollector = "collector"
	CancelByAny       = "any"
	CancelByNone      = "none"
)

// CanTransition reports whether a booking may move between two statuses.
// The only legal paths are pending->assigned->completed and
// pending/assigned->cancelled.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusAssigned || to == StatusCancelled
	case StatusAssigned:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// Booking Model
type Booking struct {
	ID            uint    `gorm:"primaryKey" json:"id"`                         // Primary key
	ResidentID    uint    `gorm:"not null;index" json:"resident_id"`            // Foreign key to the resident User
	CollectorID   *uint   `json:"collector_id,omitempty"`                       // Foreign key to the collector User, set on assignment
	ScheduledDate string  `gorm:"not null" json:"scheduled_date"`               // Pickup date, YYYY-MM-DD
	WasteType     string  `gorm:"not null" json:"waste_type"`                   // Lowercased waste category
	Zone          string  `json:"zone,omitempty"`                               // Copied from the resident at creation
	Status        string  `gorm:"not null;default:pending;index" json:"status"` // One of the Status constants
	WeightKG      float64 `json:"weight_kg"`                                    // Recorded by the collector at completion
	DriverNotes   string  `json:"driver_notes,omitempty"`                       // Free-form notes, resident hints or reported issues
	CreatedAt     int64   `gorm:"autoCreateTime:milli" json:"created_at"`       // Timestamp of creation in milliseconds
}
