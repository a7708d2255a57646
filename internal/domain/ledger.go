package domain

// LedgerEntry Model. Rows are append-only: a resident's displayed balance is
// always the sum of their deltas, there is no mutable balance column.
type LedgerEntry struct {
	ID          uint   `gorm:"primaryKey" json:"id"`                   // Primary key
	ResidentID  uint   `gorm:"not null;index" json:"resident_id"`      // Foreign key to the resident User
	BookingID   *uint  `json:"booking_id,omitempty"`                   // Set for pickup accruals, nil for redemptions
	PointsDelta int    `gorm:"not null" json:"points_delta"`           // Positive for accrual, negative for redemption
	Reason      string `gorm:"not null" json:"reason"`                 // Human-readable cause
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
