package domain

// Reward Model: a catalog item redeemable for eco-points.
type Reward struct {
	ID   uint   `gorm:"primaryKey" json:"id"`        // Primary key
	Name string `gorm:"unique;not null" json:"name"` // Item name
	Cost int    `gorm:"not null" json:"cost"`        // Price in eco-points
}
