package db

import (
	"ecosort/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Seed account password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// SchemaVersion is bumped whenever the table set or a column changes
const SchemaVersion = 1

// SchemaMeta pins the migrated schema version in the database itself
type SchemaMeta struct {
	ID      uint `gorm:"primaryKey"`
	Version int  `gorm:"not null"`
}

// Migrate creates or updates the schema, stamps the schema version and seeds
// the reward catalog. With seedDemo set it also creates the demo accounts
// used for local testing.
func Migrate(gdb *gorm.DB, seedDemo bool) error {
	err := gdb.AutoMigrate(
		&domain.User{},
		&domain.Booking{},
		&domain.LedgerEntry{},
		&domain.Reward{},
		&SchemaMeta{},
	)
	if err != nil {
		return err
	}
	if err := stampVersion(gdb); err != nil {
		return err
	}
	if err := seedRewards(gdb); err != nil {
		return err
	}
	if seedDemo {
		if err := seedUsers(gdb); err != nil {
			return err
		}
	}
	logrus.Info("Migration completed.")
	return nil
}

// stampVersion records the schema version this binary migrated to
func stampVersion(gdb *gorm.DB) error {
	meta := SchemaMeta{ID: 1}
	if err := gdb.FirstOrCreate(&meta).Error; err != nil {
		return err
	}
	if meta.Version != SchemaVersion {
		logrus.WithFields(logrus.Fields{
			"from": meta.Version,
			"to":   SchemaVersion,
		}).Info("Schema version updated")
	}
	return gdb.Model(&meta).Update("version", SchemaVersion).Error
}

// seedRewards inserts the default catalog items if they are missing
func seedRewards(gdb *gorm.DB) error {
	defaults := []domain.Reward{
		{Name: "Tesco RM10 Voucher", Cost: 500},
		{Name: "GrabFood RM5 Discount", Cost: 250},
		{Name: "Metal Straw Set", Cost: 100},
		{Name: "EcoSort T-Shirt", Cost: 1000},
		{Name: "Netflix 1-Month Sub", Cost: 1500},
	}
	for _, r := range defaults {
		reward := r
		if err := gdb.Where("name = ?", reward.Name).FirstOrCreate(&reward).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedUsers creates the demo accounts, skipping any that already exist
func seedUsers(gdb *gorm.DB) error {
	demo := []domain.User{
		{Username: "afiq", Role: domain.RoleAdmin},
		{Username: "min", Role: domain.RoleAdmin},
		{Username: "fathul", Role: domain.RoleCollector, Zone: "Zone A"},
		{Username: "amir", Role: domain.RoleCollector, Zone: "Zone B"},
		{Username: "john", Role: domain.RoleResident, Address: "12 Jalan Teknokrat 3", Zone: "Zone A"},
	}
	// Demo password, bcrypt-hashed like every other account.
	hash, err := bcrypt.GenerateFromPassword([]byte("123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	for _, u := range demo {
		user := u
		user.Password = string(hash)
		if err := gdb.Where("username = ?", user.Username).FirstOrCreate(&user).Error; err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"username": user.Username,
			"role":     user.Role,
		}).Info("Seed account ready")
	}
	return nil
}
