package store

import (
	"errors" // Sentinel error checks

	"ecosort/internal/domain" // Domain models and errors

	"gorm.io/gorm" // GORM ORM library
)

// Balance returns a resident's point total, always derived as the sum of
// their ledger entries.
func (s *Store) Balance(residentID uint) (int, error) {
	var balance int64
	err := s.db.Model(&domain.LedgerEntry{}).
		Where("resident_id = ?", residentID).
		Select("COALESCE(SUM(points_delta), 0)").
		Scan(&balance).Error
	return int(balance), err
}

// LedgerEntries returns a resident's ledger history, newest first
func (s *Store) LedgerEntries(residentID uint) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := s.db.Where("resident_id = ?", residentID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

// LeaderboardRow is one line of the top-recyclers listing
type LeaderboardRow struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// Leaderboard ranks residents by ledger balance
func (s *Store) Leaderboard(limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := s.db.Model(&domain.LedgerEntry{}).
		Select("users.username AS username, COALESCE(SUM(ledger_entries.points_delta), 0) AS points").
		Joins("JOIN users ON users.id = ledger_entries.resident_id").
		Group("users.username").
		Order("points desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// Rewards returns the redeemable catalog
func (s *Store) Rewards() ([]domain.Reward, error) {
	var rewards []domain.Reward
	err := s.db.Order("cost").Find(&rewards).Error
	return rewards, err
}

// Redeem spends points on a catalog item by appending a negative ledger
// entry. The balance is re-checked inside the transaction so the ledger can
// not be driven below zero by concurrent redemptions.
func (s *Store) Redeem(residentID, rewardID uint) (*domain.Reward, error) {
	var reward domain.Reward
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reward, rewardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		var balance int64
		err := tx.Model(&domain.LedgerEntry{}).
			Where("resident_id = ?", residentID).
			Select("COALESCE(SUM(points_delta), 0)").
			Scan(&balance).Error
		if err != nil {
			return err
		}
		if balance < int64(reward.Cost) {
			return domain.ErrInsufficientPoints
		}
		entry := domain.LedgerEntry{
			ResidentID:  residentID,
			PointsDelta: -reward.Cost,
			Reason:      "redeemed: " + reward.Name,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &reward, nil
}
