package store

import (
	"errors"  // Sentinel error checks
	"math"    // Points rounding
	"strings" // Waste type normalization

	"ecosort/internal/domain" // Domain models and errors

	"gorm.io/gorm" // GORM ORM library
)

// CreateBooking opens a new pending pickup for a resident. The resident's
// zone is stamped onto the booking so collectors can filter their manifest
// without a join.
func (s *Store) CreateBooking(residentID uint, scheduledDate, wasteType, notes string) (*domain.Booking, error) {
	var resident domain.User
	if err := s.db.First(&resident, residentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if resident.Role != domain.RoleResident {
		return nil, domain.ErrNotFound
	}
	booking := &domain.Booking{
		ResidentID:    residentID,
		ScheduledDate: scheduledDate,
		WasteType:     strings.ToLower(wasteType),
		Zone:          resident.Zone,
		Status:        domain.StatusPending,
		DriverNotes:   notes,
	}
	if err := s.db.Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

// ListBookingsByResident returns a resident's bookings, newest first
func (s *Store) ListBookingsByResident(residentID uint) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := s.db.Where("resident_id = ?", residentID).
		Order("created_at desc").
		Find(&bookings).Error
	return bookings, err
}

// PendingJobs returns the open manifest, optionally filtered to one zone
func (s *Store) PendingJobs(zone string) ([]domain.Booking, error) {
	query := s.db.Where("status = ?", domain.StatusPending)
	if zone != "" {
		query = query.Where("zone = ?", zone)
	}
	var jobs []domain.Booking
	err := query.Order("scheduled_date, created_at").Find(&jobs).Error
	return jobs, err
}

// transition performs the guarded status move. The status predicate in the
// WHERE clause is the compare-and-swap: if another request already moved the
// booking, zero rows match and the update is rejected instead of lost.
func transition(tx *gorm.DB, id uint, from, to string, extra map[string]any) error {
	if !domain.CanTransition(from, to) {
		return domain.ErrInvalidTransition
	}
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// classify distinguishes a missing booking from a booking in the wrong state
// after a failed CAS
func classify(tx *gorm.DB, id uint, err error) error {
	if !errors.Is(err, domain.ErrInvalidTransition) {
		return err
	}
	var count int64
	if cerr := tx.Model(&domain.Booking{}).Where("id = ?", id).Count(&count).Error; cerr != nil {
		return cerr
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return err
}

// AssignBooking moves a pending booking to assigned and records the
// collector taking it
func (s *Store) AssignBooking(id, collectorID uint) (*domain.Booking, error) {
	var booking domain.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, id, domain.StatusPending, domain.StatusAssigned, map[string]any{"collector_id": collectorID}); err != nil {
			return classify(tx, id, err)
		}
		return tx.First(&booking, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CompleteBooking finishes an assigned pickup: the status CAS, the recorded
// weight and exactly one positive ledger entry commit or roll back together,
// so two collectors racing on the same job cannot credit the resident twice.
func (s *Store) CompleteBooking(id uint, weightKG float64, rates map[string]float64) (*domain.Booking, *domain.LedgerEntry, error) {
	var booking domain.Booking
	var entry domain.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := transition(tx, id, domain.StatusAssigned, domain.StatusCompleted, map[string]any{"weight_kg": weightKG}); err != nil {
			return err
		}
		points := int(math.Round(rates[booking.WasteType] * weightKG))
		bookingID := booking.ID
		entry = domain.LedgerEntry{
			ResidentID:  booking.ResidentID,
			BookingID:   &bookingID,
			PointsDelta: points,
			Reason:      "pickup completed: " + booking.WasteType,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		booking.Status = domain.StatusCompleted
		booking.WeightKG = weightKG
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &booking, &entry, nil
}

// CancelBooking cancels a pending or assigned booking. A pending booking can
// always be cancelled by its resident; who may cancel an assigned one is the
// operator's CancelAssigned policy.
func (s *Store) CancelBooking(id uint, actor *domain.User, policy string) (*domain.Booking, error) {
	var booking domain.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if !domain.CanTransition(booking.Status, domain.StatusCancelled) {
			return domain.ErrInvalidTransition
		}
		if !cancelAllowed(&booking, actor, policy) {
			return domain.ErrCancelNotAllowed
		}
		if err := transition(tx, id, booking.Status, domain.StatusCancelled, nil); err != nil {
			return err
		}
		booking.Status = domain.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// cancelAllowed applies ownership and the assigned-cancel policy
func cancelAllowed(b *domain.Booking, actor *domain.User, policy string) bool {
	switch b.Status {
	case domain.StatusPending:
		// Collectors skip pending jobs rather than cancelling them.
		return actor.Role == domain.RoleResident && b.ResidentID == actor.ID
	case domain.StatusAssigned:
		switch actor.Role {
		case domain.RoleResident:
			return (policy == domain.CancelByAny || policy == domain.CancelByResident) && b.ResidentID == actor.ID
		case domain.RoleCollector:
			return (policy == domain.CancelByAny || policy == domain.CancelByCollector) &&
				b.CollectorID != nil && *b.CollectorID == actor.ID
		}
	}
	return false
}

// RecordIssue attaches a driver note to an open booking without touching its
// status; the status set is closed and has no issue state.
func (s *Store) RecordIssue(id uint, note string) error {
	res := s.db.Model(&domain.Booking{}).
		Where("id = ? AND status IN ?", id, []string{domain.StatusPending, domain.StatusAssigned}).
		Update("driver_notes", note)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BookingFilter narrows the admin booking listing
type BookingFilter struct {
	ResidentID string // Filter by resident, empty = all
	Status     string // Filter by status, empty = all
	WasteType  string // Filter by waste type, empty = all
	From       string // Scheduled-date lower bound, inclusive
	To         string // Scheduled-date upper bound, inclusive
	Page       int
	PageSize   int
}

// ListBookings returns one filtered page of all bookings for the admin view
func (s *Store) ListBookings(f BookingFilter) ([]domain.Booking, int64, error) {
	query := s.db.Model(&domain.Booking{})
	if f.ResidentID != "" {
		query = query.Where("resident_id = ?", f.ResidentID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.WasteType != "" {
		query = query.Where("waste_type = ?", strings.ToLower(f.WasteType))
	}
	if f.From != "" {
		query = query.Where("scheduled_date >= ?", f.From)
	}
	if f.To != "" {
		query = query.Where("scheduled_date <= ?", f.To)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bookings []domain.Booking
	err := query.Order("created_at desc").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// Stats are the admin dashboard headline numbers
type Stats struct {
	TotalUsers        int64   `json:"total_users"`
	CompletedWeightKG float64 `json:"completed_weight_kg"`
	PendingCount      int64   `json:"pending_count"`
}

// GetStats aggregates the dashboard numbers
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats
	if err := s.db.Model(&domain.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	err := s.db.Model(&domain.Booking{}).
		Where("status = ?", domain.StatusCompleted).
		Select("COALESCE(SUM(weight_kg), 0)").
		Scan(&stats.CompletedWeightKG).Error
	if err != nil {
		return nil, err
	}
	err = s.db.Model(&domain.Booking{}).
		Where("status = ?", domain.StatusPending).
		Count(&stats.PendingCount).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
