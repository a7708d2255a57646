package store_test

import (
	"testing"

	"ecosort/internal/domain"
	"ecosort/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRates = map[string]float64{"recyclable": 10, "e-waste": 25}

func TestBookingLifecycle(t *testing.T) {
	st := newTestStore(t)
	alice := mustRegister(t, st, "alice", domain.RoleResident, "Zone A")
	collector := mustRegister(t, st, "fathul", domain.RoleCollector, "Zone A")

	booking, err := st.CreateBooking(alice.ID, "2031-06-01", "Recyclable", "gate code 4471")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, booking.Status)
	assert.Equal(t, "recyclable", booking.WasteType)
	assert.Equal(t, "Zone A", booking.Zone)

	assigned, err := st.AssignBooking(booking.ID, collector.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, assigned.Status)
	require.NotNil(t, assigned.CollectorID)
	assert.Equal(t, collector.ID, *assigned.CollectorID)

	completed, entry, err := st.CompleteBooking(booking.ID, 2, testRates)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	assert.Equal(t, 2.0, completed.WeightKG)

	// Exactly one positive ledger entry, tied to the booking.
	require.NotNil(t, entry.BookingID)
	assert.Equal(t, booking.ID, *entry.BookingID)
	assert.Equal(t, alice.ID, entry.ResidentID)
	assert.Equal(t, 20, entry.PointsDelta)

	entries, err := st.LedgerEntries(alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	balance, err := st.Balance(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
}

func TestIllegalTransitions(t *testing.T) {
	st := newTestStore(t)
	alice := mustRegister(t, st, "alice", domain.RoleResident, "Zone A")
	collector := mustRegister(t, st, "fathul", domain.RoleCollector, "Zone A")

	booking, err := st.CreateBooking(alice.ID, "2031-06-01", "recyclable", "")
	require.NoError(t, err)

	// Completing a booking nobody has taken skips a state.
	_, _, err = st.CompleteBooking(booking.ID, 2, testRates)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = st.AssignBooking(booking.ID, collector.ID)
	require.NoError(t, err)

	// Double assignment loses the CAS.
	_, err = st.AssignBooking(booking.ID, collector.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, _, err = st.CompleteBooking(booking.ID, 2, testRates)
	require.NoError(t, err)

	// Completed is terminal: no second completion, no cancellation.
	_, _, err = st.CompleteBooking(booking.ID, 2, testRates)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = st.CancelBooking(booking.ID, alice, domain.CancelByAny)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// The race that mattered: the ledger holds exactly one entry.
	entries, err := st.LedgerEntries(alice.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Unknown bookings are reported as missing, not as bad transitions.
	_, err = st.AssignBooking(9999, collector.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelPendingBooking(t *testing.T) {
	st := newTestStore(t)
	alice := mustRegister(t, st, "alice", domain.RoleResident, "Zone A")
	mallory := mustRegister(t, st, "mallory", domain.RoleResident, "Zone B")

	booking, err := st.CreateBooking(alice.ID, "2031-06-01", "recyclable", "")
	require.NoError(t, err)

	// Only the owning resident may cancel.
	_, err = st.CancelBooking(booking.ID, mallory, domain.CancelByAny)
	assert.ErrorIs(t, err, domain.ErrCancelNotAllowed)

	cancelled, err := st.CancelBooking(booking.ID, alice, domain.CancelByAny)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	// Cancellation accrues nothing.
	entries, err := st.LedgerEntries(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCancelAssignedPolicy(t *testing.T) {
	st := newTestStore(t)
	alice := mustRegister(t, st, "alice", domain.RoleResident, "Zone A")
	fathul := mustRegister(t, st, "fathul", domain.RoleCollector, "Zone A")
	amir := mustRegister(t, st, "amir", domain.RoleCollector, "Zone A")

	newAssigned := func() *domain.Booking {
		b, err := st.CreateBooking(alice.ID, "2031-06-01", "recyclable", "")
		require.NoError(t, err)
		_, err = st.AssignBooking(b.ID, fathul.ID)
		require.NoError(t, err)
		return b
	}

	// Policy "none": nobody cancels an assigned booking.
	b := newAssigned()
	_, err := st.CancelBooking(b.ID, alice, domain.CancelByNone)
	assert.ErrorIs(t, err, domain.ErrCancelNotAllowed)
	_, err = st.CancelBooking(b.ID, fathul, domain.CancelByNone)
	assert.ErrorIs(t, err, domain.ErrCancelNotAllowed)

	// Policy "resident": the resident may, the collector may not.
	_, err = st.CancelBooking(b.ID, fathul, domain.CancelByResident)
	assert.ErrorIs(t, err, domain.ErrCancelNotAllowed)
	_, err = st.CancelBooking(b.ID, alice, domain.CancelByResident)
	require.NoError(t, err)

	// Policy "collector": only the collector holding the job.
	b = newAssigned()
	_, err = st.CancelBooking(b.ID, alice, domain.CancelByCollector)
	assert.ErrorIs(t, err, domain.ErrCancelNotAllowed)
	_, err = st.CancelBooking(b.ID, amir, domain.CancelByCollector)
	assert.ErrorIs(t, err, domain.ErrCancelNotAllowed)
	_, err = st.CancelBooking(b.ID, fathul, domain.CancelByCollector)
	require.NoError(t, err)

	// Policy "any": either side, still scoped to the participants.
	b = newAssigned()
	_, err = st.CancelBooking(b.ID, amir, domain.CancelByAny)
	assert.ErrorIs(t, err, domain.ErrCancelNotAllowed)
	_, err = st.CancelBooking(b.ID, alice, domain.CancelByAny)
	require.NoError(t, err)
}

func TestPendingJobsZoneFilter(t *testing.T) {
	st := newTestStore(t)
	john := mustRegister(t, st, "john", domain.RoleResident, "Zone A")
	jane, err := st.Register("jane", "password123", domain.RoleResident, "7 Jalan Impact", "Zone B")
	require.NoError(t, err)

	_, err = st.CreateBooking(john.ID, "2031-06-01", "recyclable", "")
	require.NoError(t, err)
	_, err = st.CreateBooking(jane.ID, "2031-06-01", "e-waste", "")
	require.NoError(t, err)

	zoneA, err := st.PendingJobs("Zone A")
	require.NoError(t, err)
	require.Len(t, zoneA, 1)
	assert.Equal(t, john.ID, zoneA[0].ResidentID)

	all, err := st.PendingJobs("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecordIssue(t *testing.T) {
	st := newTestStore(t)
	alice := mustRegister(t, st, "alice", domain.RoleResident, "Zone A")

	booking, err := st.CreateBooking(alice.ID, "2031-06-01", "recyclable", "")
	require.NoError(t, err)

	require.NoError(t, st.RecordIssue(booking.ID, "Access blocked/contaminated"))

	bookings, err := st.ListBookingsByResident(alice.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "Access blocked/contaminated", bookings[0].DriverNotes)
	// The status set is closed; flagging does not move the booking.
	assert.Equal(t, domain.StatusPending, bookings[0].Status)

	// Closed bookings reject new notes.
	_, err = st.CancelBooking(booking.ID, alice, domain.CancelByAny)
	require.NoError(t, err)
	assert.ErrorIs(t, st.RecordIssue(booking.ID, "too late"), domain.ErrNotFound)
}

func TestListBookingsFilters(t *testing.T) {
	st := newTestStore(t)
	alice := mustRegister(t, st, "alice", domain.RoleResident, "Zone A")
	collector := mustRegister(t, st, "fathul", domain.RoleCollector, "Zone A")

	early, err := st.CreateBooking(alice.ID, "2031-01-10", "recyclable", "")
	require.NoError(t, err)
	_, err = st.CreateBooking(alice.ID, "2031-03-10", "e-waste", "")
	require.NoError(t, err)
	_, err = st.AssignBooking(early.ID, collector.ID)
	require.NoError(t, err)
	_, _, err = st.CompleteBooking(early.ID, 1, testRates)
	require.NoError(t, err)

	byStatus, total, err := st.ListBookings(store.BookingFilter{Status: domain.StatusCompleted, Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byStatus, 1)
	assert.Equal(t, early.ID, byStatus[0].ID)

	byDate, total, err := st.ListBookings(store.BookingFilter{From: "2031-02-01", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "e-waste", byDate[0].WasteType)

	byType, total, err := st.ListBookings(store.BookingFilter{WasteType: "E-Waste", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "e-waste", byType[0].WasteType)
}

func TestGetStats(t *testing.T) {
	st := newTestStore(t)
	alice := mustRegister(t, st, "alice", domain.RoleResident, "Zone A")
	collector := mustRegister(t, st, "fathul", domain.RoleCollector, "Zone A")

	done, err := st.CreateBooking(alice.ID, "2031-06-01", "recyclable", "")
	require.NoError(t, err)
	_, err = st.CreateBooking(alice.ID, "2031-06-02", "recyclable", "")
	require.NoError(t, err)
	_, err = st.AssignBooking(done.ID, collector.ID)
	require.NoError(t, err)
	_, _, err = st.CompleteBooking(done.ID, 4.5, testRates)
	require.NoError(t, err)

	stats, err := st.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, 4.5, stats.CompletedWeightKG)
	assert.Equal(t, int64(1), stats.PendingCount)
}
