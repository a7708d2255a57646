package store_test

import (
	"strings"
	"testing"

	"ecosort/internal/db"
	"ecosort/internal/domain"
	"ecosort/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a private in-memory sqlite database per test. The named
// shared-cache DSN plus a single pooled connection keeps gorm from seeing a
// fresh empty database on every new connection.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	gdb, err := store.Open("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb, false))
	return store.New(gdb)
}

func mustRegister(t *testing.T, st *store.Store, username, role, zone string) *domain.User {
	t.Helper()
	user, err := st.Register(username, "password123", role, "12 Jalan Teknokrat 3", zone)
	require.NoError(t, err)
	return user
}

func TestRegisterDuplicateUser(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Register("alice", "password123", domain.RoleResident, "1 Main St", "Zone A")
	require.NoError(t, err)

	// Same username again, case-insensitively.
	_, err = st.Register("Alice", "otherpassword", domain.RoleResident, "2 Main St", "Zone B")
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestAuthenticate(t *testing.T) {
	st := newTestStore(t)
	mustRegister(t, st, "alice", domain.RoleResident, "Zone A")

	_, err := st.Authenticate("alice", "wrongpassword")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = st.Authenticate("nobody", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	user, err := st.Authenticate("Alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.RoleResident, user.Role)
}

func TestAssignZone(t *testing.T) {
	st := newTestStore(t)
	mustRegister(t, st, "fathul", domain.RoleCollector, "Zone A")
	resident := mustRegister(t, st, "john", domain.RoleResident, "Zone A")

	require.NoError(t, st.AssignZone("fathul", "Zone C"))

	collector, err := st.Authenticate("fathul", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Zone C", collector.Zone)

	// Residents are not reassignable and unknown names are not found.
	assert.ErrorIs(t, st.AssignZone("john", "Zone B"), domain.ErrNotFound)
	assert.ErrorIs(t, st.AssignZone("ghost", "Zone B"), domain.ErrNotFound)

	// The resident's zone is untouched.
	unchanged, err := st.GetUser(resident.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zone A", unchanged.Zone)
}

func TestListUsersIncludesBalances(t *testing.T) {
	st := newTestStore(t)
	resident := mustRegister(t, st, "john", domain.RoleResident, "Zone A")
	collector := mustRegister(t, st, "fathul", domain.RoleCollector, "Zone A")

	booking, err := st.CreateBooking(resident.ID, "2031-01-02", "recyclable", "")
	require.NoError(t, err)
	_, err = st.AssignBooking(booking.ID, collector.ID)
	require.NoError(t, err)
	_, _, err = st.CompleteBooking(booking.ID, 3, map[string]float64{"recyclable": 10})
	require.NoError(t, err)

	rows, total, err := st.ListUsers(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)

	byName := map[string]store.UserAdminRow{}
	for _, r := range rows {
		byName[r.Username] = r
	}
	assert.Equal(t, 30, byName["john"].Points)
	assert.Equal(t, 0, byName["fathul"].Points)
}
