package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to assigned", StatusPending, StatusAssigned, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"assigned to completed", StatusAssigned, StatusCompleted, true},
		{"assigned to cancelled", StatusAssigned, StatusCancelled, true},
		{"pending to completed skips assignment", StatusPending, StatusCompleted, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusAssigned, false},
		{"no reopening", StatusCompleted, StatusPending, false},
		{"no unassigning", StatusAssigned, StatusPending, false},
		{"unknown status", "lost", StatusCancelled, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleResident))
	assert.True(t, ValidRole(RoleCollector))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
