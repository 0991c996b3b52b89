package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want RoleName
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{"ROLE_ADMIN", RoleAdmin, true},
		{" Role_Admin ", RoleAdmin, true},
		{"user", RoleUser, true},
		{"ROLE_USER", RoleUser, true},
		{"superuser", RoleUser, false},
		{"", RoleUser, false},
	}
	for _, c := range cases {
		got, ok := ParseRole(c.in)
		require.Equal(t, c.want, got, c.in)
		require.Equal(t, c.ok, ok, c.in)
	}
}

func TestUserRoleLevel(t *testing.T) {
	u := User{Roles: []Role{{Name: RoleUser}}}
	require.Equal(t, 0, u.RoleLevel())
	require.False(t, u.HasRole(RoleAdmin))

	u.Roles = append(u.Roles, Role{Name: RoleAdmin})
	require.Equal(t, 1, u.RoleLevel())
	require.ElementsMatch(t, []string{"ROLE_USER", "ROLE_ADMIN"}, u.RoleNames())
}

func TestBorrowRecordIsOverdue(t *testing.T) {
	now := time.Now()
	b := BorrowRecord{Status: BorrowBorrowed, ExpectedReturnDate: now.Add(-time.Hour)}
	require.True(t, b.IsOverdue(now))

	b.ExpectedReturnDate = now.Add(time.Hour)
	require.False(t, b.IsOverdue(now))

	b.Status = BorrowOverdue
	require.True(t, b.IsOverdue(now))

	b.Status = BorrowReturned
	b.ExpectedReturnDate = now.Add(-time.Hour)
	require.False(t, b.IsOverdue(now))
}

func TestValidEquipmentStatus(t *testing.T) {
	require.True(t, ValidEquipmentStatus("可用"))
	require.True(t, ValidEquipmentStatus("报废"))
	require.False(t, ValidEquipmentStatus("不可用"))
}
