package jwt

import (
	"testing"

	"equipment-lending-system/config"

	"github.com/stretchr/testify/require"
)

func TestCreateAndParseToken(t *testing.T) {
	config.Set(&config.Config{JWT: config.JWT{AccessSecret: "secret", AccessExpire: 60}})
	t.Cleanup(func() { config.Set(nil) })

	token, err := CreateToken(Payload{UserID: 7, Username: "alice", Roles: []string{"ROLE_ADMIN"}, RoleID: 1})
	require.NoError(t, err)

	claims, ok := ParseToken(token)
	require.True(t, ok)
	require.Equal(t, uint(7), claims.UserID)
	require.True(t, claims.IsAdmin())

	_, ok = ParseToken(token + "x")
	require.False(t, ok)
}

func TestExpiredToken(t *testing.T) {
	config.Set(&config.Config{JWT: config.JWT{AccessSecret: "secret", AccessExpire: -60}})
	t.Cleanup(func() { config.Set(nil) })

	token, err := CreateToken(Payload{UserID: 1})
	require.NoError(t, err)
	_, ok := ParseToken(token)
	require.False(t, ok)
}
