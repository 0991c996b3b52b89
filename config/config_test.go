package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitReadsFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
prefix: /api/
mode: release
mysql:
  host: db.local
  db_name: lending
borrow:
  default_days: 14
`), 0o644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("EQUIP_MYSQL_HOST", "db.override")
	t.Setenv("EQUIP_AI_API_KEY", "sk-test")
	t.Cleanup(func() { Set(nil) })

	Init()
	c := Get()

	require.Equal(t, "api", c.Prefix)
	require.Equal(t, ModeRelease, c.Mode)
	require.Equal(t, "db.override", c.Mysql.Host)
	require.Equal(t, "lending", c.Mysql.DBName)
	require.Equal(t, "3306", c.Mysql.Port)
	require.Equal(t, 14, c.Borrow.DefaultDays)
	require.Equal(t, "sk-test", c.AI.ApiKey)
	require.Equal(t, 10, c.AI.HistorySize)
}

func TestGetFallsBackToDefaults(t *testing.T) {
	Set(nil)
	t.Cleanup(func() { Set(nil) })

	c := Get()
	require.Equal(t, ModeDebug, c.Mode)
	require.Equal(t, 7, c.Borrow.DefaultDays)
	require.Equal(t, "admin", c.Seed.AdminUsername)
}
