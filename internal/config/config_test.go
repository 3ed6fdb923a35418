package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10485760, cfg.UploadMaxSize)
	assert.Equal(t, 30*time.Second, cfg.SnapshotInterval)
	assert.Equal(t, "flat", cfg.LateFeeMode)
	assert.Equal(t, "127.0.0.1:6379", cfg.GetRedisAddr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SNAPSHOT_INTERVAL", "5s")
	t.Setenv("LATE_FEE_MODE", "percent")
	t.Setenv("LATE_FEE_GRACE_DAYS", "3")
	t.Setenv("SEED_FIXTURES", "false")
	t.Setenv("UPLOAD_MAX_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.SnapshotInterval)
	assert.Equal(t, "percent", cfg.LateFeeMode)
	assert.Equal(t, 3, cfg.LateFeeGraceDays)
	assert.False(t, cfg.SeedFixtures)
	assert.Equal(t, 10485760, cfg.UploadMaxSize)
}

func TestLoadRejectsUnknownLateFeeMode(t *testing.T) {
	t.Setenv("LATE_FEE_MODE", "weekly")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{DBUsername: "crm", DBPassword: "secret", DBHost: "db", DBPort: "3306", DBDatabase: "property_crm"}
	assert.Equal(t, "crm:secret@tcp(db:3306)/property_crm?parseTime=true&loc=UTC", cfg.GetDSN())
}
