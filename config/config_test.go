package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PoolDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, int32(2), cfg.DBMinConns)
	assert.Equal(t, time.Hour, cfg.DBConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxIdleTime)
}

func TestLoad_PoolOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_MIN_CONNS", "5")
	t.Setenv("DB_CONN_MAX_LIFETIME", "15m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "90s")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.Equal(t, int32(5), cfg.DBMinConns)
	assert.Equal(t, 15*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, 90*time.Second, cfg.DBConnMaxIdleTime)
}

func TestParseTiers(t *testing.T) {
	tiers, err := ParseTiers("dogs100:100, dogs250:250,dogs500:500")
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	assert.Equal(t, "dogs100", tiers[0].ID)
	assert.Equal(t, int64(100), tiers[0].Cost)
	assert.Equal(t, int64(500), tiers[2].Cost)
}

func TestParseTiers_Invalid(t *testing.T) {
	_, err := ParseTiers("dogs100")
	assert.Error(t, err)

	_, err = ParseTiers("dogs100:-5")
	assert.Error(t, err)

	_, err = ParseTiers("")
	assert.Error(t, err)
}
