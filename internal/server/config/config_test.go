package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddr)
	assert.Equal(t, 5, c.LockoutThreshold)
	assert.Equal(t, 15*time.Minute, c.LockoutWindow)
	assert.InDelta(t, 5.0, c.RateLimitRPS, 0.001)
	assert.Equal(t, 10, c.RateLimitBurst)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("INKWELL_ADDR", ":9999")
	t.Setenv("INKWELL_DATABASE_DSN", "postgres://u:p@h:5432/db")
	t.Setenv("INKWELL_LOCKOUT_THRESHOLD", "3")
	t.Setenv("INKWELL_LOCKOUT_WINDOW", "5m")

	var c Config
	c.LoadDefaults()
	loadEnv(&c)

	assert.Equal(t, ":9999", c.EndpointAddr)
	assert.Equal(t, "postgres://u:p@h:5432/db", c.DatabaseDSN)
	assert.Equal(t, 3, c.LockoutThreshold)
	assert.Equal(t, 5*time.Minute, c.LockoutWindow)
}

func TestLoadEnv_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("INKWELL_LOCKOUT_THRESHOLD", "many")
	t.Setenv("INKWELL_LOCKOUT_WINDOW", "soon")

	var c Config
	c.LoadDefaults()
	loadEnv(&c)

	assert.Equal(t, 5, c.LockoutThreshold)
	assert.Equal(t, 15*time.Minute, c.LockoutWindow)
}
