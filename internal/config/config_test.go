package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, ":3000", cfg.HTTPAddress)
	require.Equal(t, "journal.api", cfg.JWTIssuer)
	require.Equal(t, 30*24*time.Hour, cfg.JWTTTL)
	require.Equal(t, 100, cfg.ListLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9999")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("LIST_LIMIT", "25")

	cfg := Load()
	require.Equal(t, ":9999", cfg.HTTPAddress)
	require.Equal(t, time.Hour, cfg.JWTTTL)
	require.Equal(t, 25, cfg.ListLimit)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("LIST_LIMIT", "many")

	cfg := Load()
	require.Equal(t, 30*24*time.Hour, cfg.JWTTTL)
	require.Equal(t, 100, cfg.ListLimit)
}
