package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	req := require.New(t)

	cfg, err := Load()
	req.NoError(err)
	req.Equal(5001, cfg.Server.Port)
	req.Equal("development", cfg.Environment)
	req.Equal(24*time.Hour, cfg.JWT.AccessTTL)
	req.Equal("uploads", cfg.Upload.Dir)
	req.Equal(int64(10<<20), cfg.Upload.MaxFileSize)
	req.Equal("/uploads", cfg.Upload.BasePath)
	req.Equal("info", cfg.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	req := require.New(t)

	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("UPLOAD_DIR", "/var/lib/messenger/uploads")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(8080, cfg.Server.Port)
	req.Equal(15*time.Minute, cfg.JWT.AccessTTL)
	req.Equal("/var/lib/messenger/uploads", cfg.Upload.Dir)
	req.Equal("debug", cfg.Log.Level)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	req := require.New(t)

	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("JWT_ACCESS_TTL", "soon")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(5001, cfg.Server.Port)
	req.Equal(24*time.Hour, cfg.JWT.AccessTTL)
}
