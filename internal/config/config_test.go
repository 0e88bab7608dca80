package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "local", cfg.KeyOrigin)
	assert.False(t, cfg.KeyFallbackToLocal)
	assert.Equal(t, int64(25*1024*1024), cfg.MaxUploadSizeBytes)
	assert.Contains(t, cfg.AllowedContentTypes, "application/pdf")
	assert.Equal(t, 730, cfg.AuditRetentionDays)
	assert.Equal(t, 730, cfg.RetentionLegalDays)
	assert.Equal(t, 2190, cfg.RetentionMedicalDays)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KEY_ORIGIN", "managed")
	t.Setenv("ALLOWED_CONTENT_TYPES", "application/pdf, image/png")
	t.Setenv("AUDIT_RETENTION_DAYS", "365")

	cfg := Load()

	assert.Equal(t, "managed", cfg.KeyOrigin)
	assert.Equal(t, []string{"application/pdf", "image/png"}, cfg.AllowedContentTypes)
	assert.Equal(t, 365, cfg.AuditRetentionDays)
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		want     string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, cfg.GetGinMode())
		})
	}
}
