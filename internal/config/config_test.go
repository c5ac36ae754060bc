package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Polling.ContentKit)
	assert.Equal(t, 5*time.Second, cfg.Polling.Transcription)
	assert.Equal(t, 5*time.Second, cfg.Polling.PDF)
	assert.Equal(t, 10*time.Minute, cfg.Backend.UploadTimeout)
	assert.Equal(t, "/content/extract", cfg.Backend.ExtractPath)
	assert.Equal(t, 30*time.Minute, cfg.Gateway.JobTimeout)
	assert.Empty(t, cfg.Backend.BaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("BACKEND_BASE_URL", "https://api.example.com/")
	t.Setenv("POLL_CONTENT_KIT", "250ms")
	t.Setenv("BACKEND_UPLOAD_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Polling.ContentKit)
	assert.Equal(t, 30*time.Second, cfg.Backend.UploadTimeout)
}

func TestReadSecret_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte("s3cr3t\n"), 0o600))

	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_SECRET_FILE", path)

	readSecret("JWT_SECRET")
	assert.Equal(t, "s3cr3t", os.Getenv("JWT_SECRET"))
}

func TestZitadelConfig_IssuerURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  ZitadelConfig
		want string
	}{
		{"issuer wins", ZitadelConfig{Domain: "auth.example.com", Issuer: "https://issuer.example.com/"}, "https://issuer.example.com"},
		{"from domain", ZitadelConfig{Domain: "auth.example.com"}, "https://auth.example.com"},
		{"domain with scheme", ZitadelConfig{Domain: "http://localhost:8080/"}, "http://localhost:8080"},
		{"unset", ZitadelConfig{ClientID: "kit"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.IssuerURL())
		})
	}
}
