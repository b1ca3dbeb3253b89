package config

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	t.Setenv("DB_PASSWORD", "test")
	t.Setenv("ENCRYPTION_KEY", testKey)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)

	assert.Equal(t, 3, cfg.Auth.LoginMaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Auth.BackendTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Auth.LoginSessionTTL)
	assert.Equal(t, uint(1), cfg.Auth.TOTPSkew)
	assert.Equal(t, "passguard", cfg.Auth.TOTPIssuer)
	assert.Len(t, cfg.Auth.EncryptionKey, 32)

	assert.Equal(t, 8, cfg.Policy.MinPasswordLength)
	assert.Empty(t, cfg.Generator.DicewarePath)
	assert.False(t, cfg.Remote())
	assert.NotEmpty(t, cfg.Server.AllowedOrigins)
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_READ_TIMEOUT", "30s")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "5")
	t.Setenv("BACKEND_TIMEOUT", "2s")
	t.Setenv("PASSWORD_MIN_LENGTH", "15")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1/32")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5, cfg.Auth.LoginMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Auth.BackendTimeout)
	assert.Equal(t, 15, cfg.Policy.MinPasswordLength)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1/32"}, cfg.Server.TrustedProxies)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_ZeroTimeoutHonored(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_READ_TIMEOUT", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Server.ReadTimeout)
}

func TestLoad_RequiredValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			env:     map[string]string{"DB_PASSWORD": "x", "ENCRYPTION_KEY": testKey},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "short jwt secret",
			env:     map[string]string{"JWT_SECRET": "short", "DB_PASSWORD": "x", "ENCRYPTION_KEY": testKey},
			wantErr: "at least 16 characters",
		},
		{
			name:    "production needs longer secret",
			env:     map[string]string{"ENV": "production", "JWT_SECRET": "sixteen-chars-ok", "DB_PASSWORD": "x", "ENCRYPTION_KEY": testKey},
			wantErr: "at least 32 characters",
		},
		{
			name:    "missing db password",
			env:     map[string]string{"JWT_SECRET": "test-secret-32-characters-long!", "ENCRYPTION_KEY": testKey},
			wantErr: "DB_PASSWORD is required",
		},
		{
			name:    "missing encryption key",
			env:     map[string]string{"JWT_SECRET": "test-secret-32-characters-long!", "DB_PASSWORD": "x"},
			wantErr: "ENCRYPTION_KEY",
		},
		{
			name:    "zero attempts",
			env:     map[string]string{"JWT_SECRET": "test-secret-32-characters-long!", "DB_PASSWORD": "x", "ENCRYPTION_KEY": testKey, "LOGIN_MAX_ATTEMPTS": "0"},
			wantErr: "LOGIN_MAX_ATTEMPTS",
		},
		{
			name:    "min length out of range",
			env:     map[string]string{"JWT_SECRET": "test-secret-32-characters-long!", "DB_PASSWORD": "x", "ENCRYPTION_KEY": testKey, "PASSWORD_MIN_LENGTH": "500"},
			wantErr: "PASSWORD_MIN_LENGTH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"JWT_SECRET", "DB_PASSWORD", "ENCRYPTION_KEY", "ENV", "LOGIN_MAX_ATTEMPTS", "PASSWORD_MIN_LENGTH", "BACKEND_URL"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RemoteBackendSkipsLocalStore(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("ENCRYPTION_KEY", "")
	t.Setenv("BACKEND_URL", "https://identity.example/api/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Remote())
	assert.Equal(t, "https://identity.example/api", cfg.Backend.URL)
	assert.Nil(t, cfg.Auth.EncryptionKey)
}

func TestValidateJWTSecret_WeakValue(t *testing.T) {
	err := validateJWTSecret("changeme", "development")
	assert.Error(t, err)
}
