package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRIMLINK_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "qrs", cfg.StorageBucket)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "trimlink.yaml")
	yml := "port: \"9000\"\nstorage_driver: disk\ncache_ttl: 10m\nallowed_emails:\n  - a@example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("TRIMLINK_CONFIG", path)
	t.Setenv("PORT", "9100")
	t.Setenv("ALLOWED_EMAILS", "b@example.com, c@example.com")
	t.Setenv("RECORDER_WORKERS", "2")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "disk", cfg.StorageDriver)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"b@example.com", "c@example.com"}, cfg.AllowedEmails)
	assert.Equal(t, 2, cfg.RecorderWorkers)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.TrustedProxies)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad duration", "JWT_TTL", "forever"},
		{"bad int", "RECORDER_BUFFER", "many"},
		{"bad driver", "STORAGE_DRIVER", "s3"},
		{"zero workers", "RECORDER_WORKERS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("TRIMLINK_CONFIG", "")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
