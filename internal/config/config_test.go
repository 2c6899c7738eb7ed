package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"relief-portal-go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUPABASE_URL", "https://demo.supabase.co/")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "anon")

	cfg, err := Load(logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendPostgREST, cfg.Backend)
	assert.Equal(t, "https://demo.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, 10*time.Second, cfg.Supabase.Timeout)
	assert.Zero(t, cfg.Cache.StaleTime)
}

func TestLoadRequiresSupabaseForPostgREST(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "")
	t.Setenv("VITE_SUPABASE_PUBLISHABLE_KEY", "")

	_, err := Load(logger.Nop())
	assert.ErrorIs(t, err, ErrSupabaseNotConfigured)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BACKEND", "mysql")

	_, err := Load(logger.Nop())
	assert.Error(t, err)
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	content := "BACKEND=postgres\nHTTP_PORT=9000\nCORS_ORIGINS=https://a.example, https://b.example\nCACHE_STALE_TIME=30s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	nested := filepath.Join(dir, "cmd", "relief-portal")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)
	t.Setenv("HTTP_PORT", "7000")
	for _, key := range []string{"BACKEND", "CORS_ORIGINS", "CACHE_STALE_TIME"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.HTTPPort)
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.Cache.StaleTime)
}
