package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, "careerpilot.events", cfg.AMQPExchange)
	assert.Contains(t, cfg.DSN(), "dbname=careerpilot")
}

func TestLoad_FileOverriddenByEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store_backend: memory\nport: \"9000\"\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "9100", cfg.Port)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Config{StoreBackend: BackendMemory}).Validate())
	assert.Error(t, (&Config{JWTSecret: "s", StoreBackend: BackendPostgres}).Validate())
	assert.Error(t, (&Config{JWTSecret: "s", DBPassword: "pw", StoreBackend: "sqlite"}).Validate())
	assert.NoError(t, (&Config{JWTSecret: "s", DBPassword: "pw", StoreBackend: BackendMongo}).Validate())
	assert.NoError(t, (&Config{JWTSecret: "s", DBPassword: "pw", StoreBackend: BackendMemory}).Validate())
}

func TestOrigins(t *testing.T) {
	c := &Config{CORSOrigins: "https://a.dev, https://b.dev,"}
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, c.Origins())
}
