package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "8080"
mongo:
  uri: "mongodb://localhost:27017"
  dbName: "campus_bus_test"
jwt:
  secret: "file-secret"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	// Environment beats the file.
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "campus_bus_test", cfg.Mongo.DBName)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
}
