package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gen-data-go/generator"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "./gen_data.xlsx", cfg.Output)
	assert.Equal(t, 1000, cfg.Count)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, RedisConfig{Addr: "127.0.0.1:6379", DB: 8}, cfg.Redis)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, generator.DefaultOptions(), cfg.GeneratorOptions())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configuration.yaml")
	require.NoError(t, os.WriteFile(path, []byte("count: 10\nredis:\n  db: 2\nhttp-server:\n  port: \"9090\"\n"), 0o644))
	t.Setenv("GENDATA_OUTPUT", "/tmp/out.xlsx")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Count)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/out.xlsx", cfg.Output)
	assert.Equal(t, 10, cfg.GeneratorOptions().Count)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
