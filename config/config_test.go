package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadTestConfig(t *testing.T) {
	assert := require.New(t)
	t.Setenv("ENV", "test")

	cfg, err := Load()
	assert.NoError(err, "could not load config")

	assert.Equal("8081", cfg.GetPort())
	assert.Equal("index.bleve", cfg.GetIndexPath())
	assert.Equal("debug", cfg.GetLogLevel())

	rate, burst := cfg.GetThrottle()
	assert.Zero(rate)
	assert.Zero(burst)

	resources, err := cfg.GetResources()
	assert.NoError(err)
	assert.Equal([]Resource{
		{Name: "notes", Model: "note", AutocompleteField: "title", PageSize: 20},
		{Name: "people", Model: "person", AutocompleteField: "name", PageSize: 2},
		{Name: "tags", Model: "tag", PageSize: defaultPageSize},
	}, resources)
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	assert := require.New(t)
	t.Setenv("ENV", "test")
	t.Setenv("PORT", "9999")
	t.Setenv("STORAGE_PATH", "/tmp/elsewhere")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	assert.NoError(err, "could not load config")

	assert.Equal("9999", cfg.GetPort())
	assert.Equal("/tmp/elsewhere", cfg.GetStoragePath())
	assert.Equal("warn", cfg.GetLogLevel())
}

func TestMissingConfigFileFallsBackToEnvironment(t *testing.T) {
	assert := require.New(t)
	t.Setenv("ENV", "doesnotexist")
	t.Setenv("KVDB_PATH", "/tmp/objects.db")

	cfg, err := Load()
	assert.NoError(err)
	assert.Equal("/tmp/objects.db", cfg.GetKVDBPath())
	assert.Equal(defaultLogLevel, cfg.GetLogLevel())

	resources, err := cfg.GetResources()
	assert.NoError(err)
	assert.Empty(resources)
}
