package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultPageSize = 20
	defaultLogLevel = "info"
)

type Config struct {
	config *viper.Viper
}

// Resource describes one searchable resource: the URL name it is served
// under, the model its objects are stored as and the field autocomplete
// lookups run against.
type Resource struct {
	Name              string `mapstructure:"name" json:"name" validate:"required,valid_name"`
	Model             string `mapstructure:"model" json:"model" validate:"required,valid_name"`
	AutocompleteField string `mapstructure:"autocomplete_field" json:"autocomplete_field"`
	PageSize          int    `mapstructure:"page_size" json:"page_size" validate:"min=0,max=1000"`
}

func Load() (*Config, error) {

	env := os.Getenv(keyEnv)
	if len(env) == 0 {
		env = envLocal
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	port := c.config.GetString("PORT")
	if len(port) == 0 {
		port = c.config.GetString("server.port")
	}

	return port
}

func (c *Config) GetKVDBPath() string {
	kvdbPath := c.config.GetString("KVDB_PATH")
	if len(kvdbPath) == 0 {
		kvdbPath = c.config.GetString("database.kvdb_path")
	}

	return kvdbPath
}

func (c *Config) GetIndexPath() string {
	indexPath := c.config.GetString("INDEX_PATH")
	if len(indexPath) == 0 {
		indexPath = c.config.GetString("database.index_path")
	}

	return indexPath
}

func (c *Config) GetStoragePath() string {
	storagePath := c.config.GetString("STORAGE_PATH")
	if len(storagePath) == 0 {
		storagePath = c.config.GetString("database.storage_path")
	}

	return storagePath
}

func (c *Config) GetLogLevel() string {
	logLevel := c.config.GetString("LOG_LEVEL")
	if len(logLevel) == 0 {
		logLevel = c.config.GetString("log.level")
	}
	if len(logLevel) == 0 {
		logLevel = defaultLogLevel
	}

	return logLevel
}

// GetThrottle returns the sustained requests per second and burst allowed per
// client. A rate of zero or less disables throttling.
func (c *Config) GetThrottle() (float64, int) {
	return c.config.GetFloat64("throttle.requests_per_second"), c.config.GetInt("throttle.burst")
}

// GetResources returns the configured resources with defaults applied.
func (c *Config) GetResources() ([]Resource, error) {
	var resources []Resource
	if err := c.config.UnmarshalKey("resources", &resources); err != nil {
		return nil, fmt.Errorf("failed to read resources from config: %w", err)
	}

	for i := range resources {
		if resources[i].PageSize == 0 {
			resources[i].PageSize = defaultPageSize
		}
	}

	return resources, nil
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
