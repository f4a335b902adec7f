package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	sharedConfig "mirra/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis"`
	Jira     sharedConfig.JiraConfig     `mapstructure:"jira" validate:"required"`
	Notion   sharedConfig.NotionConfig   `mapstructure:"notion" validate:"required"`
	Sync     sharedConfig.SyncConfig     `mapstructure:"sync" validate:"required"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("MIRRA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Sync.FieldMapPath != "" {
		fieldMap, err := loadFieldMap(config.Sync.FieldMapPath)
		if err != nil {
			return nil, err
		}
		config.Sync.FieldMap = fieldMap
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// loadFieldMap reads a standalone Jira-field to Notion-property mapping file.
func loadFieldMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field map %s: %w", path, err)
	}

	fieldMap := map[string]string{}
	if err := yaml.Unmarshal(data, &fieldMap); err != nil {
		return nil, fmt.Errorf("failed to parse field map %s: %w", path, err)
	}
	return fieldMap, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "mirra.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.max_size_mb", 1)
	viper.SetDefault("logger.max_backups", 5)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Notion defaults
	viper.SetDefault("notion.key_property", "Jira Issue Key")
	viper.SetDefault("notion.verified_property", "Verificado")
	viper.SetDefault("notion.tag_property", "Tags")
	viper.SetDefault("notion.tag", "trabajo")
	viper.SetDefault("notion.assignee_property", "Asignado")

	// Sync defaults
	viper.SetDefault("sync.check_interval_seconds", 10)
	viper.SetDefault("sync.in_progress_statuses", []string{
		"Impact Estimated", "QUARANTINE", "Resolution In Progress", "Routing", "Waiting For Customer",
	})
	viper.SetDefault("sync.open_work_statuses", []string{
		"To Do", "In Progress", "Impact Estimated", "QUARANTINE",
		"Resolution In Progress", "Routing", "Waiting For Customer",
	})
	viper.SetDefault("sync.fallback_utc_offset", -5)
	viper.SetDefault("sync.field_map", map[string]string{
		"key":         "Jira Issue Key",
		"summary":     "Name",
		"reporter":    "Reporter",
		"created":     "Fecha de creación",
		"description": "Description",
	})
	viper.SetDefault("sync.cursor.backend", "database")
}
