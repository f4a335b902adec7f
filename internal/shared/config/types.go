package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JiraConfig struct {
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
	Email    string `mapstructure:"email" validate:"required,email"`
	APIToken string `mapstructure:"api_token" validate:"required"`
}

type NotionConfig struct {
	APIKey           string `mapstructure:"api_key" validate:"required"`
	KeyProperty      string `mapstructure:"key_property" validate:"required"`
	AssigneeID       string `mapstructure:"assignee_id"`
	VerifiedProperty string `mapstructure:"verified_property"`
	TagProperty      string `mapstructure:"tag_property"`
	Tag              string `mapstructure:"tag"`
	AssigneeProperty string `mapstructure:"assignee_property"`
}

// ProjectConfig binds one Jira project to one Notion database.
// Immutable for the process lifetime.
type ProjectConfig struct {
	Key        string `mapstructure:"key" validate:"required"`
	DatabaseID string `mapstructure:"database_id" validate:"required"`
	BaseJQL    string `mapstructure:"base_jql"`
}

type CursorConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=database redis"`
}

type SyncConfig struct {
	CheckIntervalSeconds int               `mapstructure:"check_interval_seconds" validate:"min=1"`
	Operator             string            `mapstructure:"operator" validate:"required"`
	InProgressStatuses   []string          `mapstructure:"in_progress_statuses" validate:"min=1"`
	OpenWorkStatuses     []string          `mapstructure:"open_work_statuses" validate:"min=1"`
	FallbackUTCOffset    int               `mapstructure:"fallback_utc_offset"`
	FieldMap             map[string]string `mapstructure:"field_map"`
	FieldMapPath         string            `mapstructure:"field_map_path"`
	AlternateFields      map[string]string `mapstructure:"alternate_fields"`
	Projects             []ProjectConfig   `mapstructure:"projects" validate:"min=1,dive"`
	Cursor               CursorConfig      `mapstructure:"cursor"`
}
