package config

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Editorial EditorialConfig `mapstructure:"editorial"`
	Lark      LarkConfig      `mapstructure:"lark"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// EditorialConfig holds review workflow configuration
type EditorialConfig struct {
	// Reviewers is the set of user IDs allowed to approve or reject
	Reviewers []string `mapstructure:"reviewers"`
	// ReportOutputDir is where history workbooks are written
	ReportOutputDir string `mapstructure:"report_output_dir"`
	// ManuscriptDir is where uploaded manuscripts are staged before ingest
	ManuscriptDir string `mapstructure:"manuscript_dir"`
}

// LarkConfig holds Lark API configuration. Notifications are skipped when
// Enabled is false.
type LarkConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	AppID        string        `mapstructure:"app_id"`
	AppSecret    string        `mapstructure:"app_secret"`
	ReviewerIDs  []string      `mapstructure:"reviewer_ids"`
	AuthorIDType string        `mapstructure:"author_id_type"`
	APITimeout   time.Duration `mapstructure:"api_timeout"`
}

// OpenAIConfig holds OpenAI API configuration. Copy editing is disabled
// when Enabled is false.
type OpenAIConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables. A .env
// file next to the working directory is applied first so credentials can
// stay out of the yaml file.
func Load(configPath string) (*Config, error) {
	_ = gotenv.Load()

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/docflow.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("editorial.report_output_dir", "reports")
	viper.SetDefault("editorial.manuscript_dir", "manuscripts")

	viper.SetDefault("lark.enabled", false)
	viper.SetDefault("lark.author_id_type", "open_id")
	viper.SetDefault("lark.api_timeout", 30*time.Second)

	viper.SetDefault("openai.enabled", false)
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.temperature", 0.3)
	viper.SetDefault("openai.timeout", 60*time.Second)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables for credentials
func bindEnvVars() {
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Editorial,
		validation.Field(&c.Editorial.Reviewers, validation.Required),
		validation.Field(&c.Editorial.ReportOutputDir, validation.Required),
	); err != nil {
		return fmt.Errorf("editorial: %w", err)
	}

	if c.Lark.Enabled {
		if err := validation.ValidateStruct(&c.Lark,
			validation.Field(&c.Lark.AppID, validation.Required),
			validation.Field(&c.Lark.AppSecret, validation.Required),
			validation.Field(&c.Lark.ReviewerIDs, validation.Required),
		); err != nil {
			return fmt.Errorf("lark: %w", err)
		}
	}

	if c.OpenAI.Enabled {
		if err := validation.ValidateStruct(&c.OpenAI,
			validation.Field(&c.OpenAI.APIKey, validation.Required),
			validation.Field(&c.OpenAI.Model, validation.Required),
		); err != nil {
			return fmt.Errorf("openai: %w", err)
		}
	}

	return nil
}
