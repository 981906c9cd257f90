package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	EnvSelfHosted = "selfHosted"
	EnvManaged    = "managed"
)

type Config struct {
	EnvType    string `mapstructure:"env_type"`
	Server     ServerConfig
	PG         PostgresConfig `mapstructure:"pg"`
	Auth       AuthConfig
	Log        LogConfig
	Cron       CronConfig
	Lookup     LookupConfig
	PgExec     PgExecConfig `mapstructure:"pgexec"`
	Cloudflare CloudflareConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PostgresConfig is filled from DL_PG_HOST, DL_PG_PORT, DL_PG_NAME, DL_PG_USER and DL_PG_PASSWORD.
type PostgresConfig struct {
	Host         string
	Port         int
	Name         string
	User         string
	Password     string
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	LocalUserID string `mapstructure:"local_user_id"`
}

type LogConfig struct {
	Level string
	JSON  bool `mapstructure:"json"`
}

type CronConfig struct {
	Enabled          bool
	RefreshSchedule  string `mapstructure:"refresh_schedule"`
	ReminderSchedule string `mapstructure:"reminder_schedule"`
}

type LookupConfig struct {
	DNSServer string        `mapstructure:"dns_server"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type PgExecConfig struct {
	Enabled bool
}

type CloudflareConfig struct {
	APIToken string `mapstructure:"api_token"`
}

// DSN builds a lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsSelfHosted() bool {
	return c.EnvType == EnvSelfHosted
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env_type", EnvSelfHosted)

	v.SetDefault("server.port", ":3000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("pg.host", "localhost")
	v.SetDefault("pg.port", 5432)
	v.SetDefault("pg.name", "domain_locker")
	v.SetDefault("pg.user", "postgres")
	v.SetDefault("pg.password", "")
	v.SetDefault("pg.sslmode", "disable")
	v.SetDefault("pg.max_open_conns", 10)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.local_user_id", "a0000000-aaaa-42a0-a0a0-00a000000a69")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.refresh_schedule", "0 3 * * *")
	v.SetDefault("cron.reminder_schedule", "0 9 * * *")

	v.SetDefault("lookup.dns_server", "1.1.1.1:53")
	v.SetDefault("lookup.timeout", 10*time.Second)

	v.SetDefault("pgexec.enabled", true)

	v.SetDefault("cloudflare.api_token", "")
}

// LoadConfig reads ./config/config.yaml when present and lets DL_* environment variables override it.
func LoadConfig() (*Config, error) {
	return Load("./config")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("DL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short aliases kept from the original deployment docs
	_ = v.BindEnv("server.port", "DL_PORT", "DL_SERVER_PORT")
	_ = v.BindEnv("auth.jwt_secret", "DL_JWT_SECRET", "DL_AUTH_JWT_SECRET")
	_ = v.BindEnv("cloudflare.api_token", "DL_CLOUDFLARE_TOKEN", "DL_CLOUDFLARE_API_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		logrus.Debug("No config file found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// DL_PORT=3000 is accepted as well as DL_PORT=:3000
	if cfg.Server.Port != "" && !strings.Contains(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.Info("Config loaded")
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.EnvType {
	case EnvSelfHosted, EnvManaged:
	default:
		return fmt.Errorf("env_type must be %q or %q, got %q", EnvSelfHosted, EnvManaged, c.EnvType)
	}
	if c.PG.Host == "" || c.PG.Name == "" || c.PG.User == "" {
		return errors.New("pg.host, pg.name and pg.user are required")
	}
	if c.PG.Port <= 0 || c.PG.Port > 65535 {
		return fmt.Errorf("pg.port out of range: %d", c.PG.Port)
	}
	if c.EnvType == EnvManaged && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required in managed mode")
	}
	return nil
}
