package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
)

type Config struct {
	Environment string         `mapstructure:"app_env"`
	Name        string         `mapstructure:"app_name"`
	Version     string         `mapstructure:"app_version"`
	DataBackend string         `mapstructure:"data_backend"`
	HTTP        HTTPConfig     `mapstructure:"http"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	JWT         JWTConfig      `mapstructure:"jwt"`
	S3          S3Config       `mapstructure:"s3"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Supabase    SupabaseConfig `mapstructure:"supabase"`
	Booking     BookingConfig  `mapstructure:"booking"`
	Log         LogConfig      `mapstructure:"log"`
}

type HTTPConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxHeaderMB  int           `mapstructure:"max_header_mb"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

type PostgresConfig struct {
	Host               string        `mapstructure:"host"`
	Port               string        `mapstructure:"port"`
	Username           string        `mapstructure:"user"`
	Password           string        `mapstructure:"password"`
	DBName             string        `mapstructure:"db"`
	SSLMode            string        `mapstructure:"ssl_mode"`
	MaxConnections     int           `mapstructure:"max_connections"`
	MaxIdleConnections int           `mapstructure:"max_idle_connections"`
	MaxLifetime        time.Duration `mapstructure:"max_lifetime"`
}

// DSN is the libpq URL shared by the pool and the notification listener.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

// JWTConfig verifies tokens issued by the external auth service.
type JWTConfig struct {
	SigningKey string `mapstructure:"signing_key"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Bucket          string        `mapstructure:"bucket"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignTTL      time.Duration `mapstructure:"presign_ttl"`
}

type RedisConfig struct {
	Addr          string        `mapstructure:"addr"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	BookingLimit  int           `mapstructure:"booking_limit"`
	BookingWindow time.Duration `mapstructure:"booking_window"`
}

type SupabaseConfig struct {
	URL string `mapstructure:"url"`
	Key string `mapstructure:"key"`
}

type BookingConfig struct {
	// Timezone is the clinic's wall-clock zone; stored dates and times are read in it.
	Timezone string `mapstructure:"timezone"`
}

func (c BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("неизвестный часовой пояс %q: %w", c.Timezone, err)
	}
	return loc, nil
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// NewConfig reads defaults, then an optional config file, then environment
// variables such as HTTP_PORT or POSTGRES_HOST, later sources winning.
func NewConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("app_name", "clinic")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("data_backend", BackendPostgres)

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.max_header_mb", 1)
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db", "clinic")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_connections", 10)
	v.SetDefault("postgres.max_idle_connections", 5)
	v.SetDefault("postgres.max_lifetime", "5m")

	v.SetDefault("jwt.signing_key", "")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket", "clinic-exports")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.presign_ttl", "15m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.booking_limit", 10)
	v.SetDefault("redis.booking_window", "1m")

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")

	v.SetDefault("booking.timezone", "UTC")

	v.SetDefault("log.level", "info")
}

func (c *Config) Validate() error {
	if c.JWT.SigningKey == "" {
		return fmt.Errorf("не задан JWT_SIGNING_KEY")
	}

	switch c.DataBackend {
	case BackendPostgres:
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return fmt.Errorf("для DATA_BACKEND=supabase нужны SUPABASE_URL и SUPABASE_KEY")
		}
	default:
		return fmt.Errorf("неизвестный DATA_BACKEND %q", c.DataBackend)
	}

	if _, err := c.Booking.Location(); err != nil {
		return err
	}

	return nil
}
