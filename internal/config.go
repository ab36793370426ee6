package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env           string              `mapstructure:"env" envconfig:"APP_ENV" default:"development"`
	Server        ServerConfig        `mapstructure:"http_server" envconfig:"HTTP_SERVER"`
	Database      DatabaseConfig      `mapstructure:"database" envconfig:"DATABASE"`
	Security      SecurityConfig      `mapstructure:"security" envconfig:"SECURITY"`
	Redis         RedisConfig         `mapstructure:"redis" envconfig:"REDIS"`
	OIDC          OIDCConfig          `mapstructure:"oidc" envconfig:"OIDC"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit" envconfig:"RATE_LIMIT"`
	Observability ObservabilityConfig `mapstructure:"observability" envconfig:"OBSERVABILITY"`
	Notification  NotificationConfig  `mapstructure:"notification" envconfig:"NOTIFICATION"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url" envconfig:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	OpenAPIPath       string        `mapstructure:"openapi_path" envconfig:"OPENAPI_PATH" default:"./api/openapi.yml"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"MAX_OPEN_CONNS" default:"20" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"MAX_IDLE_CONNS" default:"5" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" envconfig:"CONN_MAX_IDLE_TIME" default:"5m"`
	Source          string        `mapstructure:"source" envconfig:"SOURCE" validate:"required"`
}

type SecurityConfig struct {
	JWTAccessSecret      string        `mapstructure:"jwt_access_secret" envconfig:"JWT_ACCESS_SECRET" validate:"required,min=32"`
	JWTRefreshSecret     string        `mapstructure:"jwt_refresh_secret" envconfig:"JWT_REFRESH_SECRET" validate:"required,min=32"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" envconfig:"ACCESS_TOKEN_DURATION" default:"15m"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" envconfig:"REFRESH_TOKEN_DURATION" default:"168h"`
	BCryptCost           int           `mapstructure:"bcrypt_cost" envconfig:"BCRYPT_COST" default:"10" validate:"min=4,max=15"`
	IdentityCacheSize    int           `mapstructure:"identity_cache_size" envconfig:"IDENTITY_CACHE_SIZE" default:"1024"`
	IdentityCacheTTL     time.Duration `mapstructure:"identity_cache_ttl" envconfig:"IDENTITY_CACHE_TTL" default:"30s"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" envconfig:"ADDR"`
	Password string `mapstructure:"password" envconfig:"PASSWORD"`
	DB       int    `mapstructure:"db" envconfig:"DB"`
}

// OIDCConfig enables the ID-token exchange endpoint when Issuer is set.
type OIDCConfig struct {
	Issuer   string `mapstructure:"issuer" envconfig:"ISSUER"`
	ClientID string `mapstructure:"client_id" envconfig:"CLIENT_ID"`
	Provider string `mapstructure:"provider" envconfig:"PROVIDER" default:"oidc"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" envconfig:"REQUESTS_PER_MINUTE" default:"120"`
	RSVPPerMinute     int `mapstructure:"rsvp_per_minute" envconfig:"RSVP_PER_MINUTE" default:"30"`
}

type NotificationConfig struct {
	ChannelPrefix string        `mapstructure:"channel_prefix" envconfig:"CHANNEL_PREFIX" default:"notifications"`
	Retention     time.Duration `mapstructure:"retention" envconfig:"RETENTION" default:"720h"`
	PruneSchedule string        `mapstructure:"prune_schedule" envconfig:"PRUNE_SCHEDULE" default:"@daily"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics" envconfig:"METRICS"`
	Logging LoggingConfig `mapstructure:"logging" envconfig:"LOGGING"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" envconfig:"ENABLED" default:"true"`
	Path    string `mapstructure:"path" envconfig:"ENDPOINT" default:"/metrics" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" envconfig:"LEVEL" default:"info" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" envconfig:"FORMAT" validate:"omitempty,oneof=json text"`
}

// LoadConfigFromEnv reads the configuration from plain environment variables,
// e.g. HTTP_SERVER_PORT, DATABASE_SOURCE, SECURITY_JWT_ACCESS_SECRET.
func LoadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		errs = append(errs, err.Error())
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.OIDC.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("oidc config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	for _, origin := range c.Origins() {
		if origin == "*" {
			continue
		}
		if _, err := url.Parse(origin); err != nil {
			return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins splits AllowedOrigins on commas.
func (c *ServerConfig) Origins() []string {
	if strings.TrimSpace(c.AllowedOrigins) == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *OIDCConfig) Enabled() bool {
	return c.Issuer != ""
}

func (c *OIDCConfig) Validate() error {
	if c.Issuer != "" && c.ClientID == "" {
		return errors.New("client_id is required when issuer is set")
	}
	return nil
}
