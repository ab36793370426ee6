package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/event-management/internal"
	"github.com/frahmantamala/event-management/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "event-management",
	Short: "Event Management",
	Long:  `Events, RSVPs and notifications with role-based permissions.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// bootstrap loads .env, the config and the process logger. Every subcommand starts here.
func bootstrap() (*internal.Config, error) {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.Env,
		logger.WithLevel(cfg.Observability.Logging.Level),
		logger.WithFormat(cfg.Observability.Logging.Format),
	)
	return cfg, nil
}

func loadConfig(path string) (*internal.Config, error) {
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg, err := internal.LoadConfigFromEnv()
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return &cfg, nil
}

// setDefaults mirrors the envconfig defaults so a sparse config.yml still validates.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.allowed_origins", "*")
	v.SetDefault("http_server.read_header_timeout", "5s")
	v.SetDefault("http_server.read_timeout", "15s")
	v.SetDefault("http_server.write_timeout", "15s")
	v.SetDefault("http_server.idle_timeout", "60s")
	v.SetDefault("http_server.openapi_path", "./api/openapi.yml")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")
	v.SetDefault("security.access_token_duration", "15m")
	v.SetDefault("security.refresh_token_duration", "168h")
	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("security.identity_cache_size", 1024)
	v.SetDefault("security.identity_cache_ttl", "30s")
	v.SetDefault("oidc.provider", "oidc")
	v.SetDefault("rate_limit.requests_per_minute", 120)
	v.SetDefault("rate_limit.rsvp_per_minute", 30)
	v.SetDefault("notification.channel_prefix", "notifications")
	v.SetDefault("notification.retention", "720h")
	v.SetDefault("notification.prune_schedule", "@daily")
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")
	v.SetDefault("observability.logging.level", "info")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(categoryCmd)
}
