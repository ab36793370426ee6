package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/event-management/internal"
	"github.com/frahmantamala/event-management/internal/auth"
	authPostgres "github.com/frahmantamala/event-management/internal/auth/postgres"
	"github.com/frahmantamala/event-management/internal/category"
	categoryPostgres "github.com/frahmantamala/event-management/internal/category/postgres"
	"github.com/frahmantamala/event-management/internal/core/events"
	"github.com/frahmantamala/event-management/internal/event"
	eventPostgres "github.com/frahmantamala/event-management/internal/event/postgres"
	"github.com/frahmantamala/event-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/event-management/internal/notification/postgres"
	"github.com/frahmantamala/event-management/internal/observability"
	"github.com/frahmantamala/event-management/internal/permission"
	permissionPostgres "github.com/frahmantamala/event-management/internal/permission/postgres"
	"github.com/frahmantamala/event-management/internal/transport"
	"github.com/frahmantamala/event-management/internal/transport/rest"
	"github.com/frahmantamala/event-management/internal/transport/swagger"
	"github.com/frahmantamala/event-management/internal/user"
	userPostgres "github.com/frahmantamala/event-management/internal/user/postgres"
	"github.com/frahmantamala/event-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

// Dependencies is the wired application shared by every subcommand.
type Dependencies struct {
	Config  *internal.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics
	DB      *sqlx.DB
	Gorm    *gorm.DB
	Redis   *redis.Client
	Bus     *events.EventBus

	PermissionService   *permission.Service
	AuthService         *auth.Service
	EventService        *event.Service
	NotificationService *notification.Service
	UserService         *user.Service
	CategoryService     *category.Service
	Broadcaster         notification.Broadcaster
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func startHTTPServer() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		return err
	}
	defer deps.Close()

	if _, err := swagger.LoadSpec(ctx, deps.Config.Server.OpenAPIPath); err != nil {
		deps.Logger.Warn("openapi document unavailable", "error", err)
	}

	router := chi.NewRouter()
	setupRoutes(router, deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Logger.Info("Starting HTTP server", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		deps.Logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		// Let in-flight notification handlers finish before the pool closes.
		if err := deps.Bus.Wait(shutdownCtx); err != nil {
			deps.Logger.Warn("event handlers still running at shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		deps.Logger.Error("server stopped with error", "error", err)
		return err
	}
	deps.Logger.Info("Server stopped")
	return nil
}

func setupRoutes(router *chi.Mux, deps *Dependencies) {
	lg := deps.Logger

	rest.RegisterAllRoutes(router, rest.Dependencies{
		Config:  deps.Config,
		Logger:  lg,
		Metrics: deps.Metrics,
		DB:      deps.DB,
		Redis:   deps.Redis,

		AuthHandler:         auth.NewHandler(deps.AuthService),
		RBAC:                auth.NewRBACAuthorization(lg, deps.Metrics),
		EventHandler:        event.NewHandler(deps.EventService),
		NotificationHandler: notification.NewHandler(deps.NotificationService),
		UserHandler:         user.NewHandler(deps.UserService),
		CategoryHandler:     category.NewHandler(transport.NewBaseHandler(lg), deps.CategoryService),
	})
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	cfg, err := bootstrap()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	deps := &Dependencies{
		Config:  cfg,
		Logger:  lg,
		Metrics: observability.NewMetrics(nil),
		DB:      db,
		Gorm:    gormDB,
		Bus:     events.NewEventBus(lg),
	}

	deps.Redis = initRedis(ctx, cfg.Redis, lg)
	if deps.Redis != nil {
		deps.Broadcaster = notification.NewRedisBroadcaster(deps.Redis, cfg.Notification.ChannelPrefix, deps.Metrics)
	} else {
		deps.Broadcaster = notification.NopBroadcaster{}
	}

	deps.PermissionService = permission.NewService(permissionPostgres.NewPermissionRepository(gormDB), lg)

	authOpts := []auth.Option{
		auth.WithIdentityCache(auth.NewIdentityCache(cfg.Security.IdentityCacheSize, cfg.Security.IdentityCacheTTL)),
		auth.WithMetrics(deps.Metrics),
		auth.WithBCryptCost(cfg.Security.BCryptCost),
	}
	if cfg.OIDC.Enabled() {
		verifier, err := auth.NewOIDCVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to initialize oidc verifier: %w", err)
		}
		authOpts = append(authOpts, auth.WithIDTokenVerifier(verifier, cfg.OIDC.Provider))
	}
	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	deps.AuthService = auth.NewService(authPostgres.NewRepository(gormDB), tokens, deps.PermissionService, lg, authOpts...)

	deps.NotificationService = notification.NewService(notificationPostgres.NewNotificationRepository(gormDB), deps.Broadcaster, lg)
	notification.RegisterEventHandlers(deps.Bus, deps.NotificationService)

	deps.CategoryService = category.NewService(categoryPostgres.NewCategoryRepository(gormDB), lg)
	deps.EventService = event.NewService(eventPostgres.NewEventRepository(gormDB), deps.Bus, deps.Metrics, lg,
		event.WithCategoryValidator(deps.CategoryService))
	deps.UserService = user.NewService(userPostgres.NewUserRepository(db), lg)

	return deps, nil
}

// initDB opens the pgx-backed pool that both sqlx and gorm share.
func initDB(ctx context.Context, cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	db, err := sqlx.ConnectContext(ctx, driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
}

// initRedis returns nil when no address is configured or the server does not
// answer; notifications are then persisted without a live push.
func initRedis(ctx context.Context, cfg internal.RedisConfig, lg *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		lg.Info("redis not configured, notification broadcast disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := internal.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		lg.Warn("redis unreachable, notification broadcast disabled", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}
