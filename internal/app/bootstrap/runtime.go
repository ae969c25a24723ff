package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"

	cacheadapter "github.com/hernanharco/authcenter-backend/internal/adapters/cache"
	grpcadapter "github.com/hernanharco/authcenter-backend/internal/adapters/grpc"
	httpadapter "github.com/hernanharco/authcenter-backend/internal/adapters/http"
	"github.com/hernanharco/authcenter-backend/internal/adapters/postgres"
	"github.com/hernanharco/authcenter-backend/internal/adapters/security"
	"github.com/hernanharco/authcenter-backend/internal/application"
	"github.com/hernanharco/authcenter-backend/internal/ports"
)

const shutdownTimeout = 10 * time.Second

type Runtime struct {
	cfg        Config
	logger     *zap.Logger
	db         *gorm.DB
	redis      *redis.Client
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
}

// NewRuntime connects the backing stores and wires the service and both
// transports. Listeners are opened by Run.
func NewRuntime(ctx context.Context, cfg Config, logger *zap.Logger) (*Runtime, error) {
	logger.Info("bootstrapping authcenter",
		zap.String("environment", cfg.Environment),
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
	)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{cfg: cfg, logger: logger, db: db}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(ctx, db); err != nil {
			rt.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	var lockouts ports.LockoutStore
	if cfg.RedisURL != "" {
		client, err := cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rt.redis = client
		lockouts = cacheadapter.NewRedisLockoutStore(client)
	} else {
		logger.Warn("REDIS_URL not set; login lockout disabled")
	}

	tokens, err := security.NewJWTService(security.JWTConfig{
		Secret:     cfg.SecretKey,
		Algorithm:  cfg.Algorithm,
		DefaultTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("init token service: %w", err)
	}

	var oauth ports.OAuthExchanger
	if cfg.GoogleConfigured() {
		bridge, err := security.NewGoogleOAuthBridge(security.GoogleOAuthConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Timeout:      cfg.OAuthTimeout,
		})
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("init google oauth: %w", err)
		}
		oauth = bridge
	} else {
		logger.Warn("google credentials not set; google login disabled")
	}

	repos := postgres.NewRepositories(db)
	rt.service = application.NewService(application.Dependencies{
		Config: application.Config{
			ExtendedTokenTTL:     cfg.ExtendedTokenTTL,
			ListLimitMax:         cfg.ListLimitMax,
			FailedLoginThreshold: cfg.FailedThreshold,
			LockoutDuration:      cfg.LockoutDuration,
		},
		Accounts:      repos.Accounts,
		LoginAttempts: repos.LoginAttempts,
		Lockouts:      lockouts,
		Hasher:        security.NewBcryptHasher(cfg.BcryptCost),
		Tokens:        tokens,
		OAuth:         oauth,
	})

	handler := httpadapter.NewHandler(rt.service, httpadapter.Config{
		APIPrefix:         cfg.APIPrefix,
		CORSOrigins:       cfg.CORSOrigins,
		Cookie:            httpadapter.NewCookiePolicy(cfg.Production()),
		ExposeErrorDetail: !cfg.Production(),
		Readiness:         rt.ready,
	})
	rt.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	rt.grpcServer = grpc.NewServer()
	rt.health = health.NewServer()
	healthpb.RegisterHealthServer(rt.grpcServer, rt.health)
	grpcadapter.Register(rt.grpcServer, grpcadapter.NewIdentityServer(rt.service))

	return rt, nil
}

func (r *Runtime) Service() *application.Service { return r.service }

func (r *Runtime) ready(ctx context.Context) error {
	if err := postgres.Ping(ctx, r.db); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if r.redis != nil {
		if err := r.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Run serves HTTP and gRPC until ctx ends or SIGINT/SIGTERM arrives, then
// drains both within the shutdown budget.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer r.Close()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen gRPC: %w", err)
	}
	r.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", zap.String("addr", r.httpServer.Addr))
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", zap.String("addr", lis.Addr().String()))
		if err := r.grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		r.logger.Error("server failure", zap.Error(runErr))
	}

	r.health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	stopped := make(chan struct{})
	go func() {
		r.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		r.grpcServer.Stop()
	}
	r.logger.Info("shutdown complete")
	return runErr
}

// Close releases the database pool and the redis client.
func (r *Runtime) Close() {
	if r.redis != nil {
		_ = r.redis.Close()
		r.redis = nil
	}
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		r.db = nil
	}
}

// Migrate applies the embedded schema migrations and exits.
func Migrate(ctx context.Context, cfg Config) error {
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	return postgres.RunMigrations(ctx, db)
}
