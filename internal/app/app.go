package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"renovirt-backend/internal/config"
	"renovirt-backend/internal/database"
	"renovirt-backend/internal/handlers"
	"renovirt-backend/internal/logger"
	"renovirt-backend/internal/ordernumber"
	"renovirt-backend/internal/pricing"
	"renovirt-backend/internal/ratelimit"
	"renovirt-backend/internal/router"
	"renovirt-backend/internal/services"
	"renovirt-backend/internal/supabase"
)

// Module wires configuration, clients, services and the HTTP server.
var Module = fx.Options(
	fx.Provide(
		config.Load,
		logger.New,
		newDatabaseClient,
		supabase.NewClient,
		newStorageClient,
		newRealtimeClient,
		newCalculator,
		newOrderNumbers,
		newUploader,
		newOrderService,
		newReferralService,
		newAdminService,
		newDownloadService,
		newReconciler,
		newRateLimitStore,
		newHandlers,
		newRouter,
		newHTTPServer,
		newMigrateFunc,
	),
	fx.Invoke(registerLifecycle),
)

func newDatabaseClient(lc fx.Lifecycle, cfg *config.Config) (*supabase.DatabaseClient, error) {
	db, err := supabase.NewDatabaseClient(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(db.Close))
	return db, nil
}

func newStorageClient(cfg *config.Config) *supabase.StorageClient {
	return supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
}

func newRealtimeClient(cfg *config.Config) *supabase.RealtimeClient {
	return supabase.NewRealtimeClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
}

func newCalculator(cfg *config.Config) *pricing.Calculator {
	return pricing.NewCalculator(pricing.BracketingPolicy(cfg.BracketingPolicy), cfg.VATRate)
}

func newOrderNumbers(cfg *config.Config) *ordernumber.Generator {
	return ordernumber.New(
		ordernumber.WithMaxAttempts(cfg.OrderNumberMaxAttempts),
		ordernumber.WithRetryDelay(cfg.OrderNumberRetryDelay),
	)
}

func newUploader(cfg *config.Config, db *supabase.DatabaseClient, files *supabase.StorageClient, log *zap.Logger) *services.Uploader {
	return services.NewUploader(files, db, cfg.ImagesBucket, cfg.UploadConcurrency, cfg.UploadRetries, log.Named("uploader"))
}

type orderServiceParams struct {
	fx.In

	Config     *config.Config
	DB         *supabase.DatabaseClient
	Files      *supabase.StorageClient
	Events     *supabase.RealtimeClient
	Calculator *pricing.Calculator
	Numbers    *ordernumber.Generator
	Uploader   *services.Uploader
	Logger     *zap.Logger
}

func newOrderService(p orderServiceParams) *services.OrderService {
	return services.NewOrderService(services.OrderServiceDeps{
		Catalog:    p.DB,
		Credits:    p.DB,
		Orders:     p.DB,
		Files:      p.Files,
		Events:     p.Events,
		Calculator: p.Calculator,
		Numbers:    p.Numbers,
		Uploader:   p.Uploader,
		Bucket:     p.Config.ImagesBucket,
		Logger:     p.Logger.Named("orders"),
	})
}

func newReferralService(db *supabase.DatabaseClient, rpc *supabase.Client, log *zap.Logger) *services.ReferralService {
	return services.NewReferralService(db, rpc, log.Named("referrals"))
}

func newAdminService(db *supabase.DatabaseClient, rpc *supabase.Client, events *supabase.RealtimeClient, log *zap.Logger) *services.AdminService {
	return services.NewAdminService(db, rpc, events, log.Named("admin"))
}

func newDownloadService(cfg *config.Config, db *supabase.DatabaseClient, files *supabase.StorageClient, log *zap.Logger) *services.DownloadService {
	return services.NewDownloadService(db, files, cfg.DeliverablesBucket, cfg.InvoicesBucket, cfg.SignedURLTTL, log.Named("downloads"))
}

func newReconciler(cfg *config.Config, db *supabase.DatabaseClient, files *supabase.StorageClient, log *zap.Logger) *services.Reconciler {
	return services.NewReconciler(db, files, cfg.ImagesBucket, cfg.ReconcileInterval, cfg.StaleUploadAge, log.Named("reconciler"))
}

func newRateLimitStore(cfg *config.Config) *ratelimit.Store {
	return ratelimit.NewStore(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitTTL, cfg.RateLimitMaxKeys)
}

type handlerParams struct {
	fx.In

	DB        *supabase.DatabaseClient
	Orders    *services.OrderService
	Referrals *services.ReferralService
	Admin     *services.AdminService
	Downloads *services.DownloadService
}

func newHandlers(p handlerParams) router.Handlers {
	return router.Handlers{
		Health:    handlers.NewHealthHandler(p.DB),
		Orders:    handlers.NewOrdersHandler(p.Orders),
		Referrals: handlers.NewReferralsHandler(p.Referrals),
		Downloads: handlers.NewDownloadsHandler(p.Downloads),
		Admin:     handlers.NewAdminHandler(p.Admin),
	}
}

func newRouter(cfg *config.Config, log *zap.Logger, limiter *ratelimit.Store, h router.Handlers) *gin.Engine {
	return router.Setup(cfg, log.Named("http"), limiter, h)
}

func newHTTPServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Logger     *zap.Logger
	Server     *http.Server
	Reconciler *services.Reconciler
	Limiter    *ratelimit.Store
	Migrate    MigrateFunc
}

func registerLifecycle(p lifecycleParams) {
	var cancelSweep context.CancelFunc

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Migrate(); err != nil {
				return err
			}

			p.Logger.Info("starting renovirt backend", zap.String("addr", p.Server.Addr))
			p.Reconciler.Start(context.Background())

			var sweepCtx context.Context
			sweepCtx, cancelSweep = context.WithCancel(context.Background())
			go sweepLimiter(sweepCtx, p.Limiter, p.Config.RateLimitTTL, p.Logger)

			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", zap.Error(err))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Reconciler.Stop()
			if cancelSweep != nil {
				cancelSweep()
			}

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("renovirt backend stopped")
			_ = p.Logger.Sync()
			return nil
		},
	})
}

// MigrateFunc brings the schema up to date before the server accepts traffic.
type MigrateFunc func() error

func newMigrateFunc(cfg *config.Config, log *zap.Logger) MigrateFunc {
	return func() error {
		return runMigrations(cfg.DatabaseURL, log)
	}
}

func runMigrations(dbURL string, log *zap.Logger) error {
	migrator, err := database.NewMigrator(dbURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Run(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if version, err := migrator.Version(); err == nil {
		log.Info("migrations completed", zap.Int64("version", version))
	}
	return nil
}

func sweepLimiter(ctx context.Context, store *ratelimit.Store, every time.Duration, log *zap.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Debug("rate limit keys expired", zap.Int("count", n))
			}
		}
	}
}
