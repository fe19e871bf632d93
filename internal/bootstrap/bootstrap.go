// Package bootstrap wires the store, the event stream and the external
// providers from configuration. Both the API and the processor binaries build
// their services through it.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/nimasrn/paywise/internal/config"
	"github.com/nimasrn/paywise/internal/insight"
	"github.com/nimasrn/paywise/internal/queue"
	"github.com/nimasrn/paywise/internal/repository"
	"github.com/nimasrn/paywise/internal/services"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/nimasrn/paywise/pkg/pg"
	"github.com/nimasrn/paywise/pkg/redis"
)

const redisConnName = "default"

// App holds the wired dependencies of one process.
type App struct {
	DB        *pg.DB
	Redis     redis.RedisAdapter // nil when REDIS_ADDR is unset
	Providers Providers
	Refresher *insight.Refresher
	Clients   *services.ClientService
	Payments  *services.PaymentService
	Audit     *repository.PaymentEventRepository

	closers []func() error
}

// New opens the store and redis, picks live or mock providers and builds
// the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{DB: db}
	app.closers = append(app.closers, db.Close)

	rdb, err := OpenRedis(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if rdb != nil {
		app.Redis = rdb
		app.closers = append(app.closers, func() error { return redis.Close(redisConnName) })
	}

	provider, closeProvider, err := NewInsightProvider(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if closeProvider != nil {
		app.closers = append(app.closers, closeProvider)
	}

	app.Providers = NewProviders(cfg)
	app.Refresher = insight.NewRefresher(provider)

	// left nil without redis, which disables publishing
	var events services.EventPublisher
	if app.Redis != nil {
		events = queue.NewEventPublisher(app.Redis, cfg.EventsStream, cfg.EventsMaxLen)
	} else {
		logger.Warn("[bootstrap] redis not configured, domain events are disabled")
	}

	clientRepo := repository.NewClientRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	app.Audit = repository.NewPaymentEventRepository(db)

	notifier := services.NewNotifier(app.Providers.SMS, app.Providers.Email, cfg.EmailFromName, cfg.CurrencySymbol)
	app.Clients = services.NewClientService(clientRepo, paymentRepo, app.Refresher, events)
	app.Payments = services.NewPaymentService(paymentRepo, clientRepo, app.Audit, app.Providers.Links, notifier, app.Refresher, events)

	logger.Info("[bootstrap] services ready",
		"db_driver", cfg.DBDriver,
		"events", events != nil,
		"insight_provider", app.Refresher.Provider(),
		"live_providers", len(app.Providers.Stats))
	return app, nil
}

// Close releases everything New opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("[bootstrap] close failed", "error", err)
		}
	}
	a.closers = nil
}

// OpenDB opens the configured store. The sqlite store is migrated in place,
// postgres is migrated by cmd/cli.
func OpenDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	db, err := pg.Open(cfg.DBDriver, cfg.SQLiteDSN, cfg.PostgresRead(), cfg.PostgresWrite(), cfg.DBDebug)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == pg.DriverSQLite || cfg.DBDriver == "" {
		if err := repository.AutoMigrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate sqlite store: %w", err)
		}
	}
	return db, nil
}

// OpenRedis connects to redis. It returns nil without error when no address
// is configured.
func OpenRedis(cfg *config.Config) (redis.RedisAdapter, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	adapter, err := redis.NewRedisAdapter(redisConnName, cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: cfg.AppName,
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return adapter, nil
}

// NewInsightProvider returns the Gemini provider when an API key is set and
// the heuristic mock otherwise. The returned closer may be nil.
func NewInsightProvider(ctx context.Context, cfg *config.Config) (insight.Provider, func() error, error) {
	if cfg.GeminiAPIKey == "" {
		return insight.NewMockProvider(), nil, nil
	}
	p, err := insight.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}
