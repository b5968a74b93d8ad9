// Package app assembles the service from configuration. The server binary,
// the serverless entry point and the end-to-end tests all start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/trimlink/pkg/adapters/cache"
	"github.com/wadjakorntonsri/trimlink/pkg/adapters/geo"
	"github.com/wadjakorntonsri/trimlink/pkg/adapters/handler"
	"github.com/wadjakorntonsri/trimlink/pkg/adapters/qrcode"
	"github.com/wadjakorntonsri/trimlink/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/trimlink/pkg/adapters/storage"
	"github.com/wadjakorntonsri/trimlink/pkg/auth"
	"github.com/wadjakorntonsri/trimlink/pkg/config"
	"github.com/wadjakorntonsri/trimlink/pkg/core/creation"
	"github.com/wadjakorntonsri/trimlink/pkg/core/recorder"
	"github.com/wadjakorntonsri/trimlink/pkg/core/services"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	"go.uber.org/zap"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Repo     *sqlite.SQLiteRepository
	Links    *services.LinkService
	Clicks   *services.ClickService
	Accounts *services.AccountService
	Recorder *recorder.Recorder
	Tokens   *auth.Tokens
	Handler  http.Handler

	closers []func() error
}

type Option func(*options)

type options struct {
	locator    ports.Locator
	locatorSet bool
}

// WithLocator replaces the configured geolocation backend. nil disables
// geolocation.
func WithLocator(l ports.Locator) Option {
	return func(o *options) {
		o.locator = l
		o.locatorSet = true
	}
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (_ *App, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	repo, err := sqlite.NewSQLiteRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.Repo = repo
	a.closers = append(a.closers, repo.Close)

	bucket, err := newBucket(cfg, repo)
	if err != nil {
		return nil, err
	}

	var linkCache ports.LinkCache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		linkCache = rc
		a.closers = append(a.closers, rc.Close)
	}

	locator := o.locator
	if !o.locatorSet {
		if locator, err = a.newLocator(cfg); err != nil {
			return nil, err
		}
	}

	a.Tokens = auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	a.Links = services.NewLinkService(repo, bucket, linkCache, logger)
	a.Clicks = services.NewClickService(repo, logger)
	a.Accounts = services.NewAccountService(repo, cfg.AllowedEmails, logger)
	a.Recorder = recorder.New(a.Clicks, locator, logger, recorder.Options{
		Workers: cfg.RecorderWorkers,
		Buffer:  cfg.RecorderBuffer,
		Timeout: cfg.GeoTimeout + recordInsertBudget,
	})
	// The recorder writes to the repository, so it must drain first.
	a.closers = append(a.closers, a.Recorder.Close)

	clientIPs, err := handler.NewClientIPs(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	limiter := handler.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, clientIPs)
	a.closers = append(a.closers, func() error { limiter.Stop(); return nil })

	a.Handler = handler.NewRouter(handler.Dependencies{
		Config:    cfg,
		Links:     a.Links,
		Clicks:    a.Clicks,
		Accounts:  a.Accounts,
		Flow:      creation.NewFlow(a.Links, qrcode.NewRenderer(), logger),
		Recorder:  a.Recorder,
		Bucket:    bucket,
		Tokens:    a.Tokens,
		Limiter:   limiter,
		ClientIPs: clientIPs,
		Logger:    logger,
	})

	logger.Info("app ready",
		zap.String("db_driver", sqlite.DriverFor(cfg.DatabaseURL)),
		zap.String("storage", cfg.StorageDriver),
		zap.Bool("cache", linkCache != nil),
		zap.Bool("geolocation", locator != nil),
	)
	return a, nil
}

const recordInsertBudget = 2 * time.Second

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newBucket(cfg *config.Config, repo *sqlite.SQLiteRepository) (ports.Bucket, error) {
	switch cfg.StorageDriver {
	case "disk":
		return storage.NewDiskBucket(cfg.StorageDir, cfg.StorageBucket, cfg.BaseURL)
	case "sql":
		return storage.NewSQLBucket(repo.DB(), cfg.StorageBucket, cfg.BaseURL), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func (a *App) newLocator(cfg *config.Config) (ports.Locator, error) {
	if cfg.GeoIPDatabase != "" {
		mm, err := geo.OpenMaxMind(cfg.GeoIPDatabase)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, mm.Close)
		return mm, nil
	}
	if cfg.GeoEndpoint == "" {
		return nil, nil
	}
	return geo.NewIPAPI(cfg.GeoEndpoint, cfg.GeoTimeout), nil
}
