package http

import (
	"context"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	voucherApp "github.com/lnpos/voucherd/internal/application/voucher"
	"github.com/lnpos/voucherd/internal/application/voucher/services"
	"github.com/lnpos/voucherd/internal/infrastructure/cache"
	"github.com/lnpos/voucherd/internal/infrastructure/config"
	"github.com/lnpos/voucherd/internal/infrastructure/crypto"
	"github.com/lnpos/voucherd/internal/infrastructure/repository"
	"github.com/lnpos/voucherd/internal/infrastructure/scheduler"
	voucherHandlers "github.com/lnpos/voucherd/internal/interfaces/http/handlers/voucher"
	"github.com/lnpos/voucherd/internal/shared/biztime"
	sharedConfig "github.com/lnpos/voucherd/internal/shared/config"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

// Container holds the infrastructure, the voucher store and the background
// scheduler. Shutdown releases them in reverse order.
type Container struct {
	cfg   *config.Config
	db    *gorm.DB
	log   logger.Interface
	redis *redis.Client

	store     *voucherApp.Store
	router    *Router
	scheduler *scheduler.RetentionScheduler

	shutdownOnce sync.Once
}

func NewContainer(ctx context.Context, cfg *config.Config, db *gorm.DB, log logger.Interface) (*Container, error) {
	c := &Container{cfg: cfg, db: db, log: log}

	cipher, err := crypto.NewCredentialCipher(cfg.Voucher.CredentialSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential cipher: %w", err)
	}

	gate, err := c.initSweepGate(ctx)
	if err != nil {
		return nil, err
	}

	repo := repository.NewVoucherRepository(db)
	clock := biztime.SystemClock()

	sweeper := services.NewRetentionSweeper(repo, gate, clock, services.RetentionPolicy{
		CleanupInterval:    cfg.Voucher.CleanupInterval,
		ClaimedRetention:   cfg.Voucher.ClaimedRetention,
		CancelledRetention: cfg.Voucher.CancelledRetention,
		ExpiredRetention:   cfg.Voucher.ExpiredRetention,
		PurgeBatchSize:     cfg.Voucher.PurgeBatchSize,
	}, log.Named("sweeper"))

	c.store = voucherApp.NewStore(repo, cipher, sweeper, clock, voucherApp.StoreConfig{
		MaxUnclaimedPerWallet: cfg.Voucher.MaxUnclaimedPerWallet,
		DefaultExpiryID:       cfg.Voucher.DefaultExpiryID,
		Environment:           cfg.Voucher.Environment,
	}, log.Named("voucher"))

	handler := voucherHandlers.NewVoucherHandler(c.store, cfg.Voucher.DefaultExpiryID, log.Named("http"))
	c.router = NewRouter(handler, c.ping, cfg.Server.AllowedOrigins, log.Named("http"))
	c.router.SetupRoutes()

	c.scheduler = scheduler.NewRetentionScheduler(sweeper, cfg.Voucher.CleanupInterval, log.Named("scheduler"))

	return c, nil
}

func (c *Container) initSweepGate(ctx context.Context) (services.Gate, error) {
	if c.cfg.Voucher.SweepGate != sharedConfig.SweepGateRedis {
		c.log.Infow("using in-process sweep gate")
		return services.NewLocalGate(), nil
	}

	client, err := cache.NewRedisClient(ctx, c.cfg.Redis.GetAddr(), c.cfg.Redis.Password, c.cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.redis = client
	c.log.Infow("using redis sweep gate", "addr", c.cfg.Redis.GetAddr())

	return cache.NewRedisSweepGate(client, c.cfg.Voucher.Environment, c.log.Named("sweepgate")), nil
}

func (c *Container) ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Container) Engine() *gin.Engine {
	return c.router.GetEngine()
}

func (c *Container) Store() *voucherApp.Store {
	return c.store
}

// StartBackground launches the retention scheduler.
func (c *Container) StartBackground(ctx context.Context) {
	c.scheduler.Start(ctx)
}

func (c *Container) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.scheduler.Stop()

		if c.redis != nil {
			if err := c.redis.Close(); err != nil {
				c.log.Warnw("failed to close redis client", "error", err)
			}
		}
	})
}
