package cmd

import (
	"context"
	"fmt"
	"log/slog"

	httpin "storefront/internal/adapters/in/http"
	"storefront/internal/adapters/out/delivery"
	"storefront/internal/adapters/out/postgres"
	"storefront/internal/adapters/out/postgres/notificationrepo"
	"storefront/internal/adapters/out/postgres/orderrepo"
	"storefront/internal/adapters/out/redis"
	"storefront/internal/adapters/out/whatsapp"
	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/application/usecases/queries"
	"storefront/internal/core/ports"
	"storefront/internal/jobs"
	"storefront/internal/pkg/clock"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	queue      ports.NotificationQueue
	clock      ports.Clock
	logger     *slog.Logger

	renderer    ports.MessageRenderer
	delivery    ports.MessageDelivery
	redisClient *goredis.Client
	lock        ports.DrainLock
}

// NewCompositionRoot builds the adapters shared by every handler. The Redis
// drain lock is only wired when REDIS_ADDR is set.
func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	renderer, err := whatsapp.NewRenderer(cfg.StoreName, cfg.WhatsAppCountryCode)
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	var messageDelivery ports.MessageDelivery
	switch cfg.NotifyDelivery {
	case DeliverySNS:
		messageDelivery, err = delivery.NewSNSDeliveryFromRegion(ctx, cfg.AWSRegion, cfg.SNSTopicARN)
		if err != nil {
			return nil, fmt.Errorf("build sns delivery: %w", err)
		}
	default:
		messageDelivery = delivery.NewLogDelivery(logger)
	}

	root := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		queue:      notificationrepo.NewGormNotificationQueue(gormDB),
		clock:      clock.System{},
		logger:     logger,
		renderer:   renderer,
		delivery:   messageDelivery,
	}

	if cfg.RedisAddr != "" {
		root.redisClient = redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		root.lock = redis.NewDrainLock(root.redisClient, redis.DefaultLockKey, redis.DefaultLockTTL)
	}

	return root, nil
}

// Close releases the connections opened by the composition root.
func (c *CompositionRoot) Close() error {
	if c.redisClient == nil {
		return nil
	}
	return c.redisClient.Close()
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) notifier() *commands.Notifier {
	n := commands.NewNotifier(c.queue, c.clock, c.logger)
	if c.cfg.DrainOnWrite {
		n.WithImmediateDrain(c.CreateDrainNotificationQueueCommandHandler())
	}
	return n
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.orderUoWFactory(), c.notifier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateValidatePaymentCommandHandler() commands.ValidatePaymentCommandHandler {
	return commands.NewValidatePaymentCommandHandler(c.orderUoWFactory(), c.notifier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateAttachPaymentProofCommandHandler() commands.AttachPaymentProofCommandHandler {
	return commands.NewAttachPaymentProofCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateDrainNotificationQueueCommandHandler() commands.DrainNotificationQueueCommandHandler {
	return commands.NewDrainNotificationQueueCommandHandler(
		c.queue,
		orderrepo.NewGormOrderRepository(c.gormDB),
		c.renderer,
		c.delivery,
		c.lock,
		c.clock,
		commands.DrainOptions{
			BatchSize:     c.cfg.BatchSize,
			MaxAttempts:   c.cfg.MaxAttempts,
			IntentTimeout: c.cfg.IntentTimeout,
			Concurrency:   c.cfg.DispatchConcurrency,
		},
		c.logger,
	)
}

func (c *CompositionRoot) CreateSweepNotificationQueueCommandHandler() commands.SweepNotificationQueueCommandHandler {
	return commands.NewSweepNotificationQueueCommandHandler(c.queue, c.clock, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListActiveOrdersQueryHandler() queries.ListActiveOrdersQueryHandler {
	return queries.NewListActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrderHistoryQueryHandler() queries.ListOrderHistoryQueryHandler {
	return queries.NewListOrderHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		CreateOrder:        c.CreateCreateOrderCommandHandler(),
		ChangeOrderStatus:  c.CreateChangeOrderStatusCommandHandler(),
		ValidatePayment:    c.CreateValidatePaymentCommandHandler(),
		AttachPaymentProof: c.CreateAttachPaymentProofCommandHandler(),
		DrainNotifications: c.CreateDrainNotificationQueueCommandHandler(),
		GetOrder:           c.CreateGetOrderQueryHandler(),
		ListActiveOrders:   c.CreateListActiveOrdersQueryHandler(),
		ListOrderHistory:   c.CreateListOrderHistoryQueryHandler(),
	}, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateDrainNotificationQueueCommandHandler(),
		c.CreateSweepNotificationQueueCommandHandler(),
		jobs.Schedules{
			Dispatch:  c.cfg.DispatchSchedule,
			Janitor:   c.cfg.JanitorSchedule,
			Retention: c.cfg.Retention,
		},
		c.logger,
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
