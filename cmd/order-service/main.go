package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
	"github.com/MikeMC777/fulfillment-ecom/internal/config"
	"github.com/MikeMC777/fulfillment-ecom/internal/docs"
	"github.com/MikeMC777/fulfillment-ecom/internal/httpx"
	"github.com/MikeMC777/fulfillment-ecom/internal/logx"
	"github.com/MikeMC777/fulfillment-ecom/internal/metrics"
	"github.com/MikeMC777/fulfillment-ecom/internal/notify"
	"github.com/MikeMC777/fulfillment-ecom/internal/service"
	"github.com/MikeMC777/fulfillment-ecom/internal/store"
	"github.com/MikeMC777/fulfillment-ecom/internal/store/postgres"
	"github.com/MikeMC777/fulfillment-ecom/internal/user"
)

func main() {
	cfg := config.Load()
	log := logx.Must(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()
	cfg.Log(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, perms, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal("backend", zap.Error(err))
	}
	defer closeBackend()

	var cache cart.Cache = cart.NoopCache{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		cache = cart.NewRedisCache(rdb)
	}

	var dispatcher notify.Dispatcher = notify.NewLogDispatcher(log)
	if cfg.KafkaBrokers != "" {
		kd := notify.NewKafkaDispatcher(notify.NewWriter(cfg.KafkaBrokers, cfg.KafkaNotifyTopic), log, 0)
		defer func() {
			if err := kd.Close(); err != nil {
				log.Warn("close notifier", zap.Error(err))
			}
		}()
		dispatcher = kd
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, "order-service")

	a := api{
		carts:    service.NewCartService(st, perms, cache, log),
		checkout: service.NewCheckout(st, cache, m, log, cfg.CheckoutTimeout),
		orders:   service.NewOrderService(st, perms, dispatcher, m, log),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log), httpx.Metrics(m))
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(metrics.HandlerFor(reg)))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.OrdersInstance)))
	registerRoutes(r, a)

	srv := &http.Server{Addr: cfg.OrderSvcAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("order-service listening", zap.String("addr", cfg.OrderSvcAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("serve", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down order-service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}

// openBackend returns the store and the permission checker. The memory
// driver is self-contained: seeded data and a static role table. The
// postgres driver asks the user service for permissions.
func openBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, service.PermissionChecker, func(), error) {
	if cfg.StoreDriver == "memory" {
		st, perms, err := memoryBackend(cfg.MemorySeed)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Warn("using seeded in-memory store, data is lost on exit")
		return st, perms, st.Close, nil
	}

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.RunMigrations {
		if err := postgres.Migrate(pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		log.Info("migrations applied")
	}
	perms, conn, err := user.DialPermissions(cfg.UserSvcAddr)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	st := postgres.New(pool)
	return st, perms, func() {
		_ = conn.Close()
		st.Close()
	}, nil
}
