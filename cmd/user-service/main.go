package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/MikeMC777/fulfillment-ecom/internal/config"
	"github.com/MikeMC777/fulfillment-ecom/internal/logx"
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

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()
	if cfg.RunMigrations {
		if err := postgres.Migrate(pool); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	addr := listenAddr(cfg.UserSvcAddr)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal("listen", zap.String("addr", addr), zap.Error(err))
	}

	srv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	user.RegisterPermissionServer(srv, user.NewService(user.NewPGRepo(pool)))

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(srv)

	go func() {
		log.Info("user-service listening", zap.String("addr", addr))
		if err := srv.Serve(lis); err != nil {
			log.Error("serve", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down user-service")
	hs.Shutdown()
	srv.GracefulStop()
}

// listenAddr turns the dial address other services use into a bind address.
func listenAddr(dial string) string {
	_, port, err := net.SplitHostPort(dial)
	if err != nil {
		return ":50051"
	}
	return ":" + port
}
