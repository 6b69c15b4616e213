package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"

	"devdash/internal/broker"
	"devdash/internal/catalog"
	"devdash/internal/core"
	grpcProtocol "devdash/internal/protocols/grpc"
	httpProtocol "devdash/internal/protocols/http"
	wsProtocol "devdash/internal/protocols/websocket"
	"devdash/internal/repository"
	"devdash/pkg/config"
	"devdash/pkg/database"
	"devdash/pkg/logger"
)

func main() {
	configPath := flag.String("config", "./configs/development.yaml", "server configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)
	syncLogrus(cfg.Logging)
	logger.Info("Starting devdash server...")

	pool, err := database.NewPGXPool(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	logger.Info("Connected to PostgreSQL database")

	repos := repository.New(pool)

	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
			logger.Fatalf("Failed to load video catalog: %v", err)
		}
	}
	logger.Infof("Loaded video catalog with %d entries", cat.Len())

	chatBroker := newBroker(cfg)
	defer chatBroker.Close()

	accessSvc := core.NewAccessService(core.AccessOptions{
		Code:          cfg.Access.Code,
		SessionSecret: cfg.Access.SessionSecret,
		Issuer:        cfg.Access.Issuer,
		TTL:           cfg.Access.SessionTTL,
	})
	dashboardSvc := core.NewDashboardService(repos.Users, repos.Videos, repos.Notifications, cat,
		core.DashboardOptions{Location: cfg.Location()})
	chatSvc := core.NewChatService(repos.Chats, chatBroker, cfg.Chat.DoctorID)
	logger.Info("Initialized all core services")

	ping := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return repos.Ping(ctx)
	}

	httpServer := httpProtocol.NewServer(httpProtocol.Options{
		Access:         accessSvc,
		Dashboard:      dashboardSvc,
		Chat:           chatSvc,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookie:   cfg.Access.SecureCookie,
		Ready:          func() error { return ping(context.Background()) },
	})

	wsHub := wsProtocol.NewHub(chatSvc)
	wsProtocol.NewHandler(wsHub, wsProtocol.Options{
		AllowedOrigins: cfg.Chat.AllowedOrigins,
		SendRatePerSec: cfg.Chat.SendRatePerSec,
		SendBurst:      cfg.Chat.SendBurst,
	}).Register(httpServer.Router())

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("HTTP server panic recovered: %v", r)
			}
		}()
		logger.Infof("Starting HTTP server on %s", cfg.HTTPAddr())
		if err := httpServer.Start(cfg.HTTPAddr()); err != nil {
			logger.Errorf("HTTP server error: %v", err)
		}
	}()

	var grpcServer *grpcProtocol.Server
	if cfg.GRPC.Enabled {
		grpcServer = grpcProtocol.NewServer(cfg.GRPCAddr(), ping)
		if err := grpcServer.Start(); err != nil {
			logger.Warnf("gRPC server not started, continuing without it: %v", err)
			grpcServer = nil
		}
	} else {
		logger.Info("gRPC health server disabled")
	}

	logger.Info("All servers started, press Ctrl+C to shut down")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Infof("Received signal: %v", sig)

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Stop()
		logger.Info("gRPC server stopped")
	}

	wsHub.Stop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown: %v", err)
	}
	logger.Info("Shutdown complete")
}

// newBroker picks Redis when an address is configured, else the in-process broker
func newBroker(cfg *config.Config) broker.Broker {
	if cfg.Redis.Addr == "" {
		logger.Info("Using in-process chat broker")
		return broker.NewMemory()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b, err := broker.NewRedis(ctx, broker.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatalf("Failed to connect chat broker: %v", err)
	}
	logger.Infof("Using Redis chat broker at %s", cfg.Redis.Addr)
	return b
}

// syncLogrus applies the logging settings to the logrus logger used by the
// stream hub and the gRPC middleware
func syncLogrus(cfg logger.Config) {
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logrus.SetLevel(level)
	}
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
