// Package grpc exposes the standard health service for the dashboard backend
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"devdash/pkg/logger"
	"devdash/pkg/models"
)

// ServiceName is the health-checked service
const ServiceName = "devdash.v1.Dashboard"

const defaultCheckInterval = 15 * time.Second

// PingFunc reports whether the backing store is reachable
type PingFunc func(ctx context.Context) error

// Server represents the gRPC server
type Server struct {
	server   *grpc.Server
	addr     string
	health   *health.Server
	ping     PingFunc
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewServer creates a gRPC server whose health status follows ping
func NewServer(addr string, ping PingFunc) *Server {
	grpcLogger := logrus.NewEntry(logrus.StandardLogger())
	recovery := grpc_recovery.WithRecoveryHandler(recoverPanic)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	server := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			grpc_logging.UnaryServerInterceptor(grpcLogger),
			grpc_recovery.UnaryServerInterceptor(recovery),
			callLogger,
		)),
		grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(
			grpc_logging.StreamServerInterceptor(grpcLogger),
			grpc_recovery.StreamServerInterceptor(recovery),
		)),
	)

	grpc_health_v1.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return &Server{
		server:   server,
		addr:     addr,
		health:   healthServer,
		ping:     ping,
		interval: defaultCheckInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins listening for gRPC connections and probing the store
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(listener)
}

// Serve runs on an existing listener
func (s *Server) Serve(listener net.Listener) error {
	s.Check(context.Background())
	go s.watch()

	go func() {
		logrus.Infof("gRPC server starting on %s", listener.Addr())
		if err := s.server.Serve(listener); err != nil {
			logrus.Errorf("gRPC server stopped: %v", err)
		}
	}()
	return nil
}

// Check probes the store once and updates the serving status
func (s *Server) Check(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	serving := grpc_health_v1.HealthCheckResponse_SERVING
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			logrus.Warnf("health probe failed: %v", err)
			serving = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	logger.Debugf("health status for %s: %s", ServiceName, serving)
	s.health.SetServingStatus(ServiceName, serving)
	return serving
}

func (s *Server) watch() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Check(context.Background())
		case <-s.stop:
			return
		}
	}
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		logrus.Info("gRPC server stopping")
		close(s.stop)
		s.health.Shutdown()
		s.server.GracefulStop()
		logrus.Info("gRPC server stopped")
	})
}

// recoverPanic turns a handler panic into an Internal status
func recoverPanic(p interface{}) error {
	logrus.Errorf("gRPC handler panic: %v", p)
	return models.NewGRPCError(codes.Internal, models.ErrCodeInternal, "internal error", fmt.Errorf("panic: %v", p)).ToGRPCError()
}

// callLogger reports each unary call through pkg/logger with its outcome
func callLogger(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logger.GRPC(info.FullMethod, callParams(req, err), int(time.Since(start).Milliseconds()))
	return resp, err
}

func callParams(req interface{}, err error) string {
	params := ""
	if r, ok := req.(interface{ GetService() string }); ok {
		params = "service=" + r.GetService()
	}
	if err != nil {
		if params != "" {
			params += " "
		}
		params += "code=" + status.Code(err).String()
	}
	return params
}
