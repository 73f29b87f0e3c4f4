// Package main runs the book service: the REST API, the gRPC health endpoint
// and the optional pprof and metrics servers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abgdnv/library/internal/app"
	"github.com/abgdnv/library/internal/config"
	"github.com/abgdnv/library/internal/events"
	"github.com/abgdnv/library/internal/store/migrations"
	"github.com/abgdnv/library/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/library/pkg/config"
	"github.com/abgdnv/library/pkg/config/configloader"
	"github.com/abgdnv/library/pkg/messaging"
	"github.com/abgdnv/library/pkg/nats"
	"github.com/abgdnv/library/pkg/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const serviceName = "book"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application and starts the HTTP, gRPC, pprof and metrics servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Telemetry.Traces.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, app.ServiceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "tracer provider", cfg.Shutdown.Timeout, tp.Shutdown)
	}

	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		mp, handler, err := telemetry.NewMeterProvider(app.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "meter provider", cfg.Shutdown.Timeout, mp.Shutdown)
		metricsHandler = handler
	}

	var dbPool *pgxpool.Pool
	if cfg.Database.Driver == pkgconfig.DriverPostgres {
		if cfg.Database.Migrate {
			if err := migrations.Up(cfg.Database.URL); err != nil {
				return err
			}
			logger.Info("Database migrations applied")
		}
		var err error
		dbPool, err = bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return err
		}
		defer dbPool.Close()
		logger.Info("Successfully connected to the database!")
	} else {
		logger.Warn("Using in-memory book store, data is lost on restart")
	}

	bookStore, err := app.NewStore(cfg.Database, dbPool)
	if err != nil {
		return err
	}

	publisher, closePublisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps := app.SetupDependencies(bookStore, publisher, cfg, logger)
	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)

	g, gCtx := errgroup.WithContext(ctx)

	serveHTTP(g, gCtx, logger, "HTTP", httpServer, cfg.Shutdown.Timeout)

	// Start the gRPC server
	g.Go(func() error {
		grpcAddr := ":" + cfg.GRPC.Port
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	// keep the health status current; reports NOT_SERVING once gCtx is done
	g.Go(func() error {
		deps.Health.Run(gCtx)
		return nil
	})
	// gracefully shutdown gRPC server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			logger.Info("gRPC server stopped gracefully.")
			return nil
		case <-time.After(cfg.Shutdown.Timeout):
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})

	if cfg.PProf.Enabled {
		// nil handler serves http.DefaultServeMux, where net/http/pprof registers itself
		serveHTTP(g, gCtx, logger, "pprof", &http.Server{Addr: cfg.PProf.Addr, ReadHeaderTimeout: 5 * time.Second}, cfg.Shutdown.Timeout)
	}

	if metricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		serveHTTP(g, gCtx, logger, "metrics", &http.Server{Addr: cfg.Telemetry.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}, cfg.Shutdown.Timeout)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// serveHTTP runs srv in g and shuts it down once ctx is done.
func serveHTTP(g *errgroup.Group, ctx context.Context, logger *slog.Logger, name string, srv *http.Server, timeout time.Duration) {
	g.Go(func() error {
		logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// newPublisher connects to NATS JetStream when enabled and guards publishing with
// a circuit breaker. Without NATS, events are dropped.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Nats.Enabled {
		logger.Info("NATS is disabled, book events are not published")
		return messaging.NoopPublisher{}, func() {}, nil
	}

	nc, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := nats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if err := nats.EnsureStream(ctx, js, cfg.Nats.Stream, events.Subjects...); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", slog.String("url", cfg.Nats.Url), slog.String("stream", cfg.Nats.Stream))

	publisher := messaging.NewBreakerPublisher("nats-publisher", nats.NewNatsPublisher(js), cfg.Resilience.CircuitBreaker)
	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("Failed to drain NATS connection", "error", err)
		}
	}
	return publisher, closeFn, nil
}

func shutdownWithTimeout(logger *slog.Logger, name string, timeout time.Duration, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("Failed to shut down "+name, "error", err)
	}
}
