// Package app contains the application setup for the book service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/library/internal/config"
	"github.com/abgdnv/library/internal/service"
	"github.com/abgdnv/library/internal/store"
	grpcImpl "github.com/abgdnv/library/internal/transport/grpc"
	"github.com/abgdnv/library/internal/transport/rest"
	pkgconfig "github.com/abgdnv/library/pkg/config"
	"github.com/abgdnv/library/pkg/messaging"
	"github.com/abgdnv/library/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
)

const ServiceName = "book-service"

type Dependencies struct {
	BookService service.BookService
	Health      *grpcImpl.HealthServer
	Logger      *slog.Logger
}

// SetupDependencies wires the service on top of the given store and publisher.
func SetupDependencies(bookStore store.PingableStore, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		BookService: service.NewService(bookStore, publisher, logger),
		Health:      grpcImpl.NewHealthServer(bookStore, cfg.GRPC.HealthInterval, logger),
		Logger:      logger,
	}
}

// NewStore returns the store selected by database.driver. dbPool is only used
// for the postgres driver and may be nil otherwise.
func NewStore(cfg pkgconfig.DatabaseConfig, dbPool *pgxpool.Pool) (store.PingableStore, error) {
	switch cfg.Driver {
	case pkgconfig.DriverMemory:
		return store.NewInMemoryStore(), nil
	case pkgconfig.DriverPostgres, "":
		if dbPool == nil {
			return nil, fmt.Errorf("postgres store requires a connection pool")
		}
		return store.NewPgStore(dbPool), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// SetupHttpHandler initializes the router and routes of the book service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(ServiceName, deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the book service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	bookHandler := rest.NewHandler(deps.BookService, deps.Logger)
	bookHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the book service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, deps.Health.Register)
}
