// Package app contains the application setup for the storefront service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/store/ledger"
	"github.com/abgdnv/storefront/internal/store/service"
	"github.com/abgdnv/storefront/internal/store/transport/rest"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	StoreService service.StoreService
	Logger       *slog.Logger
}

// SetupDependencies wires the ledger core, the capability check, the logical
// clock and the event publisher into the store service.
func SetupDependencies(cfg *config.Config, transfer ledger.Transfer, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	st := ledger.NewStore(transfer, cfg.Store.ReturnWindow)
	authz := service.OwnerAuthorizer{Owner: ledger.Account(cfg.Store.Owner)}
	sService := service.NewService(st, authz, ledger.NewTickClock(), publisher, logger)

	return &Dependencies{
		StoreService: sService,
		Logger:       logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the storefront application.
// Used by tests to exercise the full middleware and routing stack.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the storefront application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	storeHandler := rest.NewHandler(deps.StoreService, deps.Logger)
	storeHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the storefront application.
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
