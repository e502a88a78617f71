// cmd/catalogservice/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"google.golang.org/grpc/reflection"

	httpAPI "github.com/sarcascoder/Netflix-clone/internal/api"
	"github.com/sarcascoder/Netflix-clone/internal/clients"
	"github.com/sarcascoder/Netflix-clone/internal/config"
	grpcServer "github.com/sarcascoder/Netflix-clone/internal/grpc"
	"github.com/sarcascoder/Netflix-clone/internal/logging"
	"github.com/sarcascoder/Netflix-clone/internal/store"
	"github.com/sarcascoder/Netflix-clone/pkg/auth"
)

// openStores returns Postgres stores when a database URL is configured, in-memory stores otherwise.
// The returned *sqlx.DB is nil for in-memory stores.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.CatalogStore, store.WatchlistStore, *sqlx.DB, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		catalog := store.NewMemoryCatalogStore(logger)
		return catalog, store.NewMemoryWatchlistStore(catalog, logger), nil, nil
	}

	db, err := store.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	catalog, err := store.NewPostgresCatalogStore(db, logger)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	watchlist, err := store.NewPostgresWatchlistStore(db, logger)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return catalog, watchlist, db, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	catalog, watchlist, db, err := openStores(startupCtx, cfg, logger)
	if err != nil {
		cancelStartup()
		logger.Error("CatalogService failed to initialize stores", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if db != nil {
		defer func() {
			logger.Info("Closing PostgreSQL connection...")
			if err := db.Close(); err != nil {
				logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
			}
		}()
	}

	if cfg.SeedCatalog {
		if _, err := store.SeedCatalog(startupCtx, catalog, logger); err != nil {
			cancelStartup()
			logger.Error("Failed to seed catalog", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	cancelStartup()

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		logger.Error("Failed to initialize token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var lookup httpAPI.TitleLookup
	if cfg.CatalogGRPCAddr != "" {
		lookupClient, err := clients.NewCatalogLookupClient(cfg.CatalogGRPCAddr, logger)
		if err != nil {
			logger.Error("Failed to create catalog lookup client", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer lookupClient.Close()
		lookup = lookupClient
	}

	// --- gRPC server ---
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		logger.Error("Failed to listen for CatalogService gRPC", slog.String("port", cfg.GRPCPort), slog.String("error", err.Error()))
		os.Exit(1)
	}
	grpcSrv := grpcServer.NewGRPCServer(catalog, logger)
	reflection.Register(grpcSrv)

	go func() {
		logger.Info("CatalogService gRPC server starting", slog.String("port", cfg.GRPCPort))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("CatalogService gRPC server Serve() failed", slog.String("error", err.Error()))
		}
	}()

	// --- HTTP server ---
	handler := httpAPI.NewCatalogHandler(catalog, watchlist, lookup, auth.NewBearerAuthenticator(tokens, logger), logger)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpAPI.NewRouter(handler, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("CatalogService HTTP server starting", slog.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("CatalogService HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("CatalogService shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("CatalogService HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("CatalogService HTTP server gracefully stopped.")
	}

	grpcSrv.GracefulStop()
	logger.Info("CatalogService gRPC server gracefully stopped.")
}
