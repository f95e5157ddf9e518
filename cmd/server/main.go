package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"github.com/atlekbai/dynquery/internal/command"
	"github.com/atlekbai/dynquery/internal/config"
	"github.com/atlekbai/dynquery/internal/exec"
	"github.com/atlekbai/dynquery/internal/handler"
	"github.com/atlekbai/dynquery/internal/middleware"
	"github.com/atlekbai/dynquery/internal/schema"
	"github.com/atlekbai/dynquery/internal/server"
	"github.com/atlekbai/dynquery/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	cache, executor, pinger, closeDB, err := openDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer closeDB()
	logger.Info("schema cache loaded",
		zap.Int("tables", cache.TableCount()),
		zap.String("dialect", cache.Dialect().Name()),
	)

	dispatcher := command.New(cache,
		command.WithJoinType(cfg.JoinType),
		command.WithLikeStrings(cfg.LikeStrings),
		command.WithLogger(logger),
	)

	interceptors := []connect.Interceptor{
		server.LoggingInterceptor(logger),
	}

	queries := service.NewQueryService(dispatcher, executor, logger)

	mux := http.NewServeMux()
	server.Mount(mux, interceptors, queries)

	healthz := handler.NewHealthz(logger)
	healthz.Add("database", pinger)
	mux.Handle("/api/", handler.NewRouter(logger, queries, cache, healthz))

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: middleware.Recovery(logger)(middleware.Logging(logger)(mux)),
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		srv.Shutdown(context.Background()) //nolint:errcheck
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr()))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return zcfg.Build()
}

// openDatabase loads the schema and builds the executor for cfg.Driver.
// pgx introspects the live database unless SCHEMA_FILE is set; the
// database/sql drivers always read the schema file.
func openDatabase(ctx context.Context, cfg *config.Config) (*schema.Cache, exec.Executor, handler.Pinger, func(), error) {
	if cfg.Driver == "pgx" {
		pool, err := exec.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		cache, err := loadSchema(ctx, cfg, pool)
		if err != nil {
			pool.Close()
			return nil, nil, nil, nil, err
		}
		return cache, exec.NewPgExecutor(pool), pool, pool.Close, nil
	}

	db, err := exec.OpenDB(ctx, cfg.Driver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cache, err := schema.LoadFile(cfg.SchemaFile, cfg.Dialect)
	if err != nil {
		db.Close()
		return nil, nil, nil, nil, err
	}
	return cache, exec.NewSQLExecutor(db), handler.PingerFunc(db.PingContext), func() { db.Close() }, nil
}

func loadSchema(ctx context.Context, cfg *config.Config, db schema.Querier) (*schema.Cache, error) {
	if cfg.SchemaFile != "" {
		return schema.LoadFile(cfg.SchemaFile, cfg.Dialect)
	}
	d, err := schema.DialectByName(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	cache := schema.NewCache(d)
	if err := cache.LoadPostgres(ctx, db, cfg.SchemaName); err != nil {
		return nil, err
	}
	return cache, nil
}
