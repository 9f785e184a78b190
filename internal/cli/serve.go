package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"lecture-quiz-service/internal/app"
	"lecture-quiz-service/internal/config"
	"lecture-quiz-service/internal/infra/memory"
	"lecture-quiz-service/internal/infra/postgres"
	rediscache "lecture-quiz-service/internal/infra/redis"
	"lecture-quiz-service/internal/infra/remote"
	transport "lecture-quiz-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	store, stats, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Cache.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		ttl := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
		store = rediscache.NewQuizCache(client, store, ttl)
	}

	service := app.NewQuizService(store)
	handler := transport.NewHandler(service, stats)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildStore constructs exactly one quiz backend from config. When the chosen
// backend's prerequisites are missing or unreachable the server falls back to
// the ephemeral store so reads keep working; the degraded mode is logged.
func buildStore(ctx context.Context, cfg config.Config) (app.QuizStore, app.StatsReader, func(), error) {
	noop := func() {}

	switch kind := cfg.StoreKind(); kind {
	case config.StoreEphemeral:
		return memory.NewQuizStore(), nil, noop, nil

	case config.StoreRemote:
		url := cfg.RemoteURL()
		if url == "" {
			log.Printf("remote store selected but no url configured, falling back to ephemeral store")
			return memory.NewQuizStore(), nil, noop, nil
		}
		return remote.NewQuizStore(url), nil, noop, nil

	case config.StoreTransactional:
		if cfg.Postgres.URL == "" {
			log.Printf("transactional store selected but no postgres url configured, falling back to ephemeral store")
			return memory.NewQuizStore(), nil, noop, nil
		}
		return buildTransactionalStore(ctx, cfg)

	default:
		log.Printf("unknown store kind %q, falling back to ephemeral store", kind)
		return memory.NewQuizStore(), nil, noop, nil
	}
}

func buildTransactionalStore(ctx context.Context, cfg config.Config) (app.QuizStore, app.StatsReader, func(), error) {
	noop := func() {}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		log.Printf("postgres unreachable (%v), falling back to ephemeral store", err)
		return memory.NewQuizStore(), nil, noop, nil
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		db.Close()
		return nil, nil, noop, err
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, noop, err
	}

	// The stats read path uses its own pgx pool; losing it only disables
	// the stats endpoint, not the quiz lifecycle.
	var stats app.StatsReader
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		log.Printf("stats pool unavailable: %v", err)
		pool = nil
	} else {
		stats = postgres.NewStatsReader(pool)
	}

	cleanup := func() {
		db.Close()
		if pool != nil {
			pool.Close()
		}
	}
	return postgres.NewQuizStore(db), stats, cleanup, nil
}
