package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/squares-wager-platform/internal/bet-service/repo"
	"github.com/radieske/squares-wager-platform/internal/display-service/cache"
	httpapi "github.com/radieske/squares-wager-platform/internal/display-service/http"
	"github.com/radieske/squares-wager-platform/internal/display-service/ws"
	sharedcache "github.com/radieske/squares-wager-platform/internal/shared/cache"
	"github.com/radieske/squares-wager-platform/internal/shared/config"
	"github.com/radieske/squares-wager-platform/internal/shared/db"
	"github.com/radieske/squares-wager-platform/internal/shared/logger"
	"github.com/radieske/squares-wager-platform/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	api := &httpapi.API{
		Log:   log,
		Cache: cache.New(redisClient),
		Bets:  repo.NewPostgres(pg),
		TTL:   cfg.LedgerCacheTTL,
	}

	// hub WebSocket: snapshot no subscribe, depois atualizações do ledger-worker
	origins := make(map[string]bool, len(cfg.CORSOrigins))
	for _, o := range cfg.CORSOrigins {
		origins[o] = true
	}
	hub := ws.NewHub(log, func(r *http.Request) bool {
		return origins["*"] || origins[r.Header.Get("Origin")]
	}, func(ctx context.Context, gameID string) (any, error) {
		return api.Ledger(ctx, gameID)
	})
	api.WS = hub.HandleWS
	ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisLedgerChannel, hub)

	// sobe servidor de métricas e health
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.Checks{
		"postgres": pg.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("display-service listening", zap.String("addr", srv.Addr), zap.String("metrics", msrv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	_ = msrv.Shutdown(shutdownCtx)
	log.Info("display-service stopped")
}
