package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/squares-wager-platform/internal/bet-service/repo"
	"github.com/radieske/squares-wager-platform/internal/ledger-worker/cache"
	"github.com/radieske/squares-wager-platform/internal/ledger-worker/consumer"
	"github.com/radieske/squares-wager-platform/internal/ledger-worker/pubsub"
	sharedcache "github.com/radieske/squares-wager-platform/internal/shared/cache"
	"github.com/radieske/squares-wager-platform/internal/shared/config"
	"github.com/radieske/squares-wager-platform/internal/shared/db"
	"github.com/radieske/squares-wager-platform/internal/shared/kafka"
	"github.com/radieske/squares-wager-platform/internal/shared/logger"
	"github.com/radieske/squares-wager-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group ledger-worker assina os dois tópicos de aposta
	reader := kafka.NewGroupReader(cfg.KafkaBrokers, "ledger-worker", cfg.TopicBetPlaced, cfg.TopicBetSettled)
	defer reader.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_messages_consumed_total", Help: "mensagens consumidas por tópico"}, []string{"topic"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_cache_sets_total", Help: "snapshots gravados no cache"})
	broadcasts := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_broadcasts_total", Help: "atualizações enviadas ao display"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, broadcasts, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Bets:        repo.NewPostgres(pg),
		Cache:       cache.NewRedisCache(redisClient, cfg.LedgerCacheTTL),
		Broadcast:   pubsub.NewRedisBroadcaster(redisClient),
		Channel:     cfg.RedisLedgerChannel,
		OnConsumed:  func(topic string) { consumed.WithLabelValues(topic).Inc() },
		OnCached:    func() { cached.Inc() },
		OnBroadcast: func() { broadcasts.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.Checks{
		"postgres": pg.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})
	log.Info("metrics/health listening", zap.String("addr", msrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("ledger-worker started",
		zap.Strings("topics", []string{cfg.TopicBetPlaced, cfg.TopicBetSettled}),
		zap.String("channel", cfg.RedisLedgerChannel),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = msrv.Shutdown(shutdownCtx)
	log.Info("ledger-worker stopped")
}
