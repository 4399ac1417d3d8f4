package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	bhttp "github.com/radieske/squares-wager-platform/internal/bet-service/http"
	"github.com/radieske/squares-wager-platform/internal/bet-service/markers"
	"github.com/radieske/squares-wager-platform/internal/bet-service/odds"
	kpub "github.com/radieske/squares-wager-platform/internal/bet-service/producer"
	"github.com/radieske/squares-wager-platform/internal/bet-service/repo"
	"github.com/radieske/squares-wager-platform/internal/settlement"
	sharedcache "github.com/radieske/squares-wager-platform/internal/shared/cache"
	"github.com/radieske/squares-wager-platform/internal/shared/config"
	"github.com/radieske/squares-wager-platform/internal/shared/db"
	"github.com/radieske/squares-wager-platform/internal/shared/kafka"
	"github.com/radieske/squares-wager-platform/internal/shared/logger"
	"github.com/radieske/squares-wager-platform/internal/shared/metrics"
	"github.com/radieske/squares-wager-platform/internal/wager"
)

// storage agrupa o que muda entre STORE=postgres e STORE=memory
type storage interface {
	wager.Store
	wager.GameSource
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	checks := metrics.Checks{}

	var (
		store   storage
		marks   settlement.MarkerStore
		checker bhttp.OddsChecker
		publ    wager.Publisher = wager.NopPublisher{}
	)
	switch cfg.Store {
	case "memory":
		// dev local: sem Postgres/Redis/Kafka, com um jogo de demonstração
		mem := wager.NewMemStore()
		mem.PutGame(demoGame())
		store = mem
		marks = settlement.NewMemMarkers()
		log.Warn("using in-memory store; data is lost on restart")
	default:
		// Postgres
		pg, err := db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("pg", zap.Error(err))
		}
		defer pg.Close()
		checks["postgres"] = pg.PingContext

		// Redis
		rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

		// Kafka writers (bet_placed, bet_settled)
		placed := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
		defer placed.Close()
		settled := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
		defer settled.Close()

		store = repo.NewPostgres(pg)
		marks = markers.NewRedisStore(rdb, cfg.SettlementMarkersKey)
		publ = kpub.NewKafkaPublisher(placed, settled)
		if cfg.OddsCheck {
			checker = odds.NewValidator(rdb)
		}
	}

	// métricas de negócio
	placedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bets_placed_total", Help: "apostas aceitas por tipo"}, []string{"type"})
	settledTotal := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bets_settled_total", Help: "apostas que saíram de pending, por status"}, []string{"status"})
	rejectedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bets_rejected_total", Help: "operações recusadas por código de erro"}, []string{"code"})
	prometheus.MustRegister(placedTotal, settledTotal, rejectedTotal)

	bets := wager.NewService(log, store, publ)
	bets.Hooks = wager.Hooks{
		OnPlaced:   func(k wager.Kind) { placedTotal.WithLabelValues(string(k)).Inc() },
		OnSettled:  func(s wager.Status) { settledTotal.WithLabelValues(string(s)).Inc() },
		OnRejected: func(code string) { rejectedTotal.WithLabelValues(code).Inc() },
	}
	settle := settlement.NewService(log, store, marks, settlement.Aggregator{})

	// HTTP público
	api := bhttp.NewServer(log, bets, settle, checker)
	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// metrics/health
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, checks)
	log.Info("metrics/health", zap.String("addr", msrv.Addr))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("bet-service listening",
			zap.String("addr", apiSrv.Addr),
			zap.String("store", cfg.Store),
			zap.Bool("odds_check", checker != nil),
		)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = msrv.Shutdown(shutdownCtx)
	log.Info("bet-service stopped")
}
