package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	gateway "github.com/radieske/squares-wager-platform/internal/api-gateway"
	"github.com/radieske/squares-wager-platform/internal/shared/config"
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

	// targets: /api/bets/* -> bet-service, /api/display/* -> display-service
	h, err := gateway.Router(log, gateway.Options{
		BetServiceURL:     cfg.BetServiceURL,
		DisplayServiceURL: cfg.DisplayServiceURL,
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
	})
	if err != nil {
		log.Fatal("gateway config", zap.Error(err))
	}

	msrv := metrics.StartMetricsServer(cfg.MetricsPort, nil)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("api-gateway listening", zap.String("addr", srv.Addr), zap.String("metrics", msrv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("gateway failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	_ = msrv.Shutdown(shutdownCtx)
	log.Info("api-gateway stopped")
}
