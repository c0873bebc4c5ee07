package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olyamironova/mev-matcher/internal/adapter/cache"
	"github.com/olyamironova/mev-matcher/internal/adapter/in_memory"
	"github.com/olyamironova/mev-matcher/internal/adapter/kafka"
	"github.com/olyamironova/mev-matcher/internal/adapter/pebblestore"
	"github.com/olyamironova/mev-matcher/internal/adapter/pg"
	sinks "github.com/olyamironova/mev-matcher/internal/adapter/signal"
	grpcapi "github.com/olyamironova/mev-matcher/internal/api/grpc"
	httpapi "github.com/olyamironova/mev-matcher/internal/api/http"
	"github.com/olyamironova/mev-matcher/internal/config"
	"github.com/olyamironova/mev-matcher/internal/core"
	"github.com/olyamironova/mev-matcher/internal/logger"
	"github.com/olyamironova/mev-matcher/internal/metrics"
	"github.com/olyamironova/mev-matcher/internal/port"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("MATCHER_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("matcher stopped", zap.Error(err))
	}
	lg.Info("matcher stopped")
}

func openTradeStore(ctx context.Context, cfg config.StoreConfig) (port.TradeStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		repo, err := pg.NewPgRepo(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close(ctx)
			return nil, err
		}
		return repo, nil
	case config.DriverPebble:
		st, err := pebblestore.Open(cfg.PebblePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return in_memory.NewTradeStore(), nil
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	m := metrics.New(cfg.Instrument.Symbol)

	store, err := openTradeStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open trade store: %w", err)
	}
	defer store.Close(context.Background())
	lg.Info("trade store ready", zap.String("driver", cfg.Store.Driver))

	var bookCache port.Cache = in_memory.NewCache()
	if cfg.Cache.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
		defer func() { _ = rc.Close() }()
		if err := rc.Ping(ctx); err != nil {
			lg.Warn("redis unreachable, snapshots will be retried on every submission", zap.Error(err))
		}
		bookCache = rc
	}

	signalSink := sinks.Multi{sinks.NewLogSink(lg), sinks.NewMetricsSink(m)}
	if len(cfg.Kafka.Brokers) > 0 {
		pub := kafka.NewPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), cfg.Kafka.Buffer, lg, m)
		defer func() {
			if err := pub.Close(); err != nil {
				lg.Warn("close kafka publisher", zap.Error(err))
			}
		}()
		signalSink = append(signalSink, pub)
		lg.Info("publishing signals to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	eng := core.NewEngine(cfg.Instrument.Symbol,
		core.WithTradeStore(store),
		core.WithCache(bookCache),
		core.WithSignalSink(signalSink),
		core.WithLogger(lg),
		core.WithMetrics(m),
		core.WithSnapshotDepth(cfg.Book.SnapshotDepth),
		core.WithOrderRetention(cfg.Book.OrderRetention),
	)
	defer eng.Close()

	httpSrv := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: httpapi.NewHTTPServer(eng,
			httpapi.WithLogger(lg),
			httpapi.WithMetrics(m),
			httpapi.WithRateLimit(cfg.RateLimit.Interval),
		).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcSrv := grpcapi.NewServer(grpcapi.NewGRPCServer(eng, lg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	if cfg.Server.GRPCAddr != "" {
		g.Go(func() error {
			lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
			if err != nil {
				return fmt.Errorf("grpc listen: %w", err)
			}
			lg.Info("grpc listening", zap.String("addr", cfg.Server.GRPCAddr))
			return grpcSrv.Serve(lis)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")
		eng.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
