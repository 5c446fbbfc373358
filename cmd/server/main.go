package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"asnode/internal/as/callback"
	"asnode/internal/as/handler"
	asmetrics "asnode/internal/as/metrics"
	"asnode/internal/as/ports"
	"asnode/internal/as/service"
	"asnode/internal/as/store/local"
	"asnode/internal/as/store/pending"
	"asnode/internal/crypto"
	"asnode/internal/ledger"
	"asnode/internal/platform/config"
	"asnode/internal/platform/httpserver"
	"asnode/internal/platform/kafka"
	"asnode/internal/platform/kafka/consumer"
	"asnode/internal/platform/kafka/producer"
	"asnode/internal/platform/logger"
	"asnode/internal/platform/metrics"
	"asnode/internal/platform/postgres"
	"asnode/internal/platform/redis"
	"asnode/internal/transport/mq"
)

// main wires the attribute-source node: stores, ledger watcher, message
// transport, pipeline and HTTP API. Business logic lives in internal/as.
func main() {
	cfg, warnings, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	for _, w := range warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("node stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("node stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var checks []handler.Option

	key, err := loadKey(cfg, log)
	if err != nil {
		return err
	}
	signer := crypto.NewSigner(key)
	publicKey, err := signer.PublicKey()
	if err != nil {
		return fmt.Errorf("encode public key: %w", err)
	}

	var localStore ports.LocalStore = local.NewInMemoryStore()
	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		pg := local.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		localStore = pg
		checks = append(checks, handler.WithHealthCheck("postgres", db.PingContext))
	} else {
		log.Warn("DATABASE_URL not set; local state is kept in memory")
	}

	var pendingStore pending.Store = pending.NewInMemoryStore(pending.WithRetention(cfg.ProcessedRetention))
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		pendingStore = pending.NewRedisStore(rdb.Client,
			pending.WithKeyPrefix("asnode:"+cfg.NodeID),
			pending.WithClaimRetention(cfg.ProcessedRetention),
		)
		checks = append(checks, handler.WithHealthCheck("redis", rdb.Health))
	} else {
		log.Warn("REDIS_URL not set; pending messages are kept in memory")
	}

	rpc := ledger.New(cfg.Ledger.URL, ledger.WithLogger(log))
	asLedger := ledger.NewASLedger(rpc)

	urls := callback.NewURLSet(localStore, cfg.DataDir, cfg.NodeID, log)
	urls.Load(ctx)

	clientOpts := []callback.Option{
		callback.WithBackoff(cfg.Callback.InitialInterval, cfg.Callback.MaxElapsed),
		callback.WithLogger(log),
	}
	if cfg.Callback.TokenSecret != "" {
		clientOpts = append(clientOpts, callback.WithTokenIssuer(
			callback.NewTokenIssuer(cfg.Callback.TokenSecret, cfg.NodeID, 5*time.Minute)))
	}
	callbacks := callback.NewClient(clientOpts...)

	prod := producer.New(10*time.Second, log)
	defer prod.Close()

	svc := service.New(service.Deps{
		NodeID:    cfg.NodeID,
		Ledger:    asLedger,
		Transport: mq.NewKafka(prod, cfg.MQ.TopicPrefix, log),
		Local:     localStore,
		Pending:   pendingStore,
		Callbacks: callbacks,
		Signer:    signer,
	},
		service.WithLogger(log),
		service.WithMetrics(asmetrics.New(reg)),
		service.WithURLProvider(urls),
		service.WithMaxInFlight(cfg.Callback.MaxInFlight),
	)

	watcher := ledger.NewWatcher(rpc, localStore,
		ledger.WithPollInterval(cfg.Ledger.PollInterval),
		ledger.WithWatcherLogger(log),
	)
	if height, ok, err := watcher.Restore(ctx); err != nil {
		return fmt.Errorf("restore ledger height: %w", err)
	} else if ok {
		svc.ObserveHeight(height)
	}

	inboundTopic := mq.InboundTopic(cfg.MQ.TopicPrefix)
	if err := kafka.EnsureTopic(ctx, cfg.MQ.Brokers, inboundTopic, 1, 1); err != nil {
		return err
	}
	router := consumer.NewRouter(log, nil)
	router.Register(inboundTopic, mq.NewInbound(publicKey, func(ctx context.Context, raw []byte) error {
		_, err := svc.HandleMessage(ctx, raw)
		return err
	}, log))
	cons, err := consumer.New(consumer.Config{
		Brokers: cfg.MQ.Brokers,
		Group:   cfg.MQ.ConsumerGroup,
		Topics:  router.Topics(),
	}, router, log)
	if err != nil {
		return err
	}
	defer cons.Close()

	r := chi.NewRouter()
	handler.New(svc, urls, log, append(checks,
		handler.WithAdminTokenHash(cfg.AdminTokenHash),
		handler.WithHTTPMetrics(metrics.NewHTTP(reg)),
		handler.WithGatherer(reg),
	)...).Register(r)
	srv := httpserver.New(cfg.Server.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(gctx) })
	g.Go(func() error { return watcher.Run(gctx, svc.HandleNewBlock) })
	g.Go(func() error { return cons.Run(gctx) })
	g.Go(func() error {
		log.Info("starting attribute-source node",
			"node_id", cfg.NodeID,
			"addr", cfg.Server.Addr,
			"ledger_url", cfg.Ledger.URL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	svc.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadKey reads the node signing key. Outside production a missing path
// yields an ephemeral key.
func loadKey(cfg config.Config, log *slog.Logger) (*rsa.PrivateKey, error) {
	if cfg.PrivateKeyPath != "" {
		key, err := crypto.LoadPrivateKey(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load private key: %w", err)
		}
		return key, nil
	}
	log.Warn("PRIVATE_KEY_PATH not set; using an ephemeral signing key")
	return rsa.GenerateKey(rand.Reader, 2048)
}
