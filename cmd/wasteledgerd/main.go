// Command wasteledgerd serves a waste ledger over gRPC.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/blockberries/wasteledger/ledger"
	"github.com/blockberries/wasteledger/store"
	"github.com/blockberries/wasteledger/store/memory"
	"github.com/blockberries/wasteledger/store/postgres"
	"github.com/blockberries/wasteledger/store/sqlite"
	"github.com/blockberries/wasteledger/types"

	wastegrpc "github.com/blockberries/wasteledger/grpc"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("wasteledgerd exited", "error", err)
		os.Exit(1)
	}
}

// slogSink logs every committed mutation as a structured record.
type slogSink struct {
	log *slog.Logger
}

func (s *slogSink) Emit(ev types.Event) {
	attrs := make([]any, 0, 2*len(ev.Attributes))
	for _, a := range ev.Attributes {
		attrs = append(attrs, a.Key, a.Value)
	}
	s.log.Info(ev.Kind, attrs...)
}

func run(args []string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	core := ledger.New(st, ledger.WithEventSink(&slogSink{log: log.With("component", "ledger")}))
	if err := core.Bootstrap(ctx, types.Identity(cfg.Admin)); err != nil {
		return err
	}
	log.Info("ledger bootstrapped", "store", cfg.Store, "admin", cfg.Admin)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := wastegrpc.NewMetrics(reg)

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	gs := grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryInterceptor()))
	wastegrpc.NewGRPCServer(core).Register(gs)

	errCh := make(chan error, 2)
	go func() {
		log.Info("serving gRPC", "addr", lis.Addr().String())
		errCh <- gs.Serve(lis)
	}()

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			log.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		return err
	}

	gs.GracefulStop()
	if metricsSrv != nil {
		metricsSrv.Shutdown(context.Background())
	}
	return nil
}

func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Store {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN)
	case "postgres":
		return postgres.Open(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}
