package main

import (
	"flag"
	"fmt"
	"os"
)

// Config holds the daemon configuration. Flags take defaults from
// the environment, so either mechanism works:
//
//	wasteledgerd -addr :9090 -store sqlite -dsn /var/lib/wasteledger.db
//	WASTELEDGER_STORE=postgres WASTELEDGER_DSN=postgres://... wasteledgerd
type Config struct {
	Addr        string // gRPC listen address
	MetricsAddr string // Prometheus /metrics listen address, empty disables
	Store       string // memory | sqlite | postgres
	DSN         string // sqlite path or postgres connection string
	Admin       string // administrator identity
	LogLevel    string // debug | info | warn | error
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func parseConfig(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("wasteledgerd", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", envOr("WASTELEDGER_ADDR", ":9090"), "gRPC listen address")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", envOr("WASTELEDGER_METRICS_ADDR", ":9091"), "metrics listen address (empty to disable)")
	fs.StringVar(&cfg.Store, "store", envOr("WASTELEDGER_STORE", "memory"), "store backend: memory, sqlite or postgres")
	fs.StringVar(&cfg.DSN, "dsn", envOr("WASTELEDGER_DSN", ""), "sqlite path or postgres DSN")
	fs.StringVar(&cfg.Admin, "admin", envOr("WASTELEDGER_ADMIN", ""), "administrator identity")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr("WASTELEDGER_LOG_LEVEL", "info"), "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Admin == "" {
		return Config{}, fmt.Errorf("administrator identity is required (-admin or WASTELEDGER_ADMIN)")
	}
	switch cfg.Store {
	case "memory":
	case "sqlite", "postgres":
		if cfg.DSN == "" {
			return Config{}, fmt.Errorf("%s store requires -dsn or WASTELEDGER_DSN", cfg.Store)
		}
	default:
		return Config{}, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
	return cfg, nil
}
