package main

import "testing"

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig([]string{"-admin", "ops", "-store", "sqlite", "-dsn", "/tmp/ledger.db"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Store != "sqlite" || cfg.DSN != "/tmp/ledger.db" || cfg.Admin != "ops" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("default addr = %q", cfg.Addr)
	}
}

func TestParseConfig_Rejections(t *testing.T) {
	cases := [][]string{
		{},                                       // missing admin
		{"-admin", "ops", "-store", "sqlite"},    // sqlite without dsn
		{"-admin", "ops", "-store", "postgres"},  // postgres without dsn
		{"-admin", "ops", "-store", "cassandra"}, // unknown backend
	}
	for _, args := range cases {
		if _, err := parseConfig(args); err == nil {
			t.Errorf("parseConfig(%v) should fail", args)
		}
	}
}

func TestParseConfig_EnvFallback(t *testing.T) {
	t.Setenv("WASTELEDGER_ADMIN", "env-admin")
	t.Setenv("WASTELEDGER_ADDR", ":7000")
	cfg, err := parseConfig(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Admin != "env-admin" || cfg.Addr != ":7000" {
		t.Errorf("env not applied: %+v", cfg)
	}
	// Flags beat environment.
	cfg, err = parseConfig([]string{"-addr", ":8000"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Addr != ":8000" {
		t.Errorf("flag should win over env: %+v", cfg)
	}
}
