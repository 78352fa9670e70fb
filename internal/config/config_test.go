package config

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{envServerURL, envPoll, envTTL, envHTTPTimeout, envMaxTransfer, envMaxDeposit, envLogLevel, envEmail} {
		t.Setenv(k, "")
	}
	t.Setenv(envPayeesPath, "/tmp/payees.json")

	cfg, err := Load(log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerURL != "http://localhost:5000" {
		t.Errorf("server=%q", cfg.ServerURL)
	}
	if cfg.PollInterval != 3*time.Second || cfg.NotifyTTL != 2*time.Second || cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("durations=%v %v %v", cfg.PollInterval, cfg.NotifyTTL, cfg.HTTPTimeout)
	}
	if cfg.MaxTransfer.String() != "100000" || cfg.MaxDeposit.String() != "100000" {
		t.Errorf("ceilings=%s %s", cfg.MaxTransfer, cfg.MaxDeposit)
	}
	if cfg.LogLevel != log.InfoLevel {
		t.Errorf("level=%v", cfg.LogLevel)
	}
	if cfg.PayeesPath != "/tmp/payees.json" {
		t.Errorf("payees=%q", cfg.PayeesPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(envServerURL, "bank.local:8080/")
	t.Setenv(envPoll, "500ms")
	t.Setenv(envMaxTransfer, "2500.50")
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envEmail, " ana@bank.io ")
	t.Setenv(envPayeesPath, "/tmp/payees.json")

	cfg, err := Load(log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerURL != "http://bank.local:8080" {
		t.Errorf("server=%q", cfg.ServerURL)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("poll=%v", cfg.PollInterval)
	}
	if cfg.MaxTransfer.String() != "2500.5" {
		t.Errorf("max transfer=%s", cfg.MaxTransfer)
	}
	if cfg.LogLevel != log.DebugLevel || cfg.Email != "ana@bank.io" {
		t.Errorf("level=%v email=%q", cfg.LogLevel, cfg.Email)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		envPoll:        "soon",
		envTTL:         "-1s",
		envMaxDeposit:  "lots",
		envMaxTransfer: "0",
		envLogLevel:    "chatty",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(envPayeesPath, "/tmp/payees.json")
			t.Setenv(key, val)
			if _, err := Load(log.New(io.Discard)); err == nil {
				t.Fatalf("%s=%q should fail", key, val)
			}
		})
	}
}
