package main

import (
	"testing"

	"github.com/pramath6095/dark-web-leak-ai/internal/config"
)

// TestNewServeCmd tests the serve command creation.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "serve" {
			t.Errorf("expected use 'serve', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has external-tor flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("external-tor")
		if flag == nil {
			t.Fatal("expected external-tor flag")
		}
		if flag.Shorthand != "e" {
			t.Errorf("expected shorthand 'e', got %q", flag.Shorthand)
		}
	})

	t.Run("has tor-timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("tor-timeout")
		if flag == nil {
			t.Fatal("expected tor-timeout flag")
		}
		if flag.Shorthand != "T" {
			t.Errorf("expected shorthand 'T', got %q", flag.Shorthand)
		}
	})

	t.Run("has poll-interval flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("poll-interval")
		if flag == nil {
			t.Fatal("expected poll-interval flag")
		}
		if flag.DefValue != config.DefaultPollInterval.String() {
			t.Errorf("expected default %q, got %q", config.DefaultPollInterval.String(), flag.DefValue)
		}
	})

	t.Run("has listen address flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"query-listen", "analysis-listen", "scraper-listen"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has split-deployment service URL flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"query-service-url", "analysis-service-url"} {
			flag := cmd.Flags().Lookup(name)
			if flag == nil {
				t.Fatalf("expected %s flag", name)
			}
			if flag.DefValue != "" {
				t.Errorf("expected %s to default to in-process wiring, got %q", name, flag.DefValue)
			}
		}
	})

	t.Run("has model endpoint flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"generation-url", "generation-model", "classifier-url", "embedding-url"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has profile flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("profile")
		if flag == nil {
			t.Fatal("expected profile flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})
}

// TestBuildServeConfig tests configuration building from flags.
func TestBuildServeConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewServeCmd()
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if cfg.UseExternalTor {
			t.Error("expected UseExternalTor to be false")
		}
		if cfg.PollInterval != config.DefaultPollInterval {
			t.Errorf("expected PollInterval %v, got %v", config.DefaultPollInterval, cfg.PollInterval)
		}
		if cfg.QueryListenAddr != config.DefaultQueryListenAddr {
			t.Errorf("expected QueryListenAddr %q, got %q", config.DefaultQueryListenAddr, cfg.QueryListenAddr)
		}
	})

	t.Run("builds config with external tor", func(t *testing.T) {
		cmd := NewServeCmd()
		_ = cmd.Flags().Set("external-tor", "127.0.0.1:9150")
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.UseExternalTor {
			t.Error("expected UseExternalTor to be true")
		}
		if cfg.TorProxyAddress != "127.0.0.1:9150" {
			t.Errorf("expected TorProxyAddress '127.0.0.1:9150', got %q", cfg.TorProxyAddress)
		}
	})

	t.Run("builds config with custom poll interval", func(t *testing.T) {
		cmd := NewServeCmd()
		_ = cmd.Flags().Set("poll-interval", "2m")
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.PollInterval.Minutes() != 2 {
			t.Errorf("expected PollInterval 2m, got %v", cfg.PollInterval)
		}
	})

	t.Run("builds config with custom worker count", func(t *testing.T) {
		cmd := NewServeCmd()
		_ = cmd.Flags().Set("max-workers", "7")
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxWorkers != 7 {
			t.Errorf("expected MaxWorkers 7, got %d", cfg.MaxWorkers)
		}
	})

	t.Run("service URLs default to in-process wiring", func(t *testing.T) {
		cmd := NewServeCmd()
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.RemoteQueryService || cfg.RemoteAnalysisService {
			t.Error("expected in-process wiring when no service URLs are given")
		}
	})

	t.Run("query-service-url switches to the remote query service", func(t *testing.T) {
		cmd := NewServeCmd()
		_ = cmd.Flags().Set("query-service-url", "http://queries.internal:8001")
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.RemoteQueryService {
			t.Error("expected RemoteQueryService to be true")
		}
		if cfg.QueryServiceURL != "http://queries.internal:8001" {
			t.Errorf("expected QueryServiceURL to follow the flag, got %q", cfg.QueryServiceURL)
		}
		if cfg.RemoteAnalysisService {
			t.Error("expected analysis wiring to stay in-process")
		}
	})

	t.Run("analysis-service-url switches to the remote analysis service", func(t *testing.T) {
		cmd := NewServeCmd()
		_ = cmd.Flags().Set("analysis-service-url", "http://analysis.internal:8000")
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.RemoteAnalysisService {
			t.Error("expected RemoteAnalysisService to be true")
		}
		if cfg.AnalysisServiceURL != "http://analysis.internal:8000" {
			t.Errorf("expected AnalysisServiceURL to follow the flag, got %q", cfg.AnalysisServiceURL)
		}
	})

	t.Run("builds config with profile path", func(t *testing.T) {
		cmd := NewServeCmd()
		_ = cmd.Flags().Set("profile", "acme.yaml")
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ProfileFile != "acme.yaml" {
			t.Errorf("expected ProfileFile 'acme.yaml', got %q", cfg.ProfileFile)
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewServeCmd()
		if getVerboseFlag(cmd) {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		serveCmd, _, err := root.Find([]string{"serve"})
		if err != nil {
			t.Fatalf("failed to find serve command: %v", err)
		}

		if !getVerboseFlag(serveCmd) {
			t.Error("expected true from parent verbose flag")
		}
	})
}
