package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/rsagcd/internal/errors"
)

var testAlgos = []string{"binary", "classic", "fast-binary"}

func TestParseConfig(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("rsagcd", []string{"keys.txt"}, io.Discard, testAlgos)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Algo != DefaultAlgo {
			t.Errorf("Algo = %q, want %q", cfg.Algo, DefaultAlgo)
		}
		if cfg.Scheme != DefaultScheme {
			t.Errorf("Scheme = %q, want %q", cfg.Scheme, DefaultScheme)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
		}
		if len(cfg.HexFiles) != 1 || cfg.HexFiles[0] != "keys.txt" {
			t.Errorf("HexFiles = %v, want [keys.txt]", cfg.HexFiles)
		}
		if cfg.Workers != 0 || cfg.GroupWidth != 0 {
			t.Errorf("tuning defaults = %d/%d, want 0/0", cfg.Workers, cfg.GroupWidth)
		}
	})

	t.Run("ValidFlags", func(t *testing.T) {
		t.Parallel()
		args := []string{
			"-keys", "certs",
			"-hex", "a.txt", "-hex", "b.txt",
			"-limit", "500",
			"-algo", "BINARY",
			"-pairs", "1000",
			"-workers", "3",
			"-group-width", "64",
			"-host", "-verify", "-strict", "-json", "-q", "-d",
			"-timeout", "10s",
			"-log-level", "debug",
			"c.txt",
		}
		cfg, err := ParseConfig("rsagcd", args, io.Discard, testAlgos)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.KeysDir != "certs" || cfg.Limit != 500 || cfg.Pairs != 1000 {
			t.Errorf("got keys=%q limit=%d pairs=%d", cfg.KeysDir, cfg.Limit, cfg.Pairs)
		}
		if got := strings.Join(cfg.HexFiles, ","); got != "a.txt,b.txt,c.txt" {
			t.Errorf("HexFiles = %s", got)
		}
		if cfg.Algo != "binary" {
			t.Errorf("Algo = %q, want lower-cased binary", cfg.Algo)
		}
		if cfg.Workers != 3 || cfg.GroupWidth != 64 {
			t.Errorf("Workers/GroupWidth = %d/%d", cfg.Workers, cfg.GroupWidth)
		}
		if !cfg.Host || !cfg.Verify || !cfg.Strict || !cfg.JSONOutput || !cfg.Quiet || !cfg.Details {
			t.Errorf("boolean flags not all set: %+v", cfg)
		}
		if cfg.Timeout != 10*time.Second || cfg.LogLevel != "debug" {
			t.Errorf("Timeout/LogLevel = %v/%s", cfg.Timeout, cfg.LogLevel)
		}
		if len(cfg.BatchOptions()) != 2 {
			t.Error("BatchOptions should carry workers and group width")
		}
	})

	t.Run("DirectScheme", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("rsagcd", []string{"-scheme", "direct", "-against", "b.txt", "a.txt"}, io.Discard, testAlgos)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Scheme != "direct" || cfg.AgainstFile != "b.txt" {
			t.Errorf("got scheme=%q against=%q", cfg.Scheme, cfg.AgainstFile)
		}
	})

	t.Run("ServerNeedsNoKeys", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("rsagcd", []string{"-server", "-port", "9090"}, io.Discard, testAlgos)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.ServerMode || cfg.Port != "9090" {
			t.Errorf("ServerMode/Port = %v/%s", cfg.ServerMode, cfg.Port)
		}
	})

	t.Run("Help", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		_, err := ParseConfig("rsagcd", []string{"-h"}, &buf, testAlgos)
		if !errors.Is(err, flag.ErrHelp) {
			t.Fatalf("err = %v, want flag.ErrHelp", err)
		}
		for _, want := range []string{"Usage:", "-group-width", "RSAGCD_"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("usage output lacks %q", want)
			}
		}
	})

	t.Run("UnknownFlag", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseConfig("rsagcd", []string{"-n", "10"}, io.Discard, testAlgos); err == nil {
			t.Error("expected an error for an unknown flag")
		}
	})
}

func TestParseConfigEnvOverrides(t *testing.T) {
	env := map[string]string{
		"RSAGCD_HEX":         "one.txt" + string(os.PathListSeparator) + "two.txt",
		"RSAGCD_ALGO":        "classic",
		"RSAGCD_WORKERS":     "5",
		"RSAGCD_GROUP_WIDTH": "16",
		"RSAGCD_TIMEOUT":     "2m",
		"RSAGCD_VERIFY":      "yes",
		"RSAGCD_QUIET":       "1",
		"RSAGCD_LIMIT":       "not-a-number",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := ParseConfig("rsagcd", []string{"-workers", "7"}, io.Discard, testAlgos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(cfg.HexFiles, ","); got != "one.txt,two.txt" {
		t.Errorf("HexFiles = %s", got)
	}
	if cfg.Algo != "classic" || cfg.GroupWidth != 16 || cfg.Timeout != 2*time.Minute {
		t.Errorf("env not applied: algo=%s width=%d timeout=%v", cfg.Algo, cfg.GroupWidth, cfg.Timeout)
	}
	if cfg.Workers != 7 {
		t.Errorf("flag should win over env: Workers = %d", cfg.Workers)
	}
	if !cfg.Verify || !cfg.Quiet {
		t.Error("boolean env overrides not applied")
	}
	if cfg.Limit != 0 {
		t.Errorf("invalid env value should be ignored, Limit = %d", cfg.Limit)
	}

	// Positional files replace the environment list.
	cfg, err = ParseConfig("rsagcd", []string{"three.txt"}, io.Discard, testAlgos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.HexFiles) != 1 || cfg.HexFiles[0] != "three.txt" {
		t.Errorf("HexFiles = %v", cfg.HexFiles)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	base := AppConfig{
		HexFiles: []string{"k.txt"},
		Algo:     "binary",
		Scheme:   "selection",
		Timeout:  time.Minute,
		LogLevel: "info",
	}
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"all algorithms", func(c *AppConfig) { c.Algo = "all" }, ""},
		{"zero timeout", func(c *AppConfig) { c.Timeout = 0 }, "timeout"},
		{"negative limit", func(c *AppConfig) { c.Limit = -1 }, "key limit"},
		{"negative pairs", func(c *AppConfig) { c.Pairs = -2 }, "pair count"},
		{"negative workers", func(c *AppConfig) { c.Workers = -1 }, "worker count"},
		{"negative width", func(c *AppConfig) { c.GroupWidth = -8 }, "group width"},
		{"unknown algorithm", func(c *AppConfig) { c.Algo = "lehmer" }, "unrecognized algorithm"},
		{"unknown scheme", func(c *AppConfig) { c.Scheme = "matrix" }, "unknown scheme"},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }, "log level"},
		{"no input", func(c *AppConfig) { c.HexFiles = nil }, "no keys"},
		{"no input in server mode", func(c *AppConfig) { c.HexFiles = nil; c.ServerMode = true }, ""},
		{"direct without against", func(c *AppConfig) { c.Scheme = "direct" }, "-against"},
		{"direct with pairs", func(c *AppConfig) { c.Scheme = "direct"; c.AgainstFile = "b"; c.Pairs = 3 }, "-pairs"},
		{"selection with against", func(c *AppConfig) { c.AgainstFile = "b" }, "direct scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate(testAlgos)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
			}
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected a ConfigError, got %T", err)
			}
		})
	}
}

func TestParseConfigInvalidIsConfigError(t *testing.T) {
	t.Parallel()
	_, err := ParseConfig("rsagcd", []string{"-timeout", "0s", "k.txt"}, io.Discard, testAlgos)
	if apperrors.ExitCode(err) != apperrors.ExitErrorConfig {
		t.Errorf("ExitCode(%v) = %d, want %d", err, apperrors.ExitCode(err), apperrors.ExitErrorConfig)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("RSAGCD_TEST_BOOL", "No")
	t.Setenv("RSAGCD_TEST_DURATION", "90s")
	t.Setenv("RSAGCD_TEST_INT", "12")

	if getEnvBool("TEST_BOOL", true) {
		t.Error("getEnvBool(No) = true")
	}
	if getEnvBool("TEST_MISSING", true) != true {
		t.Error("missing bool should keep default")
	}
	if d := getEnvDuration("TEST_DURATION", 0); d != 90*time.Second {
		t.Errorf("getEnvDuration = %v", d)
	}
	if n := getEnvInt("TEST_INT", 0); n != 12 {
		t.Errorf("getEnvInt = %d", n)
	}
	if s := getEnvString("TEST_MISSING", "dflt"); s != "dflt" {
		t.Errorf("getEnvString = %q", s)
	}
	if l := getEnvList("TEST_MISSING", []string{"x"}); len(l) != 1 {
		t.Errorf("getEnvList = %v", l)
	}
}
