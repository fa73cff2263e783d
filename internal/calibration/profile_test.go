package calibration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/agbru/rsagcd/internal/config"
	apperrors "github.com/agbru/rsagcd/internal/errors"
)

var testHardware = Hardware{NumCPU: 2, GOARCH: runtime.GOARCH}

func TestNewProfile(t *testing.T) {
	t.Parallel()
	p := NewProfile(testHardware)
	if p.NumCPU != 2 || p.GOARCH != runtime.GOARCH || p.GOOS != runtime.GOOS {
		t.Errorf("hardware fields = %d/%s/%s", p.NumCPU, p.GOARCH, p.GOOS)
	}
	if p.ProfileVersion != CurrentProfileVersion {
		t.Errorf("ProfileVersion = %d, want %d", p.ProfileVersion, CurrentProfileVersion)
	}
	if p.CalibratedAt.IsZero() {
		t.Error("CalibratedAt is zero")
	}
}

func TestProfileSaveLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.json")
	p := NewProfile(testHardware)
	p.Algorithm, p.GroupWidth, p.Workers = "binary", 16, 2
	if err := p.SaveProfile(path); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Errorf("profile mode = %v, want 0600", info.Mode().Perm())
	}
	got, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if got.Algorithm != "binary" || got.GroupWidth != 16 || got.Workers != 2 {
		t.Errorf("loaded %+v", got)
	}
	if !got.IsValidFor(testHardware) {
		t.Error("loaded profile should be valid for the hardware it was made on")
	}
}

func TestLoadProfileErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if _, err := LoadProfile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(bad); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("LoadProfile(bad) error = %v", err)
	}
}

func TestProfileIsValidFor(t *testing.T) {
	t.Parallel()
	base := func() *Profile {
		p := NewProfile(testHardware)
		p.GroupWidth, p.Workers = 32, 2
		return p
	}
	tests := []struct {
		name   string
		mutate func(*Profile)
		want   bool
	}{
		{"valid", func(*Profile) {}, true},
		{"other version", func(p *Profile) { p.ProfileVersion++ }, false},
		{"other core count", func(p *Profile) { p.NumCPU = 64 }, false},
		{"other arch", func(p *Profile) { p.GOARCH = "riscv64-other" }, false},
		{"zero width", func(p *Profile) { p.GroupWidth = 0 }, false},
		{"zero workers", func(p *Profile) { p.Workers = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := base()
			tt.mutate(p)
			if got := p.IsValidFor(testHardware); got != tt.want {
				t.Errorf("IsValidFor() = %v, want %v", got, tt.want)
			}
		})
	}
	var nilProfile *Profile
	if nilProfile.IsValidFor(testHardware) {
		t.Error("nil profile should be invalid")
	}
}

func TestProfileIsStale(t *testing.T) {
	t.Parallel()
	p := NewProfile(testHardware)
	p.CalibratedAt = time.Now().Add(-48 * time.Hour)
	if !p.IsStale(24 * time.Hour) {
		t.Error("48h-old profile should be stale after 24h")
	}
	if p.IsStale(72 * time.Hour) {
		t.Error("48h-old profile should not be stale after 72h")
	}
	var nilProfile *Profile
	if !nilProfile.IsStale(time.Hour) || nilProfile.String() != "<nil profile>" {
		t.Error("nil profile handling")
	}
}

func TestLoadCachedKeepsExplicitValues(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.json")
	p := NewProfile(testHardware)
	p.GroupWidth, p.Workers = 16, 2
	if err := p.SaveProfile(path); err != nil {
		t.Fatal(err)
	}

	cfg, ok := loadCached(config.AppConfig{}, path, testHardware)
	if !ok || cfg.GroupWidth != 16 || cfg.Workers != 2 {
		t.Errorf("loadCached(empty) = %d/%d ok=%v", cfg.GroupWidth, cfg.Workers, ok)
	}
	cfg, ok = loadCached(config.AppConfig{GroupWidth: 64}, path, testHardware)
	if !ok || cfg.GroupWidth != 64 || cfg.Workers != 2 {
		t.Errorf("explicit width overwritten: %d/%d ok=%v", cfg.GroupWidth, cfg.Workers, ok)
	}
	if _, ok := loadCached(config.AppConfig{}, path, Hardware{NumCPU: 99, GOARCH: runtime.GOARCH}); ok {
		t.Error("profile from other hardware should be ignored")
	}
}

func TestApplyAdaptive(t *testing.T) {
	t.Parallel()
	cfg := ApplyAdaptive(config.AppConfig{})
	if cfg.GroupWidth < 1 || cfg.Workers < 1 {
		t.Errorf("ApplyAdaptive() = %d/%d", cfg.GroupWidth, cfg.Workers)
	}
	cfg = ApplyAdaptive(config.AppConfig{GroupWidth: 3, Workers: 5})
	if cfg.GroupWidth != 3 || cfg.Workers != 5 {
		t.Errorf("explicit values overwritten: %d/%d", cfg.GroupWidth, cfg.Workers)
	}
}

func TestRunCalibration(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.json")
	var out bytes.Buffer
	code := RunCalibrationWithOptions(t.Context(), &out, Options{
		Algorithm:   "fast-binary",
		ProfilePath: path,
		SaveProfile: true,
		Units:       64,
		Hardware:    &testHardware,
	})
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}
	for _, want := range []string{"Calibration Summary", "(Optimal)", "Recommendation", "profile saved"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(CandidateGroupWidths(testHardware), p.GroupWidth) || p.Workers != 2 {
		t.Errorf("saved profile %v", p)
	}
}

func TestRunCalibrationUnknownAlgorithm(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	code := RunCalibrationWithOptions(t.Context(), &out, Options{Algorithm: "nope", Units: 8, Hardware: &testHardware})
	if code != apperrors.ExitErrorInput {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorInput)
	}
	if !strings.Contains(out.String(), "Calibration failed") {
		t.Errorf("output: %s", out.String())
	}
}

func TestRunCalibrationCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	var out bytes.Buffer
	code := RunCalibrationWithOptions(ctx, &out, Options{Units: 8, Hardware: &testHardware})
	if code != apperrors.ExitErrorCanceled {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
}
