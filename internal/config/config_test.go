package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dripcalc/internal/dosing"
	"dripcalc/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = logger.New(io.Discard, false)
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "dripcalc.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Protocol.Policy != dosing.PolicyYale || cfg.Protocol.TargetLow != 100 || cfg.Protocol.TargetHigh != 140 {
		t.Errorf("unexpected protocol defaults: %+v", cfg.Protocol)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
http:
  addr: ":9090"
  read_timeout: 5s
log:
  level: debug
protocol:
  policy: simple
  target_low: 110
  target_high: 180
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" || cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.HTTP.WriteTimeout != 10*time.Second {
		t.Errorf("unset field lost its default: %v", cfg.HTTP.WriteTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}

	reg, err := cfg.Protocol.Registry()
	if err != nil {
		t.Fatal(err)
	}
	if reg.Default() != dosing.PolicySimple {
		t.Errorf("default policy = %q", reg.Default())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "protocol:\n  target_high: 180\n")
	t.Setenv("DRIP_TARGET_HIGH", "160")
	t.Setenv("DRIP_POLICY", "yale-hourly")
	t.Setenv("DRIP_HTTP_ADDR", "127.0.0.1:7000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Protocol.TargetHigh != 160 {
		t.Errorf("target high = %v, want env value 160", cfg.Protocol.TargetHigh)
	}
	if cfg.Protocol.Policy != dosing.PolicyHourly {
		t.Errorf("policy = %q", cfg.Protocol.Policy)
	}
	if cfg.HTTP.Addr != "127.0.0.1:7000" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"inverted targets", "protocol:\n  target_low: 150\n  target_high: 120\n", "target range"},
		{"unknown policy", "protocol:\n  policy: sliding-scale\n", "unknown dosing policy"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"empty addr", "http:\n  addr: \"\"\n", "http.addr"},
		{"bad yaml", "protocol: [", "parse yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatchReloads(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "protocol:\n  target_high: 140\n")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan *Config, 64)
	go Watch(ctx, path, func(cfg *Config) {
		select {
		case changes <- cfg:
		default:
		}
	})

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case cfg := <-changes:
			// a reload can land between truncate and write and see defaults
			if cfg.Protocol.TargetHigh == 170 {
				return
			}
		case <-ticker.C:
			// keep writing until the watcher is registered and sees a change
			if err := os.WriteFile(path, []byte("protocol:\n  target_high: 170\n"), 0o600); err != nil {
				t.Fatal(err)
			}
		case <-ctx.Done():
			t.Fatal("no reload observed")
		}
	}
}

// replaceConfig saves body the way editors do: write a sibling file, then
// rename it over path.
func replaceConfig(t *testing.T, path, body string) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func TestWatchReloadsAfterAtomicSaves(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "protocol:\n  policy: yale\n")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan *Config, 64)
	go Watch(ctx, path, func(cfg *Config) {
		select {
		case changes <- cfg:
		default:
		}
	})

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	// each save replaces the inode the previous save created
	for _, policy := range []string{dosing.PolicySimple, dosing.PolicyHourly, dosing.PolicyYale} {
		body := "protocol:\n  policy: " + policy + "\n"
		replaceConfig(t, path, body)

	wait:
		for {
			select {
			case cfg := <-changes:
				if cfg.Protocol.Policy == policy {
					break wait
				}
			case <-ticker.C:
				replaceConfig(t, path, body)
			case <-ctx.Done():
				t.Fatalf("no reload observed for policy %s", policy)
			}
		}
	}
}

func TestWatchFollowsSymlinkSwap(t *testing.T) {
	dir := t.TempDir()
	for _, v := range []string{"v1", "v2"} {
		if err := os.Mkdir(filepath.Join(dir, v), 0o700); err != nil {
			t.Fatal(err)
		}
	}
	writeConfig(t, filepath.Join(dir, "v1"), "protocol:\n  target_high: 140\n")
	writeConfig(t, filepath.Join(dir, "v2"), "protocol:\n  target_high: 180\n")

	data := filepath.Join(dir, "..data")
	if err := os.Symlink("v1", data); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "dripcalc.yaml")
	if err := os.Symlink(filepath.Join("..data", "dripcalc.yaml"), path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan *Config, 64)
	go Watch(ctx, path, func(cfg *Config) {
		select {
		case changes <- cfg:
		default:
		}
	})

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	// swap ..data between versions until the watcher picks up v2
	next := "v2"
	for {
		select {
		case cfg := <-changes:
			if cfg.Protocol.TargetHigh == 180 {
				return
			}
		case <-ticker.C:
			tmp := filepath.Join(dir, "..data_tmp")
			if err := os.Symlink(next, tmp); err != nil {
				t.Fatal(err)
			}
			if err := os.Rename(tmp, data); err != nil {
				t.Fatal(err)
			}
			if next == "v2" {
				next = "v1"
			} else {
				next = "v2"
			}
		case <-ctx.Done():
			t.Fatal("no reload observed after symlink swap")
		}
	}
}
