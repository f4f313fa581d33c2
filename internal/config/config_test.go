package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "pkgman") {
		t.Errorf("Dir() = %q, want /tmp/xdg/pkgman", dir)
	}
}

func TestDir_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if dir != filepath.Join(home, ".config", "pkgman") {
		t.Errorf("Dir() = %q, want %q", dir, filepath.Join(home, ".config", "pkgman"))
	}
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Timeout", cfg.Timeout, 30 * time.Second},
		{"Verbose", cfg.Verbose, false},
		{"Color", cfg.Color, true},
		{"Format", cfg.Format, FormatTable},
		{"ReceiptsDir", cfg.ReceiptsDir, "/var/db/receipts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PKGMAN_TIMEOUT", "5s")
	t.Setenv("PKGMAN_FORMAT", "json")
	t.Setenv("PKGMAN_VERBOSE", "true")

	if err := Setup(""); err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	resetViper(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "pkgman")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := "timeout: 1m\nformat: yaml\ncolor: false\nreceipts_dir: /tmp/receipts\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Setup(""); err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Timeout != time.Minute {
		t.Errorf("Timeout = %v, want 1m", cfg.Timeout)
	}
	if cfg.Format != FormatYAML {
		t.Errorf("Format = %q, want yaml", cfg.Format)
	}
	if cfg.Color {
		t.Error("Color = true, want false")
	}
	if cfg.ReceiptsDir != "/tmp/receipts" {
		t.Errorf("ReceiptsDir = %q, want /tmp/receipts", cfg.ReceiptsDir)
	}
}

func TestSetup_MissingDefaultFileIsFine(t *testing.T) {
	resetViper(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := Setup(""); err != nil {
		t.Errorf("Setup() with no config file should succeed, got %v", err)
	}
}

func TestSetup_MissingExplicitFile(t *testing.T) {
	resetViper(t)

	err := Setup(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Setup() with missing explicit file should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Timeout: time.Second, Format: FormatTable, ReceiptsDir: "/var/db/receipts"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "invalid timeout"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "invalid timeout"},
		{"bad format", func(c *Config) { c.Format = "xml" }, "invalid format"},
		{"empty receipts dir", func(c *Config) { c.ReceiptsDir = "" }, "receipts_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
