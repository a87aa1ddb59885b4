package marketplace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Path != "bookbuddies.db" {
		t.Errorf("storage path = %q, want default", cfg.Storage.Path)
	}
	if cfg.Pricing.Currency != "$" {
		t.Errorf("currency = %q, want $", cfg.Pricing.Currency)
	}
	rate, err := cfg.TaxRate()
	if err != nil {
		t.Fatalf("taxRate: %v", err)
	}
	if !rate.Equal(dec(t, "0.10")) {
		t.Errorf("tax rate = %s, want 0.10", rate)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "is_debug: true\nstorage:\n  path: /tmp/books.db\npricing:\n  tax_rate: \"0.07\"\n  currency: \"€\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsDebug || cfg.Storage.Path != "/tmp/books.db" || cfg.Pricing.Currency != "€" {
		t.Errorf("cfg = %+v", cfg)
	}
	rate, err := cfg.TaxRate()
	if err != nil {
		t.Fatalf("taxRate: %v", err)
	}
	if !rate.Equal(dec(t, "0.07")) {
		t.Errorf("tax rate = %s, want 0.07", rate)
	}
}

func TestLoadConfigRejectsBadTaxRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("pricing:\n  tax_rate: \"lots\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("load with bad tax rate = nil error, want error")
	}
}
