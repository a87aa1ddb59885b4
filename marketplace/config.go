package marketplace

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

// Config is the app configuration, read from a YAML file with environment
// overrides. Every field has a default so the app runs without any config
// file at all.
type Config struct {
	IsDebug bool `yaml:"is_debug" env:"BOOKBUDDIES_DEBUG" env-default:"false"`

	Storage struct {
		Path string `yaml:"path" env:"BOOKBUDDIES_DB" env-default:"bookbuddies.db"`
	} `yaml:"storage"`

	Pricing struct {
		TaxRate  string `yaml:"tax_rate" env:"BOOKBUDDIES_TAX_RATE" env-default:"0.10"`
		Currency string `yaml:"currency" env:"BOOKBUDDIES_CURRENCY" env-default:"$"`
	} `yaml:"pricing"`
}

// TaxRate returns the configured tax rate as a decimal.
func (c Config) TaxRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Pricing.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("tax rate %q: %w", c.Pricing.TaxRate, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("tax rate %q: must not be negative", c.Pricing.TaxRate)
	}
	return rate, nil
}

// LoadConfig reads configuration from path. A missing file is fine: defaults
// and environment variables still apply.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if _, err := cfg.TaxRate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
