// Package config loads server settings. Values are layered: built-in
// defaults, then an optional YAML file, then IZPOSOJA_* environment
// variables. Command-line flags are applied last by the caller.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/izposoja/internal/errs"
	"github.com/erazemk/izposoja/internal/pricing"
	"github.com/erazemk/izposoja/internal/rental"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "IZPOSOJA_"

// Config is the complete server configuration.
type Config struct {
	DBPath    string `yaml:"db"`
	Addr      string `yaml:"addr"`
	LogPath   string `yaml:"log"`
	AdminUser string `yaml:"admin_user"`
	AuditDB   bool   `yaml:"audit_db"` // persist audit events, not just log them

	Rental   Rental            `yaml:"rental"`
	Shipping map[string]string `yaml:"shipping"` // method name to flat cost
}

// Rental holds the rental rules as written in the file.
type Rental struct {
	DailyLateFee       string `yaml:"daily_late_fee"`
	MinDays            int    `yaml:"min_days"`
	MaxDays            int    `yaml:"max_days"`
	MaxQuantity        int    `yaml:"max_quantity"`
	MaxOpenPerCustomer int    `yaml:"max_open_per_customer"`
}

// Default returns the built-in configuration.
func Default() Config {
	p := rental.DefaultPolicy()
	shipping := make(map[string]string)
	for name, cost := range pricing.DefaultTariff() {
		shipping[name] = cost.String()
	}
	return Config{
		DBPath:    "izposoja.sqlite3",
		Addr:      ":8080",
		AdminUser: "Admin",
		AuditDB:   true,
		Rental: Rental{
			DailyLateFee:       p.DailyLateFee.String(),
			MinDays:            p.MinDays,
			MaxDays:            p.MaxDays,
			MaxQuantity:        p.MaxQuantity,
			MaxOpenPerCustomer: p.MaxOpenPerCustomer,
		},
		Shipping: shipping,
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	c.DBPath = LookupEnvString(EnvPrefix+"DB", c.DBPath)
	c.Addr = LookupEnvString(EnvPrefix+"ADDR", c.Addr)
	c.LogPath = LookupEnvString(EnvPrefix+"LOG", c.LogPath)
	c.AdminUser = LookupEnvString(EnvPrefix+"ADMIN_USER", c.AdminUser)
	c.AuditDB = LookupEnvBool(EnvPrefix+"AUDIT_DB", c.AuditDB)

	c.Rental.DailyLateFee = LookupEnvString(EnvPrefix+"DAILY_LATE_FEE", c.Rental.DailyLateFee)
	c.Rental.MinDays = LookupEnvInt(EnvPrefix+"MIN_DAYS", c.Rental.MinDays)
	c.Rental.MaxDays = LookupEnvInt(EnvPrefix+"MAX_DAYS", c.Rental.MaxDays)
	c.Rental.MaxQuantity = LookupEnvInt(EnvPrefix+"MAX_QUANTITY", c.Rental.MaxQuantity)
	c.Rental.MaxOpenPerCustomer = LookupEnvInt(EnvPrefix+"MAX_OPEN_RENTALS", c.Rental.MaxOpenPerCustomer)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errs.Validation("database path is required")
	}
	if c.Addr == "" {
		return errs.Validation("listen address is required")
	}
	if c.AdminUser == "" {
		return errs.Validation("admin username is required")
	}
	p, err := c.Policy()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	_, err = c.Tariff()
	return err
}

// Policy returns the rental rules.
func (c Config) Policy() (rental.Policy, error) {
	fee, err := decimal.NewFromString(c.Rental.DailyLateFee)
	if err != nil {
		return rental.Policy{}, errs.Validation("invalid daily late fee %q", c.Rental.DailyLateFee)
	}
	return rental.Policy{
		DailyLateFee:       fee,
		MinDays:            c.Rental.MinDays,
		MaxDays:            c.Rental.MaxDays,
		MaxQuantity:        c.Rental.MaxQuantity,
		MaxOpenPerCustomer: c.Rental.MaxOpenPerCustomer,
	}, nil
}

// Tariff returns the shipping price list.
func (c Config) Tariff() (pricing.Tariff, error) {
	t := make(pricing.Tariff, len(c.Shipping))
	for name, raw := range c.Shipping {
		cost, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errs.Validation("invalid cost %q for shipping method %q", raw, name)
		}
		if cost.IsNegative() {
			return nil, errs.Validation("shipping method %q has a negative cost", name)
		}
		t[name] = cost
	}
	return t, nil
}
