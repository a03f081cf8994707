// Package config loads resolver configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/sr-dns/internal/dns/domain"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Provider is the default DNS provider queried when the caller does not
	// pick one explicitly.
	Provider string `koanf:"provider" validate:"required,dns_provider"`

	// Protocol is the default encrypted transport.
	Protocol string `koanf:"protocol" validate:"required,dns_protocol"`

	// RecordType is the default query type.
	RecordType string `koanf:"record_type" validate:"required,dns_rrtype"`

	// TimeoutSeconds bounds each individual transport query.
	TimeoutSeconds int `koanf:"timeout_seconds" validate:"required,gte=1,lte=300"`

	// CacheSize is the maximum number of decoded answers kept in the LRU
	// cache. Zero disables caching.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`
}

// DefaultAppConfig defines the default settings for the resolver CLI.
var DefaultAppConfig = AppConfig{
	Env:            "prod",
	LogLevel:       "info",
	Provider:       string(domain.ProviderCloudflare),
	Protocol:       string(domain.ProtocolDoH),
	RecordType:     "A",
	TimeoutSeconds: 10,
	CacheSize:      256,
}

// validProvider reports whether the field names a built-in provider.
func validProvider(fl validator.FieldLevel) bool {
	_, err := domain.ParseProvider(fl.Field().String())
	return err == nil
}

// validProtocol reports whether the field names a supported transport.
func validProtocol(fl validator.FieldLevel) bool {
	_, err := domain.ParseProtocol(fl.Field().String())
	return err == nil
}

// validRRType reports whether the field names a supported record type.
func validRRType(fl validator.FieldLevel) bool {
	_, err := domain.ParseRRType(fl.Field().String())
	return err == nil
}

// envLoader loads environment variables with the prefix "SRDNS_",
// transforming keys to lowercase with the prefix removed.
// It can be swapped in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "SRDNS_",
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, "SRDNS_")), strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DefaultAppConfig into the provided Koanf instance
// using the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DefaultAppConfig, "koanf"), nil)
}

// registerValidations registers the domain-specific validators used by the
// AppConfig struct tags.
var registerValidations = func(v *validator.Validate) error {
	if err := v.RegisterValidation("dns_provider", validProvider); err != nil {
		return err
	}
	if err := v.RegisterValidation("dns_protocol", validProtocol); err != nil {
		return err
	}
	return v.RegisterValidation("dns_rrtype", validRRType)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	err = registerValidations(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
