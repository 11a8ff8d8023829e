// Package config loads and stores the remote translation settings.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/bearchat"
	"github.com/ZaguanLabs/bearchat/provider"
	"github.com/ZaguanLabs/bearchat/secret"
	"github.com/ZaguanLabs/bearchat/store"
	"go.uber.org/zap"
)

// StorageKey is the record name the settings are persisted under.
const StorageKey = "bearchat-settings"

// Settings configures the remote translator.
type Settings struct {
	APIKey    string `json:"apiKey"`
	BaseURL   string `json:"baseUrl"`
	ModelName string `json:"modelName"`
}

// Defaults returns settings with the default endpoint and model and no key.
func Defaults() Settings {
	return Settings{
		BaseURL:   provider.DefaultBaseURL,
		ModelName: provider.DefaultModel,
	}
}

// Validate reports every invalid field as a *bearchat.ConfigError.
func (s Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.APIKey) == "" {
		errs = append(errs, &bearchat.ConfigError{Field: "apiKey", Message: "API key must not be empty"})
	}
	if err := provider.ValidateBaseURL(s.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(s.ModelName) == "" {
		errs = append(errs, &bearchat.ConfigError{Field: "modelName", Message: "model name must not be empty"})
	}
	return errors.Join(errs...)
}

// MaskedAPIKey returns the key with all but its last four characters hidden.
func (s Settings) MaskedAPIKey() string {
	if s.APIKey == "" {
		return ""
	}
	if len(s.APIKey) <= 4 {
		return strings.Repeat("*", len(s.APIKey))
	}
	return strings.Repeat("*", len(s.APIKey)-4) + s.APIKey[len(s.APIKey)-4:]
}

// OpenAIConfig converts the settings for provider.NewOpenAITranslator.
func (s Settings) OpenAIConfig() provider.OpenAIConfig {
	return provider.OpenAIConfig{
		APIKey:  s.APIKey,
		BaseURL: s.BaseURL,
		Model:   s.ModelName,
	}
}

// Provider persists Settings in a store, sealing the API key.
type Provider struct {
	store  store.Store
	sealer secret.Sealer
	key    string
	logger *zap.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithStorageKey overrides the record name (default: StorageKey).
func WithStorageKey(key string) Option {
	return func(p *Provider) {
		p.key = key
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider creates a settings provider.
func NewProvider(s store.Store, sealer secret.Sealer, opts ...Option) *Provider {
	p := &Provider{
		store:  s,
		sealer: sealer,
		key:    StorageKey,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load reads the stored settings. Missing fields are filled with defaults.
// A missing or unreadable record is a *bearchat.ConfigError.
func (p *Provider) Load(ctx context.Context) (Settings, error) {
	data, err := p.store.Get(ctx, p.key)
	if errors.Is(err, store.ErrNotFound) {
		return Settings{}, &bearchat.ConfigError{Message: "configure API settings first"}
	}
	if err != nil {
		return Settings{}, &bearchat.ConfigError{Message: "failed to load settings", Cause: err}
	}

	var stored Settings
	if err := json.Unmarshal(data, &stored); err != nil {
		p.logger.Warn("settings record is corrupt", zap.String("key", p.key), zap.Error(err))
		return Settings{}, &bearchat.ConfigError{Message: "failed to load settings", Cause: err}
	}

	settings := Defaults()
	if stored.BaseURL != "" {
		settings.BaseURL = stored.BaseURL
	}
	if stored.ModelName != "" {
		settings.ModelName = stored.ModelName
	}
	if stored.APIKey != "" {
		if p.sealer == nil {
			return Settings{}, &bearchat.ConfigError{Field: "apiKey", Message: "no passphrase configured to open the stored API key"}
		}
		key, err := p.sealer.Open(stored.APIKey)
		if err != nil {
			return Settings{}, &bearchat.ConfigError{Field: "apiKey", Message: "cannot open stored API key", Cause: err}
		}
		settings.APIKey = key
	}

	return settings, nil
}

// Save validates s, seals its API key and writes the record.
func (p *Provider) Save(ctx context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if p.sealer == nil {
		return &bearchat.ConfigError{Field: "apiKey", Message: "a passphrase is required to store the API key"}
	}

	sealed, err := p.sealer.Seal(s.APIKey)
	if err != nil {
		return fmt.Errorf("sealing API key: %w", err)
	}

	data, err := json.Marshal(Settings{
		APIKey:    sealed,
		BaseURL:   s.BaseURL,
		ModelName: s.ModelName,
	})
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := p.store.Set(ctx, p.key, data); err != nil {
		return &bearchat.StorageError{Op: "write", Key: p.key, Cause: err}
	}
	p.logger.Debug("settings saved", zap.String("model", s.ModelName), zap.String("baseUrl", s.BaseURL))
	return nil
}

// Clear removes the stored settings.
func (p *Provider) Clear(ctx context.Context) error {
	if err := p.store.Delete(ctx, p.key); err != nil {
		return &bearchat.StorageError{Op: "delete", Key: p.key, Cause: err}
	}
	return nil
}
