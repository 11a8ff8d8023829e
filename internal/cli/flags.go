package cli

import (
	"time"

	"github.com/ZaguanLabs/bearchat"
	"github.com/ZaguanLabs/bearchat/cache"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile string
	Verbose bool

	// Storage flags
	StorageBackend string
	StoragePath    string
	RedisURL       string
	Passphrase     string

	// Translation flags
	From     string
	To       string
	Debounce time.Duration
	RPM      int

	// Cache flags
	CacheMaxItems   int
	CacheExpiration time.Duration

	// Metrics flags
	MetricsAddr string

	// Settings flags
	APIKey    string
	BaseURL   string
	ModelName string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		StorageBackend:  "sqlite",
		From:            "zh",
		To:              "en",
		Debounce:        bearchat.DefaultDebounceWindow,
		CacheMaxItems:   cache.DefaultMaxItems,
		CacheExpiration: cache.DefaultExpiration,
	}
}
