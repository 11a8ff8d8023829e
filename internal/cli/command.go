package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/bearchat"
)

// app carries state shared by the subcommands of one root command.
type app struct {
	flags  *Flags
	v      *viper.Viper
	logger *zap.Logger
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	a := &app{
		flags:  flags,
		v:      viper.New(),
		logger: zap.NewNop(),
	}

	rootCmd := &cobra.Command{
		Use:   "bearchat",
		Short: "Real-time speech translation pipeline",
		Long: `bearchat translates transcribed speech between Chinese, English,
Japanese, Korean, Thai and Vietnamese using an OpenAI-compatible API.

Translations are cached locally so repeated phrases never reach the network.

Examples:
  bearchat settings set --api-key sk-... --model gpt-4o-mini
  bearchat translate --from en --to ja "good morning"
  some-recognizer | bearchat listen --from zh --to en`,
		Version:       bearchat.FullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			InitConfig(a.v, flags.CfgFile, cmd.ErrOrStderr())
			logger, err := newLogger(a.v.GetBool("verbose"))
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	rootCmd.SetVersionTemplate(bearchat.BuildSummary() + "\n")

	setupFlags(rootCmd, flags)
	bindFlagsToViper(a.v, rootCmd)

	rootCmd.AddCommand(
		newTranslateCommand(a),
		newListenCommand(a),
		newSettingsCommand(a),
		newCacheCommand(a),
		newLanguagesCommand(),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	home, _ := os.UserHomeDir()
	defaultStoragePath := filepath.Join(home, ".local", "state", "bearchat", "bearchat.db")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.bearchat.yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable development logging")

	// Storage flags
	cmd.PersistentFlags().StringVar(&flags.StorageBackend, "storage-backend", flags.StorageBackend, "Storage backend: memory, sqlite or redis")
	cmd.PersistentFlags().StringVar(&flags.StoragePath, "storage-path", defaultStoragePath, "SQLite database path")
	cmd.PersistentFlags().StringVar(&flags.RedisURL, "redis-url", "redis://localhost:6379/0", "Redis URL for the redis backend")
	cmd.PersistentFlags().StringVar(&flags.Passphrase, "passphrase", "", "Passphrase sealing the stored API key")

	// Translation flags
	cmd.PersistentFlags().StringVar(&flags.From, "from", flags.From, "Source language code")
	cmd.PersistentFlags().StringVar(&flags.To, "to", flags.To, "Target language code")
	cmd.PersistentFlags().IntVar(&flags.RPM, "rpm", 0, "Maximum translation requests per minute (0 disables limiting)")

	// Cache flags
	cmd.PersistentFlags().IntVar(&flags.CacheMaxItems, "cache-max-items", flags.CacheMaxItems, "Maximum number of cached translations")
	cmd.PersistentFlags().DurationVar(&flags.CacheExpiration, "cache-expiration", flags.CacheExpiration, "Lifetime of a cached translation")

	// Metrics flags
	cmd.PersistentFlags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}

func bindFlagsToViper(v *viper.Viper, cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	v.BindPFlag("verbose", flags.Lookup("verbose"))
	v.BindPFlag("storage.backend", flags.Lookup("storage-backend"))
	v.BindPFlag("storage.path", flags.Lookup("storage-path"))
	v.BindPFlag("storage.redis_url", flags.Lookup("redis-url"))
	v.BindPFlag("secret.passphrase", flags.Lookup("passphrase"))
	v.BindPFlag("translate.from", flags.Lookup("from"))
	v.BindPFlag("translate.to", flags.Lookup("to"))
	v.BindPFlag("translate.rpm", flags.Lookup("rpm"))
	v.BindPFlag("cache.max_items", flags.Lookup("cache-max-items"))
	v.BindPFlag("cache.expiration", flags.Lookup("cache-expiration"))
	v.BindPFlag("metrics.addr", flags.Lookup("metrics-addr"))
}

// InitConfig initializes viper configuration
func InitConfig(v *viper.Viper, cfgFile string, stderr io.Writer) {
	if cfgFile != "" {
		// Use config file from the flag
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".bearchat" (without extension)
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".bearchat")
	}

	// Environment variables: BEARCHAT_STORAGE_BACKEND, BEARCHAT_SECRET_PASSPHRASE, ...
	v.SetEnvPrefix("BEARCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(stderr, "Using config file:", v.ConfigFileUsed())
	}
}

// GetOpenAIKey returns the API key from the environment, if set. It takes
// precedence over the stored settings.
func GetOpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// languagePair resolves the configured languages. A target equal to the
// source is replaced so the pair is always distinct.
func (a *app) languagePair() (from, to bearchat.Language, err error) {
	from, err = bearchat.ParseLanguage(a.v.GetString("translate.from"))
	if err != nil {
		return 0, 0, fmt.Errorf("--from: %w", err)
	}
	to, err = bearchat.ParseLanguage(a.v.GetString("translate.to"))
	if err != nil {
		return 0, 0, fmt.Errorf("--to: %w", err)
	}
	if distinct := bearchat.DistinctTarget(from, to); distinct != to {
		a.logger.Warn("target language equals source, substituting",
			zap.Stringer("source", from),
			zap.Stringer("target", distinct),
		)
		to = distinct
	}
	return from, to, nil
}
