package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/bearchat"
	"github.com/ZaguanLabs/bearchat/cache"
	"github.com/ZaguanLabs/bearchat/config"
)

func newTranslateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate text once (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = strings.TrimSpace(string(data))
			}

			ctx := cmd.Context()
			rt, err := a.openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			o, err := a.newOrchestrator(ctx, rt)
			if err != nil {
				return err
			}

			res := o.Translate(ctx, text)
			if res.Err != nil {
				return res.Err
			}
			a.logger.Debug("translated", zap.Bool("cached", res.Cached))
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
}

func newListenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Translate a live transcript read line by line from stdin",
		Long: `listen treats every line on stdin as the latest state of the transcript.
Lines arriving within the debounce window are coalesced, and only the newest
translation is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := a.openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			stopMetrics := a.serveMetrics(rt)
			defer stopMetrics()

			var outMu sync.Mutex
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

			o, err := a.newOrchestrator(ctx, rt,
				bearchat.WithResultHandler(func(res bearchat.Result) {
					if res.Text == "" {
						return
					}
					outMu.Lock()
					defer outMu.Unlock()
					fmt.Fprintln(stdout, res.Text)
				}),
				bearchat.WithErrorHandler(func(res bearchat.Result) {
					outMu.Lock()
					defer outMu.Unlock()
					fmt.Fprintf(stderr, "error: %v\n", res.Err)
				}),
			)
			if err != nil {
				return err
			}

			session := bearchat.NewSession(o, bearchat.WithDebounceWindow(a.v.GetDuration("translate.debounce")))
			defer session.Close()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if err := session.Update(scanner.Text()); err != nil {
					return err
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}

			session.Drain()
			return nil
		},
	}

	cmd.Flags().DurationVar(&a.flags.Debounce, "debounce", a.flags.Debounce, "Quiet period before a transcript update is translated")
	a.v.BindPFlag("translate.debounce", cmd.Flags().Lookup("debounce"))
	return cmd
}

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage the remote translation settings",
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Validate and store API settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := a.openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			settings, err := rt.settings.Load(ctx)
			if err != nil {
				settings = config.Defaults()
			}
			if cmd.Flags().Changed("api-key") {
				settings.APIKey = a.flags.APIKey
			}
			if cmd.Flags().Changed("base-url") {
				settings.BaseURL = a.flags.BaseURL
			}
			if cmd.Flags().Changed("model") {
				settings.ModelName = a.flags.ModelName
			}

			if err := rt.settings.Save(ctx, settings); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
			return nil
		},
	}
	setCmd.Flags().StringVar(&a.flags.APIKey, "api-key", "", "API key")
	setCmd.Flags().StringVar(&a.flags.BaseURL, "base-url", "", "API base URL (default https://api.openai.com/v1)")
	setCmd.Flags().StringVar(&a.flags.ModelName, "model", "", "Chat model name (default gpt-3.5-turbo)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored settings with the API key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := a.openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			settings, err := a.loadSettings(ctx, rt)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "API key:\t%s\n", settings.MaskedAPIKey())
			fmt.Fprintf(w, "Base URL:\t%s\n", settings.BaseURL)
			fmt.Fprintf(w, "Model:\t%s\n", settings.ModelName)
			return w.Flush()
		},
	}

	cmd.AddCommand(setCmd, showCmd)
	return cmd
}

func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the translation cache",
	}

	withCache := func(run func(cmd *cobra.Command, args []string, c *cache.Cache) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			rt, err := a.openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()
			return run(cmd, args, rt.cache)
		}
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached translations",
		Args:  cobra.NoArgs,
		RunE: withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			c.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		}),
	}

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export cached translations to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			metadata := map[string]string{"version": bearchat.Version}
			if err := cache.NewExporter(c).ExportToFile(cmd.Context(), args[0], metadata); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(c.Entries(cmd.Context())), args[0])
			return nil
		}),
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import cached translations from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			result, err := cache.NewImporter(c).ImportFromFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d skipped)\n", result.Imported, result.Skipped)
			return nil
		}),
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Entries:\t%d\n", len(c.Entries(cmd.Context())))
			fmt.Fprintf(w, "Max items:\t%d\n", c.MaxItems())
			fmt.Fprintf(w, "Expiration:\t%s\n", a.v.GetDuration("cache.expiration"))
			return w.Flush()
		}),
	}

	var concurrency int
	warmCmd := &cobra.Command{
		Use:   "warm <file>",
		Short: "Pre-translate the phrases in a file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			phrases, err := readLines(args[0])
			if err != nil {
				return err
			}

			rt, err := a.openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			translator, err := a.newTranslator(ctx, rt)
			if err != nil {
				return err
			}
			from, to, err := a.languagePair()
			if err != nil {
				return err
			}

			result, err := bearchat.Warm(ctx, translator, rt.cache, phrases, bearchat.WarmConfig{
				From:        from,
				To:          to,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}

			for _, failure := range result.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed: %q: %v\n", failure.Text, failure.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Translated %d, already cached %d, skipped %d, failed %d\n",
				result.Translated, result.Cached, result.Skipped, len(result.Failed))
			return nil
		},
	}
	warmCmd.Flags().IntVar(&concurrency, "concurrency", bearchat.DefaultWarmConcurrency, "Concurrent translation requests")

	cmd.AddCommand(clearCmd, exportCmd, importCmd, statsCmd, warmCmd)
	return cmd
}

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, l := range bearchat.Languages() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", l.Code(), l.Name(), l.NativeName())
			}
			return w.Flush()
		},
	}
}

// readLines reads a phrase file. The path is intentionally user-provided.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("opening phrase file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading phrase file: %w", err)
	}
	return lines, nil
}
