package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mythkeep/lorehound/browser"
	"github.com/mythkeep/lorehound/config"
	"github.com/mythkeep/lorehound/directfetch"
	"github.com/mythkeep/lorehound/fallback"
	"github.com/mythkeep/lorehound/models"
	"github.com/mythkeep/lorehound/pipeline"
)

var (
	flagBaseURL string
	flagPageURL string
	flagOut     string
	flagLimit   int
	flagSeed    int64
)

func main() {
	root := &cobra.Command{
		Use:   "lorehound",
		Short: "Extract structured tabletop reference data from a JS-heavy site",
		Long: "lorehound drives a hardened headless browser against a " +
			"JavaScript-rendered reference site, falls back to fetching the " +
			"raw data files directly, and as a last resort emits a manual " +
			"extraction kit for a human operator.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", "https://5e.tools/", "site base URL")
	root.PersistentFlags().StringVar(&flagPageURL, "url", "", "override the target page URL")
	root.PersistentFlags().StringVar(&flagOut, "out", "", "output directory (default ./data/<target>)")
	root.PersistentFlags().IntVar(&flagLimit, "limit", 0, "truncate the result to the first N records (0 = all)")
	root.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "seed for behavior randomness (0 = time-based)")

	root.AddCommand(
		targetCommand("spells", "Extract the spell list", models.Spells),
		targetCommand("bestiary", "Extract the monster list", models.Bestiary),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// targetCommand builds the subcommand for one target preset.
func targetCommand(name, short string, preset func(baseURL string) models.Target) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, preset)
		},
	}
}

// run wires the whole pipeline for one invocation.
func run(cmd *cobra.Command, preset func(baseURL string) models.Target) error {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()
	if flagSeed != 0 {
		cfg.Extract.Seed = flagSeed
	}

	// ── 2. Initialise structured logging ────────────────────────────
	log := initLogger(cfg.Log)

	// ── 3. Build the run request ────────────────────────────────────
	target := preset(flagBaseURL)
	if flagPageURL != "" {
		target.PageURL = flagPageURL
	}
	outDir := flagOut
	if outDir == "" {
		outDir = "./data/" + target.Name
	}
	if flagLimit < 0 {
		return models.NewExtractError(models.ErrCodeInvalidInput,
			"limit must be a positive integer", nil)
	}
	req := &models.RunRequest{
		Target:    target,
		OutputDir: outDir,
		Limit:     flagLimit,
	}
	log.Info("starting extraction run",
		"target", target.Name, "url", target.PageURL,
		"out", outDir, "limit", flagLimit)

	// ── 4. Assemble strategies and run ──────────────────────────────
	strategies := []pipeline.Strategy{
		browser.New(cfg.Browser, cfg.Extract, log),
		directfetch.New(cfg.Fetch, log),
	}
	pipe := pipeline.New(strategies, fallback.NewEmitter(log), log)

	result, err := pipe.Run(cmd.Context(), req)
	if err != nil {
		log.Error("run failed", "error", err)
		return err
	}

	// ── 5. Report the outcome ───────────────────────────────────────
	if result.ManualFallback {
		fmt.Fprintf(cmd.OutOrStdout(),
			"automated extraction failed; manual extraction required.\n"+
				"Follow the instructions in %s/%s/README.md\n",
			outDir, fallback.Subdir)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "extracted %d records via %s → %s\n",
		len(result.Records), result.Strategy, result.OutputPath)
	return nil
}

// initLogger configures slog based on the Log config and returns the
// root logger.
func initLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
