package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/chriscorrea/dialect/internal/app"
	"github.com/chriscorrea/dialect/internal/config"
	"github.com/chriscorrea/dialect/internal/counter"
	"github.com/chriscorrea/dialect/internal/dataset"
	"github.com/chriscorrea/dialect/internal/fetch"
	"github.com/chriscorrea/dialect/internal/pipeline"
	"github.com/chriscorrea/dialect/internal/preprocess"
	"github.com/chriscorrea/dialect/internal/spinner"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// buildConfig loads the configuration file and environment, then applies any
// flag the user set explicitly on top.
func buildConfig(cmd *cobra.Command) (app.Config, config.LogConfig, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return app.Config{}, config.LogConfig{}, err
	}

	// flags override file and environment values only when given
	if flags.Changed("madar") {
		cfg.Data.MADARDir, _ = flags.GetString("madar")
	}
	if flags.Changed("qadi") {
		cfg.Data.QADIDir, _ = flags.GetString("qadi")
	}
	if flags.Changed("target") {
		cfg.Data.Target, _ = flags.GetString("target")
	}
	if flags.Changed("folds") {
		cfg.Pipeline.Folds, _ = flags.GetInt("folds")
	}
	if flags.Changed("seed") {
		cfg.Pipeline.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("neighbors") {
		cfg.Pipeline.KNeighbors, _ = flags.GetInt("neighbors")
	}
	if flags.Changed("workers") {
		cfg.Pipeline.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("alpha") {
		cfg.Pipeline.Alphas, _ = flags.GetFloat64Slice("alpha")
	}
	if flags.Changed("ngram-max") {
		cfg.Pipeline.NgramMax, _ = flags.GetIntSlice("ngram-max")
	}
	if flags.Changed("no-reshape") {
		cfg.Pipeline.NoReshape, _ = flags.GetBool("no-reshape")
	}
	if flags.Changed("count") {
		cfg.Output.Count, _ = flags.GetString("count")
	}
	if flags.Changed("top-terms") {
		cfg.Output.TopTerms, _ = flags.GetInt("top-terms")
	}

	// determine output format
	textFlag, _ := flags.GetBool("text")
	jsonFlag, _ := flags.GetBool("json")
	mdFlag, _ := flags.GetBool("md")
	switch {
	case textFlag:
		cfg.Output.Format = "text"
	case jsonFlag:
		cfg.Output.Format = "json"
	case mdFlag:
		cfg.Output.Format = "markdown"
	}

	if debug, _ := flags.GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return app.Config{}, config.LogConfig{}, err
	}

	target, err := dataset.ParseTarget(cfg.Data.Target)
	if err != nil {
		return app.Config{}, config.LogConfig{}, err
	}
	method, err := counter.ParseMethod(cfg.Output.Count)
	if err != nil {
		return app.Config{}, config.LogConfig{}, err
	}
	format, err := app.ParseOutputFormat(strings.ToLower(cfg.Output.Format))
	if err != nil {
		return app.Config{}, config.LogConfig{}, err
	}

	search := pipeline.DefaultSearchConfig()
	search.NgramRanges = cfg.Pipeline.NgramRanges()
	search.Alphas = cfg.Pipeline.Alphas
	search.Folds = cfg.Pipeline.Folds
	search.Workers = cfg.Pipeline.Workers
	search.Options = pipeline.Options{Seed: cfg.Pipeline.Seed, KNeighbors: cfg.Pipeline.KNeighbors}

	quiet, _ := flags.GetBool("quiet")

	return app.Config{
		Sources:        dataset.Sources{MADARDir: cfg.Data.MADARDir, QADIDir: cfg.Data.QADIDir},
		Target:         target,
		Search:         search,
		Reshape:        !cfg.Pipeline.NoReshape,
		Stopwords:      cfg.Pipeline.Stopwords,
		CountingMethod: method,
		TopTerms:       cfg.Output.TopTerms,
		OutputFormat:   format,
		Visual:         spinner.Enabled(os.Stdout),
		Quiet:          quiet,
	}, cfg.Log, nil
}

// setupLogger configures the default slog logger from the log settings.
// Quiet runs only report errors unless debug logging was asked for.
func setupLogger(w io.Writer, cfg config.LogConfig, quiet bool) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if quiet && level > slog.LevelDebug && level < slog.LevelError {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

var rootCmd = &cobra.Command{
	Use:   "dialect",
	Short: "Arabic dialect identification",
	Long: `Dialect trains and evaluates a classifier that identifies the Arabic dialect of a sentence, using the MADAR and QADI corpora.

Examples:
  dialect train --madar data/madar --qadi data/qadi
  dialect train --config dialect.yaml --target label --json
  echo "شو بدك تعمل" | dialect normalize`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Grid-search, train and evaluate the classifier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// build config from file, environment and flags
		cfg, logCfg, err := buildConfig(cmd)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		setupLogger(os.Stderr, logCfg, cfg.Quiet)

		// create context with signal handling for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := app.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("dialect failed: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), result)
		return nil
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [text...]",
	Short: "Print the normalized form of each argument or stdin line",
	RunE: func(cmd *cobra.Command, args []string) error {
		noReshape, _ := cmd.Flags().GetBool("no-reshape")
		n := preprocess.NewNormalizer(preprocess.WithReshape(!noReshape))
		out := cmd.OutOrStdout()

		if len(args) > 0 {
			for _, arg := range args {
				fmt.Fprintln(out, n.NormalizeText(arg))
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return normalizeLines(ctx, n, out)
	},
}

// normalizeLines normalizes standard input line by line.
func normalizeLines(ctx context.Context, n *preprocess.Normalizer, out io.Writer) error {
	reader, err := fetch.GetContent(ctx, "-")
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(out, n.NormalizeText(scanner.Text()))
	}
	return scanner.Err()
}

// addTrainFlags registers the train command's flags on flags.
func addTrainFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a YAML config file (default: $DIALECT_CONFIG)")

	// data flags
	flags.String("madar", "", "Directory with MADAR *.tsv files")
	flags.String("qadi", "", "Directory with QADI train/validation/test files")
	flags.String("target", "city", "Class to learn: label or city")

	// search flags
	flags.Int("folds", pipeline.DefaultFolds, "Cross-validation folds")
	flags.Uint64("seed", pipeline.DefaultSeed, "Oversampling seed")
	flags.Int("neighbors", 5, "Nearest neighbors used for oversampling")
	flags.Int("workers", 0, "Concurrent fits (default: number of CPUs)")
	flags.Float64Slice("alpha", []float64{0.5, 0.8, 1.0}, "Smoothing values to search")
	flags.IntSlice("ngram-max", []int{1, 2}, "Largest n-gram sizes to search, each as range (1,n)")
	flags.Bool("no-reshape", false, "Segment words on logical rather than shaped text")

	// report flags
	flags.String("count", "words", "Unit for corpus length statistics: words, characters or tokens")
	flags.Int("top-terms", 10, "Most probable terms listed per class (0 disables)")

	// output format flags
	flags.Bool("md", false, "Output in Markdown format (default)")
	flags.Bool("text", false, "Output in plain text format")
	flags.Bool("json", false, "Output in JSON format")

	// other flags
	flags.BoolP("quiet", "q", false, "Suppress progress and log messages")
	flags.BoolP("debug", "D", false, "Enable debug logging")
	_ = flags.MarkHidden("debug")
}

func init() {
	addTrainFlags(trainCmd.Flags())

	// output format flags are mutually exclusive
	trainCmd.MarkFlagsMutuallyExclusive("md", "text", "json")

	normalizeCmd.Flags().Bool("no-reshape", false, "Segment words on logical rather than shaped text")

	rootCmd.AddCommand(trainCmd, normalizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
