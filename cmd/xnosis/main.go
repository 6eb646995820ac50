package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/bootstrap"
	"github.com/AmartyaKumar11/X-NOSIS/internal/evaluation"
	"github.com/AmartyaKumar11/X-NOSIS/internal/ingestion"
	"github.com/AmartyaKumar11/X-NOSIS/internal/sources"
	"github.com/AmartyaKumar11/X-NOSIS/internal/storage/sqlite"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/config"
	appLogger "github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "xnosis",
		Short:         "X-NOSIS clinical entity extraction tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(populateCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(statsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads config and opens the store. Logs go to stderr so command
// output on stdout stays machine-readable.
func setup() (*config.Config, *sqlite.Client, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, "stderr"); err != nil {
		return nil, nil, err
	}

	store, err := bootstrap.OpenStore(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

func populateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Load configured term sources into the corpus store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := setup()
			if err != nil {
				return err
			}
			defer store.Close()
			defer appLogger.Sync()

			if loinc, _ := cmd.Flags().GetString("loinc"); loinc != "" {
				cfg.Corpus.LoincPath = loinc
			}

			srcs := bootstrap.ConfiguredSources(cfg)
			if len(srcs) == 0 {
				return fmt.Errorf("no sources enabled")
			}

			registry := terms.NewRegistry(appLogger.Named("corpus"))
			report, err := sources.NewPopulator(store, registry, appLogger.Named("populate")).Run(cmd.Context(), srcs)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d sources failed", report.Failed, len(report.Sources))
			}
			return nil
		},
	}
	cmd.Flags().String("loinc", "", "Path to Loinc.csv (overrides corpus.loincPath)")
	return cmd
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Extract clinical entities from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := setup()
			if err != nil {
				return err
			}
			defer store.Close()
			defer appLogger.Sync()

			var (
				data     []byte
				filename string
			)
			if len(args) == 1 {
				filename = args[0]
				data, err = os.ReadFile(filename)
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			registry := terms.NewRegistry(appLogger.Named("corpus"))
			if _, err := bootstrap.LoadCorpus(cmd.Context(), store, registry, cfg, appLogger.Named("populate")); err != nil {
				appLogger.Warn("Corpus unavailable, using pattern matching only", zap.Error(err))
			}

			engine, err := bootstrap.NewEngine(cfg.Analysis)
			if err != nil {
				return err
			}

			persist, _ := cmd.Flags().GetBool("persist")
			var opts []ingestion.Option
			if persist {
				opts = append(opts, ingestion.WithStore(store))
			}
			processor := ingestion.NewProcessor(engine, registry, ingestion.Config{
				MaxTextLength:  cfg.Analysis.MaxTextLength,
				PersistResults: persist,
			}, opts...)

			patientID, _ := cmd.Flags().GetString("patient-id")
			out, err := processor.Analyze(cmd.Context(), ingestion.Input{
				Text:        string(data),
				ContentType: ingestion.DetectContentType("", filename),
				PatientID:   patientID,
				Channel:     "cli",
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().String("patient-id", "", "Patient identifier stored with the result")
	cmd.Flags().Bool("persist", false, "Store the result in the analysis history")
	return cmd
}

func evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <dataset.json>",
		Short: "Score extraction against a gold-annotated dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := setup()
			if err != nil {
				return err
			}
			defer store.Close()
			defer appLogger.Sync()

			dataset, err := evaluation.LoadDatasetFile(args[0])
			if err != nil {
				return err
			}

			registry := terms.NewRegistry(appLogger.Named("corpus"))
			snap, err := bootstrap.LoadCorpus(cmd.Context(), store, registry, cfg, appLogger.Named("populate"))
			if err != nil {
				return err
			}

			engine, err := bootstrap.NewEngine(cfg.Analysis)
			if err != nil {
				return err
			}

			report, err := evaluation.NewEvaluator(engine, snap).Run(cmd.Context(), dataset)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), evaluation.GenerateReport(report))
			return err
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := setup()
			if err != nil {
				return err
			}
			defer store.Close()
			defer appLogger.Sync()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
