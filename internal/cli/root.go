package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/config"
	"github.com/andreyxaxa/Photo-Ingest/internal/app"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure/extractor"
	infrakafka "github.com/andreyxaxa/Photo-Ingest/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/objectstore"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase/ingest"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase/query"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase/reconcile"
	"github.com/andreyxaxa/Photo-Ingest/pkg/kafka/producer"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile string
	verbose bool

	// Use cases, set up in PersistentPreRunE
	ingestUseCase    usecase.IngestUseCase
	queryUseCase     usecase.QueryUseCase
	reconcileUseCase usecase.ReconcileUseCase

	closers []func()
)

var rootCmd = &cobra.Command{
	Use:   "photoctl",
	Short: "Inspect and maintain the photo index",
	Long: `photoctl talks to the same object store and index the service uses,
configured through the same environment (or .env file).`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded when present")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stdout")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func initializeApp(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(envFile); err == nil {
		if err = godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	var l logger.Interface = logger.Nop()
	if verbose {
		l = logger.New(cfg.Log.Level)
	}

	loc, err := time.LoadLocation(cfg.Upload.TimeZone)
	if err != nil {
		return fmt.Errorf("time zone: %w", err)
	}

	ctx := commandContext(cmd)

	blob, err := app.NewBlobStorage(ctx, cfg)
	if err != nil {
		return err
	}
	objects := objectstore.New(blob, cfg.ObjectStore.PublicURL, objectstore.Location(loc))

	store, closeStore, err := app.NewRecordStore(ctx, cfg, l)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)

	var opts []ingest.Option
	if cfg.Kafka.Enabled {
		p, err := producer.New(ctx, cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		ep := infrakafka.NewEventProducer(p, cfg.Kafka.Topic)
		closers = append(closers, func() { _ = ep.Close() })
		opts = append(opts, ingest.Publisher(ep))
	}

	ingestUseCase = ingest.New(
		ingest.NewValidator(cfg.Upload.MaxFileSize),
		ingest.NewMerger(loc, time.Now),
		extractor.New(loc),
		objects,
		store,
		l,
		opts...,
	)
	queryUseCase = query.New(store, cfg.Search.Window, l)
	reconcileUseCase = reconcile.New(store, objects, cfg.Reconciler.GracePeriod, l)

	return nil
}

func shutdownApp(_ *cobra.Command, _ []string) error {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil

	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
