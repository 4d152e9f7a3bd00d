package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallyhq/tally/internal/classify"
	"github.com/tallyhq/tally/internal/cli"
	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/engine"
	"github.com/tallyhq/tally/internal/extract"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <directory>",
		Short: "Extract, classify, and ledger the statements in a directory",
		Long: `Ingest reads every supported document in the directory (PDF, text, CSV,
XLSX, OFX/QFX), parses out transaction candidates, deduplicates them, sends
the remainder to the classification service, and merges the results into
the ledger's category sheets.

Examples:
  tally ingest ~/Documents/statements
  tally ingest ./inbox --batch-size 10`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().Int("batch-size", 20, "transactions per classification request")
	cmd.Flags().Bool("no-cache", false, "bypass the classification cache")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	batchSize, _ := cmd.Flags().GetInt("batch-size")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	client, err := newClassificationClient()
	if err != nil {
		return common.NewUserError("classification service is not configured; set GROQ_API_KEY or classifier.api_key", err)
	}
	defer client.Close()

	var cache *classify.Cache
	if !noCache {
		path, err := cachePath()
		if err != nil {
			return err
		}
		cache, err = classify.OpenCache(path)
		if err != nil {
			logger.Warn("classification cache unavailable, continuing without it", "error", err)
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	store, err := openLedger(logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	gatewayCfg := classify.DefaultConfig()
	gatewayCfg.BatchSize = batchSize
	gateway := classify.NewGateway(client, cache, gatewayCfg, logger)

	pipeline := engine.New(extract.New(logger), nil, gateway, store, logger)

	var bar *progressbar.ProgressBar
	pipeline.OnProgress(func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("parsing documents"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	})

	start := time.Now()
	diag, err := pipeline.Run(ctx, args[0])
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	printDiagnostics(diag, time.Since(start))
	return nil
}

// newClassificationClient builds the completion client from config. The API
// key comes from config, TALLY_CLASSIFIER_API_KEY, or GROQ_API_KEY.
func newClassificationClient() (*classify.Client, error) {
	apiKey := viper.GetString("classifier.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}

	return classify.NewClient(classify.ClientConfig{
		APIKey:            apiKey,
		Model:             viper.GetString("classifier.model"),
		BaseURL:           viper.GetString("classifier.base_url"),
		Temperature:       viper.GetFloat64("classifier.temperature"),
		RequestsPerMinute: viper.GetInt("classifier.requests_per_minute"),
	})
}

func printDiagnostics(diag *engine.RunDiagnostics, elapsed time.Duration) {
	fmt.Println(cli.TitleStyle.Render("Ingestion complete"))
	fmt.Printf("  Documents processed:  %d\n", diag.Documents)
	fmt.Printf("  Documents skipped:    %d\n", diag.DocumentsSkipped)
	fmt.Printf("  Transactions parsed:  %d\n", diag.Parsed)
	fmt.Printf("  Duplicates removed:   %d\n", diag.Deduplicated)
	fmt.Printf("  Cache hits:           %d\n", diag.CacheHits)
	fmt.Printf("  Classified:           %d\n", diag.Classified)
	if diag.Coerced > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d records labeled Uncertain Expenses", diag.Coerced)))
	}
	if diag.Rejected > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d records rejected (bad date or amount)", diag.Rejected)))
	}
	if diag.FailedBatches > 0 {
		fmt.Println(cli.FormatError(fmt.Sprintf("%d of %d classification batches failed", diag.FailedBatches, diag.Batches)))
	}
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("  Took %s", elapsed.Round(time.Millisecond))))
}
