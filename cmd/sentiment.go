package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ask-andrew/360brief-sub007/pkg/bootstrap"
	"github.com/ask-andrew/360brief-sub007/pkg/config"
)

// SentimentOptions holds the flags for the sentiment command.
type SentimentOptions struct {
	FallbackOnly bool
	Format       string
}

var sentimentOpts SentimentOptions

// sentimentCmd classifies a single text.
var sentimentCmd = &cobra.Command{
	Use:   "sentiment [text...]",
	Short: "Classify the sentiment of a text",
	Long: `Classify text as positive, neutral or negative.

With no arguments the text is read from stdin. The AI provider is used when
configured; otherwise the built-in lexicon scores the text.

Examples:
  brief sentiment "Great work on the launch, thanks team"
  echo "The deploy failed again" | brief sentiment --fallback-only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}

		text := strings.Join(args, " ")
		if len(args) == 0 {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return errors.Wrap(err, "failed to read stdin")
			}
			text = string(raw)
		}

		return runSentiment(cmd.Context(), sentimentOpts, cfg, text, cmd.OutOrStdout())
	},
}

func init() {
	sentimentCmd.Flags().BoolVar(&sentimentOpts.FallbackOnly, "fallback-only", false, "skip the AI provider and use lexicon sentiment")
	sentimentCmd.Flags().StringVarP(&sentimentOpts.Format, "format", "f", "text", "output format: text, json, yaml, toml")

	rootCmd.AddCommand(sentimentCmd)
}

func runSentiment(ctx context.Context, opts SentimentOptions, cfg *config.Config, text string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipeline, err := bootstrap.BuildPipeline(ctx, cfg, newLogger(), bootstrap.PipelineOptions{FallbackOnly: opts.FallbackOnly})
	if err != nil {
		return err
	}

	res, err := pipeline.Analyzer.Analyze(ctx, strings.TrimSpace(text))
	if err != nil {
		return err
	}

	if opts.Format == "text" {
		_, err = fmt.Fprintf(out, "%s\t%.3f\t%s\n", res.Sentiment, res.Score, res.Method)
		return err
	}
	return writeStructured(out, opts.Format, res)
}
