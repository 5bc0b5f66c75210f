package cmd

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ask-andrew/360brief-sub007/pkg/bootstrap"
	"github.com/ask-andrew/360brief-sub007/pkg/brief"
	"github.com/ask-andrew/360brief-sub007/pkg/config"
	"github.com/ask-andrew/360brief-sub007/pkg/ingest"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

// GenerateOptions holds the flags for the generate command.
type GenerateOptions struct {
	Input        string
	InputFormat  string
	Style        string
	Format       string
	Tone         string
	FallbackOnly bool
}

var generateOpts GenerateOptions

// generateCmd builds a styled brief from a unified data file.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a styled brief from unified data",
	Long: `Generate a styled executive brief from a unified data file.

The input holds emails, incidents, calendar events and tickets as JSON, YAML
or TOML. Use "-" to read JSON from stdin.

Output is markdown on a terminal and JSON otherwise, unless --format is set.

Examples:
  brief generate --input week.json
  brief generate --input week.yaml --style startup_velocity --format yaml
  cat week.json | brief generate --input - --tone plain`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		return runGenerate(cmd.Context(), generateOpts, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOpts.Input, "input", "i", "", "unified data file (.json, .yaml, .toml) or - for stdin")
	generateCmd.Flags().StringVar(&generateOpts.InputFormat, "input-format", ingest.FormatJSON, "format of stdin input (json, yaml, toml)")
	generateCmd.Flags().StringVarP(&generateOpts.Style, "style", "s", "", "brief style (default from brief.default_style)")
	generateCmd.Flags().StringVarP(&generateOpts.Format, "format", "f", "", "output format: json, yaml, toml, markdown")
	generateCmd.Flags().StringVar(&generateOpts.Tone, "tone", "", "polish tone: none, plain, ai (default from brief.tone)")
	generateCmd.Flags().BoolVar(&generateOpts.FallbackOnly, "fallback-only", false, "skip the AI provider and use lexicon sentiment")
	_ = generateCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(ctx context.Context, opts GenerateOptions, cfg *config.Config, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tag := opts.Style
	if tag == "" {
		tag = cfg.Brief.DefaultStyle
	}
	style, err := brief.ParseStyle(tag)
	if err != nil {
		return err
	}

	data, err := readUnifiedData(opts.Input, opts.InputFormat, in)
	if err != nil {
		return err
	}

	logger := newLogger()
	pipeline, err := bootstrap.BuildPipeline(ctx, cfg, logger, bootstrap.PipelineOptions{
		FallbackOnly: opts.FallbackOnly,
		Tone:         opts.Tone,
	})
	if err != nil {
		return err
	}

	b, err := pipeline.Synthesizer.GenerateStyledBrief(ctx, data, style)
	if err != nil {
		return err
	}

	if b.Degraded {
		logger.Info("brief built with fallback sentiment", "style", string(b.Style))
	}
	if b.Polish != nil && b.Polish.Error != "" {
		logger.Warn("polish failed, narrative left unpolished", "tone", b.Polish.Tone, "error", b.Polish.Error)
	}

	return writeBrief(out, resolveFormat(opts.Format, out), b)
}

func readUnifiedData(path, format string, in io.Reader) (*unified.UnifiedData, error) {
	if path != "-" {
		return ingest.LoadFile(path)
	}
	if in == nil {
		in = os.Stdin
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read stdin")
	}
	return ingest.Decode(format, raw)
}
