package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/go-github/v68/github"
	"github.com/spf13/cobra"
	"google.golang.org/api/gmail/v1"

	"github.com/ask-andrew/360brief-sub007/pkg/ingest"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

// ImportOptions holds the flags for the import command.
type ImportOptions struct {
	Gmail  string
	GitHub string
	Base   string
	Format string
}

var importOpts ImportOptions

// importCmd converts provider exports into a unified data file.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Convert Gmail and GitHub exports into unified data",
	Long: `Convert already-fetched provider records into a unified data file that
generate accepts.

  --gmail   JSON array of Gmail API messages fetched with format=full
  --github  JSON array of GitHub issues; pull requests are skipped
  --base    existing unified data file to merge into

Records that cannot be converted are reported on stderr and left out.

Examples:
  brief import --gmail messages.json --github issues.json > week.json
  brief import --base week.yaml --github issues.json --format yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(importOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	importCmd.Flags().StringVar(&importOpts.Gmail, "gmail", "", "Gmail messages JSON file")
	importCmd.Flags().StringVar(&importOpts.GitHub, "github", "", "GitHub issues JSON file")
	importCmd.Flags().StringVar(&importOpts.Base, "base", "", "unified data file to merge into")
	importCmd.Flags().StringVarP(&importOpts.Format, "format", "f", formatJSON, "output format: json, yaml, toml")

	rootCmd.AddCommand(importCmd)
}

func runImport(opts ImportOptions, out, errOut io.Writer) error {
	data := unified.Empty()
	if opts.Base != "" {
		base, err := ingest.LoadFile(opts.Base)
		if err != nil {
			return err
		}
		data = base
	}

	if opts.Gmail != "" {
		var msgs []*gmail.Message
		if err := readJSONFile(opts.Gmail, &msgs); err != nil {
			return err
		}
		emails, err := ingest.EmailsFromGmail(msgs)
		if err != nil {
			fmt.Fprintf(errOut, "Warning: %v\n", err)
		}
		data.Emails = append(data.Emails, emails...)
	}

	if opts.GitHub != "" {
		var issues []*github.Issue
		if err := readJSONFile(opts.GitHub, &issues); err != nil {
			return err
		}
		tickets, err := ingest.TicketsFromGitHubIssues(issues)
		if err != nil {
			fmt.Fprintf(errOut, "Warning: %v\n", err)
		}
		data.Tickets = append(data.Tickets, tickets...)
	}

	return writeStructured(out, opts.Format, data)
}

func readJSONFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}
	return nil
}
