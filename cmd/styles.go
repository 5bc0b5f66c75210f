package cmd

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ask-andrew/360brief-sub007/pkg/brief"
	"github.com/ask-andrew/360brief-sub007/pkg/config"
)

// stylesCmd lists the brief styles.
var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List brief styles",
	Long: `List every brief style with its description.

Enabled styles come from brief.styles; the default is marked with *.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		return runStyles(cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(stylesCmd)
}

func runStyles(cfg *config.Config, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STYLE\tENABLED\tDESCRIPTION")
	for _, s := range brief.AllStyles {
		name := string(s)
		if name == cfg.Brief.DefaultStyle {
			name += " *"
		}
		enabled := "no"
		if slices.Contains(cfg.Brief.Styles, string(s)) {
			enabled = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, enabled, s.Description())
	}
	return w.Flush()
}
