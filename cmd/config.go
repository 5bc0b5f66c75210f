package cmd

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// secretKeys are redacted by config show.
var secretKeys = []string{"api_key", "gemini_api_key"}

const redacted = "********"

// configCmd groups configuration commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

// configShowCmd prints the effective configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Print the effective configuration as TOML, after defaults, the user
config file, .360brief.toml and BRIEF_* environment variables are applied.

API keys are redacted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(); err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		return runConfigShow(viper.AllSettings(), cmd.OutOrStdout())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(settings map[string]any, out io.Writer) error {
	redactSecrets(settings)
	return toml.NewEncoder(out).Encode(settings)
}

// redactSecrets replaces non-empty secret values at any depth.
func redactSecrets(settings map[string]any) {
	for key, value := range settings {
		if nested, ok := value.(map[string]any); ok {
			redactSecrets(nested)
			continue
		}
		for _, secret := range secretKeys {
			if key == secret {
				if s, ok := value.(string); ok && s != "" {
					settings[key] = redacted
				}
			}
		}
	}
}
