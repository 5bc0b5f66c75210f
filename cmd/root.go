package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ask-andrew/360brief-sub007/pkg/bootstrap"
	"github.com/ask-andrew/360brief-sub007/pkg/config"
	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

var cfgFile string
var verbose bool
var appConfig *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "brief",
	Short: "360brief - executive briefs from your communication streams",
	Long: `360brief turns already-fetched emails, incidents, calendar events and
tickets into a styled executive brief.

Sentiment is analyzed with an AI provider when one is configured and falls
back to a built-in lexicon otherwise, so a brief is always produced.

Styles:
  mission_brief            Situation, threats and immediate actions
  startup_velocity         Momentum, shipped work and blockers
  management_consulting    Findings, recommendations and a risk matrix
  newspaper_newsletter     Headline, lead story and sections`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cfgFile, verbose = bootstrap.PreParseGlobalFlags(os.Args)

	if err := initConfig(); err != nil {
		cobra.CheckErr(err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, brieferrors.FormatUserError(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		_ = initConfig()
	})

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "C", "", "config file (default is $HOME/.config/360brief/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	appConfig, verbose, err = bootstrap.InitConfig(cfgFile, verbose)
	return err
}

// loadConfig returns the configuration derived from the current viper state.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// newLogger returns the stderr logger shared by every command.
func newLogger() *slog.Logger {
	return bootstrap.NewLogger(os.Stderr, verbose)
}

// resetConfig clears the cached configuration.
// This is primarily used in tests to ensure each test starts with a fresh config.
func resetConfig() {
	appConfig = nil
	bootstrap.Reset()
	viper.Reset()
}
