package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/ask-andrew/360brief-sub007/pkg/config"
)

// LocalConfigName is the per-directory config file merged over the user config.
const LocalConfigName = ".360brief.toml"

var (
	lastLoadedConfig  string
	lastLoadedVerbose bool
	loadedConfig      *config.Config
)

// PreParseGlobalFlags manually scans os.Args for --config and --verbose flags
// before the main Cobra execution. This is a bootstrap step for configuration.
// It stops scanning as soon as it hits a non-flag argument or the "--" marker.
func PreParseGlobalFlags(args []string) (string, bool) {
	var cfgFile string
	var verbose bool

	for i := 1; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			break
		}

		switch {
		case arg == "--config" || arg == "-C":
			if i+1 < len(args) {
				cfgFile = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--config="):
			cfgFile = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-C="):
			cfgFile = strings.TrimPrefix(arg, "-C=")
		case strings.HasPrefix(arg, "-C") && len(arg) > 2:
			cfgFile = arg[2:]
		case arg == "--verbose" || arg == "-v":
			verbose = true
		}
	}

	return cfgFile, verbose
}

// InitConfig reads in config file and ENV variables if set.
// It returns the loaded config and the actual verbosity state.
func InitConfig(cfgFile string, verbose bool) (*config.Config, bool, error) {
	if os.Getenv("GO_TEST") != "true" && loadedConfig != nil && cfgFile == lastLoadedConfig && verbose == lastLoadedVerbose {
		return loadedConfig, verbose, nil
	}

	viper.Reset()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, verbose, errors.Wrap(err, "failed to get home directory")
		}
		viper.AddConfigPath(filepath.Join(home, ".config", "360brief"))
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("BRIEF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if err != nil && cfgFile != "" {
		return nil, verbose, errors.Wrapf(err, "failed to read config file %s", cfgFile)
	}

	LoadLocalConfig(verbose)

	cfg, err := config.Load()
	if err != nil {
		return nil, verbose, err
	}

	for _, w := range config.CheckSecurityWarnings(cfg) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w.Message)
	}

	lastLoadedConfig = cfgFile
	lastLoadedVerbose = verbose
	loadedConfig = cfg

	return cfg, verbose, nil
}

// LoadLocalConfig merges .360brief.toml from the working directory, if
// present, over the settings already in viper.
func LoadLocalConfig(verbose bool) {
	if _, err := os.Stat(LocalConfigName); err != nil {
		return
	}

	localViper := viper.New()
	localViper.SetConfigFile(LocalConfigName)

	if err := localViper.ReadInConfig(); err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Warning: could not read local config %s: %v\n", LocalConfigName, err)
		}
		return
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Using local config: %s\n", LocalConfigName)
	}

	if err := viper.MergeConfigMap(localViper.AllSettings()); err != nil && verbose {
		fmt.Fprintf(os.Stderr, "Warning: could not merge local config: %v\n", err)
	}
}

// NewLogger returns a text logger on w. Debug records are only emitted when
// verbose is set.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Reset clears the cached configuration state.
func Reset() {
	lastLoadedConfig = ""
	lastLoadedVerbose = false
	loadedConfig = nil
}
