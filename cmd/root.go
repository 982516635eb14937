package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/longkey1/gptmd/internal/gptmd/config"
	"github.com/longkey1/gptmd/internal/logger"
)

var (
	cfgFile string
	verbose bool
)

// Exit codes reported to the shell
const (
	exitUsage        = 1
	exitUnreadable   = 2
	exitInvalidJSON  = 3
	exitConvert      = 4
	exitWriteFailure = 5
)

// ExitError carries the process exit code for a failed command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitError(code int, format string, args ...any) error {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gptmd",
	Short: "Convert ChatGPT conversation exports to Markdown",
	Long: `gptmd converts a ChatGPT conversation export (JSON) into a single Markdown document.

Only the branch ending at the conversation's current message is kept. Reasoning that
precedes an answer (thought summaries, executed code and its output) is folded into a
collapsible <details> block placed before the answer.
You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitUsage)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/gptmd/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("target", "", "markdown target: github (quote blank lines) or compact")
	rootCmd.PersistentFlags().String("lang", "", "label language preset (en, zh)")
	rootCmd.PersistentFlags().String("labels", "", "TOML file overriding document labels")
	rootCmd.PersistentFlags().String("image-placeholder", "", "text substituted for image attachments (default: drop them)")

	viper.BindPFlag("target", rootCmd.PersistentFlags().Lookup("target"))
	viper.BindPFlag("lang", rootCmd.PersistentFlags().Lookup("lang"))
	viper.BindPFlag("labels_file", rootCmd.PersistentFlags().Lookup("labels"))
	viper.BindPFlag("image_placeholder", rootCmd.PersistentFlags().Lookup("image-placeholder"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env file in the working directory is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) && verbose {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	// Set environment variable prefix and automatic env
	viper.SetEnvPrefix("GPTMD")
	viper.AutomaticEnv()

	// Determine config directory for user config
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "gptmd")

	defaultConfig := config.NewDefaultConfig()

	// Set default values from config package
	viper.SetDefault("target", defaultConfig.Target)
	viper.SetDefault("lang", defaultConfig.Lang)
	viper.SetDefault("labels_file", defaultConfig.LabelsFile)
	viper.SetDefault("out_dir", defaultConfig.OutDir)
	viper.SetDefault("log_level", defaultConfig.LogLevel)
	viper.SetDefault("image_placeholder", defaultConfig.ImagePlaceholder)
	viper.SetDefault("watch_debounce_ms", defaultConfig.WatchDebounceMS)

	// Bind environment variables
	viper.BindEnv("target", "GPTMD_TARGET")
	viper.BindEnv("lang", "GPTMD_LANG")
	viper.BindEnv("labels_file", "GPTMD_LABELS_FILE")
	viper.BindEnv("out_dir", "GPTMD_OUT_DIR")
	viper.BindEnv("log_level", "GPTMD_LOG_LEVEL")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		systemConfigPaths := []string{
			"/etc/gptmd",
			"/usr/local/etc/gptmd",
		}

		systemConfigLoaded := false
		for _, path := range systemConfigPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		// Try to read system-wide config
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "  GPTMD_TARGET:", viper.GetString("target"))
		fmt.Fprintln(os.Stderr, "  GPTMD_LANG:", viper.GetString("lang"))
		fmt.Fprintln(os.Stderr, "  GPTMD_LABELS_FILE:", viper.GetString("labels_file"))
		fmt.Fprintln(os.Stderr, "  GPTMD_OUT_DIR:", viper.GetString("out_dir"))
	}
}

// loadConfig loads the configuration and wraps failures as usage errors
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, exitError(exitUsage, "loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger; --verbose forces debug level
func newLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Pretty: true})
}
