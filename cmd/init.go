package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/longkey1/gptmd/internal/gptmd/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration file",
	Long: `Initialize the configuration file with default settings.
The config file will be created at $HOME/.config/gptmd/config.toml by default.
You can specify a different location using the --config option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Set config file path
		configFile := filepath.Join(home, ".config", "gptmd", "config.toml")
		if cfgFile != "" {
			configFile = cfgFile
		}

		if err := writeDefaultConfig(configFile); err != nil {
			return err
		}

		fmt.Printf("Configuration file created at: %s\n", configFile)
		return nil
	},
}

// writeDefaultConfig encodes the default configuration to configFile as TOML.
// An existing file is never overwritten.
func writeDefaultConfig(configFile string) error {
	// Create config directory
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at: %s", configFile)
	}

	f, err := os.Create(configFile)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config.NewDefaultConfig()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
