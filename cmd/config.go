package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/longkey1/gptmd/internal/gptmd/config"
)

// configFields lists the fields accepted by 'gptmd config <field>'
var configFields = []string{"configfile", "target", "lang", "labels_file", "out_dir", "log_level", "image_placeholder", "watch_debounce_ms"}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file, environment variables and flags.

If a field name is specified, only that field's value is displayed.
Available fields: ` + strings.Join(configFields, ", ") + `

Examples:
  gptmd config             # Show all configuration
  gptmd config target      # Show only the markdown target
  gptmd config labels_file # Show only the labels file`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// If a field is specified, show only that field
		if len(args) > 0 {
			value, ok := configField(cfg, strings.ToLower(args[0]))
			if !ok {
				fmt.Fprintf(os.Stderr, "Unknown field: %s\n", args[0])
				fmt.Fprintf(os.Stderr, "Available fields: %s\n", strings.Join(configFields, ", "))
				return exitError(exitUsage, "unknown config field: %s", args[0])
			}
			fmt.Println(value)
			return nil
		}

		// Display all configuration values
		for _, field := range configFields {
			value, _ := configField(cfg, field)
			fmt.Printf("%s: %s\n", field, value)
		}
		return nil
	},
}

// configField returns the display value of a configuration field
func configField(cfg *config.Config, field string) (string, bool) {
	switch field {
	case "configfile":
		return viper.ConfigFileUsed(), true
	case "target":
		return cfg.Target, true
	case "lang":
		return cfg.Lang, true
	case "labels_file", "labelsfile":
		return cfg.LabelsFile, true
	case "out_dir", "outdir":
		return cfg.OutDir, true
	case "log_level", "loglevel":
		return cfg.LogLevel, true
	case "image_placeholder", "imageplaceholder":
		return cfg.ImagePlaceholder, true
	case "watch_debounce_ms", "watchdebouncems":
		return fmt.Sprintf("%d", cfg.WatchDebounceMS), true
	default:
		return "", false
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
}
