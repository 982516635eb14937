package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/longkey1/gptmd/internal/gptmd/watch"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <input> [output]",
	Short: "Re-convert an export file whenever it changes",
	Long: `Convert an export file, then keep watching it and convert again after every change.

Takes the same flags as convert. Stop with Ctrl+C.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		job := resolveJob(args, cfg)
		converter, err := newConverter(cfg, log)
		if err != nil {
			return err
		}

		if err := job.run(converter, log); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		debounce := time.Duration(cfg.WatchDebounceMS) * time.Millisecond
		return watch.File(ctx, job.input, debounce, log, func() error {
			return job.run(converter, log)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&conversationRef, "conversation", "c", "", "conversation to convert: ID, ID prefix or \"latest\"")
	watchCmd.Flags().StringVar(&outDir, "out-dir", "", "output directory when converting every conversation of an export")
}
