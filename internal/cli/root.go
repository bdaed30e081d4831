// Package cli implements the kiklet command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"kiklet/internal/settings"
	"kiklet/internal/store"
)

var (
	cfg          settings.Settings
	cfgFile      string
	verboseLevel int
)

var rootCmd = &cobra.Command{
	Use:   "kiklet",
	Short: "Microphone recorder with a local recordings index",
	Long: `kiklet records microphone audio to timestamped WAV files and keeps
a local index of finished recordings. Recordings are mono 16-bit PCM at
the capture device's native sample rate.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verboseLevel)

		if cfgFile == "" {
			cfgFile = settings.DefaultPath()
		}
		var err error
		cfg, err = settings.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is the per-user settings path)")
	rootCmd.PersistentFlags().IntVarP(&verboseLevel, "verbose", "v", 0, "verbose level: 0=info, 1=debug")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(rebuildCmd)
}

func setupLogging(level int) {
	lvl := slog.LevelInfo
	if level >= 1 {
		lvl = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

func openIndex() (*store.Store, error) {
	s, err := store.Open(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("open recordings index: %w", err)
	}
	return s, nil
}
