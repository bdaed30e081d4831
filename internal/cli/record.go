package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kiklet/internal/rec"
	"kiklet/internal/store"
)

var recordDur time.Duration

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record from the default microphone until interrupted",
	Long: `Record captures the default input device into a new WAV file in the
recordings directory. Recording stops on Ctrl+C, SIGTERM, or after --dur.
The finished recording is added to the index and printed as JSON.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		if cfg.PurgeOnStart && cfg.RetentionDays > 0 {
			deleted, kept, err := idx.PurgeOlderThan(cfg.RecordingsDir, cfg.RetentionDays)
			if err != nil {
				slog.Warn("startup purge failed", "error", err)
			} else if deleted > 0 {
				slog.Info("startup purge", "deleted", deleted, "kept", kept)
			}
		}

		session, err := rec.Start(cfg.RecordingsDir)
		if err != nil {
			return fmt.Errorf("start recording: %w", err)
		}
		slog.Info("recording", "file", session.Filename(), "dir", cfg.RecordingsDir)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		if recordDur > 0 {
			select {
			case <-sigCh:
			case <-time.After(recordDur):
			}
		} else {
			<-sigCh
		}

		fin, err := session.Stop()
		if err != nil {
			return fmt.Errorf("stop recording: %w", err)
		}
		slog.Info("recording finished",
			"file", fin.Filename,
			"duration_sec", fin.DurationSec,
			"size_bytes", fin.SizeBytes)

		entry := store.Entry{
			Filename:    fin.Filename,
			CreatedAt:   fin.CreatedAt,
			DurationSec: fin.DurationSec,
			SizeBytes:   fin.SizeBytes,
		}
		if err := idx.Add(entry); err != nil {
			return fmt.Errorf("index recording: %w", err)
		}

		out, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	recordCmd.Flags().DurationVar(&recordDur, "dur", 0, "record duration (e.g. 5s, 2m); 0 records until interrupted")
}
