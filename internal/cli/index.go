package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	listJSON   bool
	purgeDays  int
	clearForce bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed recordings, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		entries, err := idx.List()
		if err != nil {
			return err
		}
		if listJSON {
			out, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		if len(entries) == 0 {
			fmt.Println("no recordings")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %s  %7.1fs  %9d bytes\n", e.Filename, e.CreatedAt, e.DurationSec, e.SizeBytes)
		}
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete recordings older than the retention window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		days := purgeDays
		if days == 0 {
			days = cfg.RetentionDays
		}
		if days <= 0 {
			return fmt.Errorf("nothing to purge: retention is %d days", days)
		}
		deleted, kept, err := idx.PurgeOlderThan(cfg.RecordingsDir, days)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d, kept %d\n", deleted, kept)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every indexed recording and its file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce {
			return fmt.Errorf("clear deletes every recording; re-run with --force")
		}
		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		report, err := idx.ClearAll(cfg.RecordingsDir)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d\n", report.Deleted)
		for _, name := range report.FailedDeletes {
			fmt.Fprintf(os.Stderr, "could not delete %s\n", name)
		}
		return nil
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index by scanning the recordings directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		entries, err := idx.Rebuild(cfg.RecordingsDir)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d recording(s)\n", len(entries))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print entries as JSON")
	purgeCmd.Flags().IntVar(&purgeDays, "days", 0, "override the retention window in days")
	clearCmd.Flags().BoolVar(&clearForce, "force", false, "confirm deleting everything")
}
