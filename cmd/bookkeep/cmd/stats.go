package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display book statistics",
	Long: `Display statistics about the book.

Shows:
- Number of employees and paydays
- Number of posted paydays
- Number of recorded backend transactions
- Last pay run and last recorded timestamp
- Database schema version

Example:
  bookkeep stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	slog.Info("Loading configuration")

	s := openSession()
	defer s.Close()

	stats, err := s.txLog.GetStats()
	exitOnError(err, "failed to get statistics")
	lastPayday, err := s.txLog.GetMetadata("last_payday")
	exitOnError(err, "failed to get last payday")
	version, err := s.conn.SchemaVersion()
	exitOnError(err, "failed to read schema version")

	fmt.Println("\n=== Book Statistics ===")
	fmt.Printf("Employees:            %d\n", stats.Employees)
	fmt.Printf("Paydays:              %d\n", stats.Paydays)
	fmt.Printf("Posted paydays:       %d\n", stats.PostedPaydays)
	fmt.Printf("Transactions:         %d\n", stats.Transactions)

	if lastPayday != "" {
		fmt.Printf("Last pay run:         %s\n", lastPayday)
	} else {
		fmt.Printf("Last pay run:         (never)\n")
	}
	if stats.LastRecorded.Valid {
		fmt.Printf("Last recorded:        %s\n", stats.LastRecorded.String)
	}

	fmt.Printf("Schema version:       %d\n", version)

	fmt.Println()

	slog.Info("Statistics displayed successfully")
}
