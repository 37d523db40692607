package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/backend"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/config"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the flat-file ledger",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show MONTH",
	Short: "Print the ledger file of a month",
	Long: `Print the Beancount file the file backend keeps for a month.

Example:
  bookkeep ledger show 2016-01`,
	Args: cobra.ExactArgs(1),
	Run:  runLedgerShow,
}

func init() {
	ledgerCmd.AddCommand(ledgerShowCmd)
}

func runLedgerShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")
	exitOnError(cfg.Validate([]string{"book", "root"}), "invalid configuration")

	content, err := backend.NewFile(cfg.Paths()).ReadMonthFile(args[0])
	exitOnError(err, "failed to read ledger")
	if content == "" {
		slog.Info("No ledger file for month", "month", args[0])
		fmt.Printf("No entries for %s\n", args[0])
		return
	}
	fmt.Print(content)
}
