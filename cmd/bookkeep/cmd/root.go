// Package cmd provides CLI commands for bookkeep.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bookkeep",
	Short: "Canadian payroll for a small business book",
	Long: `bookkeep computes Canadian payroll (CPP, EI and federal plus
provincial income tax), posts paydays to an accounting ledger and
produces year-end T4 filings.

It supports:
- Employees with TD1 tax credits, vacation pay and ROE work periods
- Pay runs from YAML files, recorded in Beancount files or an external ledger
- Reversing a posted payday
- T4/T619 XML, CSV and spreadsheet exports, printable paystubs

Example:
  bookkeep employee add alice --periods 26
  bookkeep payday run 2016-01-15.yaml
  bookkeep t4 generate --year 2016 --attributes t4.yaml
  bookkeep stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug || os.Getenv("DEBUG") == "true" {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(employeeCmd)
	rootCmd.AddCommand(roeCmd)
	rootCmd.AddCommand(paydayCmd)
	rootCmd.AddCommand(t4Cmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(paystubCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(statsCmd)
}

func getConfigFile() string {
	return cfgFile
}

// exitOnError logs and prints err, then exits.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
