package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payrun"
)

var (
	paydaySerial int
	dryRun       bool
	deletePayday bool
)

var paydayCmd = &cobra.Command{
	Use:   "payday",
	Short: "Run, reverse and inspect paydays",
}

var paydayRunCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Post a payday from a pay-run file",
	Long: `Post a payday and record one transaction per paystub in the
configured backend.

This command:
1. Builds the payday from a YAML pay-run file
2. Calculates CPP, EI, income tax and vacation pay
3. Posts the payday, updating year-to-date totals
4. Records each paystub in the backend (file, null or ledgerapi)
5. Saves the book

If any paystub fails, every recorded transaction is removed and nothing is
saved.

Example:
  bookkeep payday run runs/2016-01-15.yaml
  bookkeep payday run runs/2016-01-15.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	Run:  runPaydayRun,
}

var paydayReverseCmd = &cobra.Command{
	Use:   "reverse DATE",
	Short: "Reverse a posted payday",
	Args:  cobra.ExactArgs(1),
	Run:   runPaydayReverse,
}

var paydayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List paydays",
	Run:   runPaydayList,
}

var paydayShowCmd = &cobra.Command{
	Use:   "show DATE",
	Short: "Show every paystub of a payday",
	Args:  cobra.ExactArgs(1),
	Run:   runPaydayShow,
}

func init() {
	paydayRunCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Calculate and print without posting")

	paydayReverseCmd.Flags().IntVar(&paydaySerial, "serial", 0, "Payday serial")
	paydayReverseCmd.Flags().BoolVar(&deletePayday, "delete", false, "Delete the payday after reversing it")
	paydayShowCmd.Flags().IntVar(&paydaySerial, "serial", 0, "Payday serial")

	paydayCmd.AddCommand(paydayRunCmd)
	paydayCmd.AddCommand(paydayReverseCmd)
	paydayCmd.AddCommand(paydayListCmd)
	paydayCmd.AddCommand(paydayShowCmd)
}

func runPaydayRun(cmd *cobra.Command, args []string) {
	slog.Info("Starting pay run", "file", args[0], "dry_run", dryRun)

	s := openSession()
	defer s.Close()

	in, err := payrun.LoadInput(args[0])
	exitOnError(err, "failed to load pay-run file")
	p, err := in.Build(s.book)
	exitOnError(err, "failed to build payday")

	if dryRun {
		printPayday(p)
		fmt.Println("Dry run: nothing posted")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := payrun.NewRunner(s.backend(), s.accounts(), slog.Default()).WithTransactionLog(s.txLog)
	result, err := runner.Run(ctx, p)
	exitOnError(err, "pay run failed")

	s.save()
	if err := s.txLog.SetMetadata("last_payday", result.Payday); err != nil {
		slog.Error("Failed to record last payday", "error", err)
	}

	printPayday(p)
	fmt.Printf("Posted %s: %d transactions\n", result.Payday, len(result.Transactions))
}

func runPaydayReverse(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()
	p := s.payday(args[0], paydaySerial)

	runner := payrun.NewRunner(s.backend(), s.accounts(), slog.Default()).WithTransactionLog(s.txLog)
	changes, err := runner.Reverse(context.Background(), p)
	exitOnError(err, "failed to reverse payday")

	if deletePayday {
		exitOnError(s.book.RemovePayday(p.Date, p.Serial), "failed to delete payday")
	}
	s.save()

	fmt.Printf("Reversed %s (%d year-to-date changes)\n", p.Key(), len(changes))
}

func runPaydayList(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PAYDAY\tPERIOD\tPOSTED\tPAYSTUBS")
	for _, p := range s.book.Paydays() {
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\n", p.Key(), p.Period().ID, p.Posted, len(p.Paystubs))
	}
	w.Flush()
}

func runPaydayShow(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()
	printPayday(s.payday(args[0], paydaySerial))
}

func printPayday(p *payroll.Payday) {
	fmt.Printf("\n=== Payday %s (rules %s) ===\n", p.Key(), p.Period().ID)
	if p.Fallback() {
		fmt.Println("warning: pay date is past the last rule period")
	}
	for _, stub := range p.Paystubs {
		fmt.Printf("\n%s", stub.EmployeeName)
		if stub.TransactionID != "" {
			fmt.Printf("  [%s]", stub.TransactionID)
		}
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
		for _, l := range stub.Lines {
			v, err := stub.Value(l)
			exitOnError(err, "failed to calculate "+l.Label())
			fmt.Fprintf(w, "  %s\t%s\t%s\t\n", l.Kind, l.Label(), money.Format(v))
		}
		w.Flush()
	}
	fmt.Println()
}
