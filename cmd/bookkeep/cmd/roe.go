package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

var roeHistory []string

var roeCmd = &cobra.Command{
	Use:   "roe",
	Short: "Track Record of Employment work periods",
}

var roeStartCmd = &cobra.Command{
	Use:   "start NAME DATE",
	Short: "Open a work period",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runROEDated(args, "start", (*payroll.Employee).StartROEWorkPeriod)
	},
}

var roeEndCmd = &cobra.Command{
	Use:   "end NAME DATE",
	Short: "Close the current work period",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runROEDated(args, "end", (*payroll.Employee).EndROEWorkPeriod)
	},
}

var roeReverseStartCmd = &cobra.Command{
	Use:   "reverse-start NAME",
	Short: "Undo the last work period start",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runROEReverse(args, "reverse-start", (*payroll.Employee).ReverseROEWorkPeriodStarted)
	},
}

var roeReverseEndCmd = &cobra.Command{
	Use:   "reverse-end NAME",
	Short: "Reopen the last ended work period",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runROEReverse(args, "reverse-end", (*payroll.Employee).ReverseROEWorkPeriodEnded)
	},
}

var roeInitCmd = &cobra.Command{
	Use:   "init NAME",
	Short: "Seed work periods that predate the book",
	Long: `Seed the work period history of an employee. Each --period is
START or START:END, oldest first. Only allowed once per employee.

Example:
  bookkeep roe init alice --period 2012-03-01:2013-08-30 --period 2014-01-06`,
	Args: cobra.ExactArgs(1),
	Run:  runROEInit,
}

func init() {
	roeInitCmd.Flags().StringArrayVar(&roeHistory, "period", nil, "Work period START[:END]")

	roeCmd.AddCommand(roeStartCmd)
	roeCmd.AddCommand(roeEndCmd)
	roeCmd.AddCommand(roeReverseStartCmd)
	roeCmd.AddCommand(roeReverseEndCmd)
	roeCmd.AddCommand(roeInitCmd)
}

func runROEDated(args []string, action string, op func(*payroll.Employee, time.Time) error) {
	s := openSession()
	defer s.Close()
	e := s.employee(args[0])
	date, err := parseDate(args[1])
	exitOnError(err, "invalid date")

	exitOnError(op(e, date), "failed to "+action+" work period")
	s.save()
	slog.Info("ROE work period updated", "employee", e.Name, "action", action, "date", args[1])
	fmt.Printf("%s: %s %s\n", e.Name, action, args[1])
}

func runROEReverse(args []string, action string, op func(*payroll.Employee) error) {
	s := openSession()
	defer s.Close()
	e := s.employee(args[0])

	exitOnError(op(e), "failed to "+action)
	s.save()
	slog.Info("ROE work period updated", "employee", e.Name, "action", action)
	fmt.Printf("%s: %s\n", e.Name, action)
}

func parseWorkPeriod(v string) (payroll.WorkPeriod, error) {
	startArg, endArg, hasEnd := strings.Cut(v, ":")
	start, err := parseDate(startArg)
	if err != nil {
		return payroll.WorkPeriod{}, err
	}
	w := payroll.WorkPeriod{Start: start}
	if hasEnd {
		end, err := parseDate(endArg)
		if err != nil {
			return payroll.WorkPeriod{}, err
		}
		w.End = &end
	}
	return w, nil
}

func runROEInit(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()
	e := s.employee(args[0])

	history := make([]payroll.WorkPeriod, 0, len(roeHistory))
	for _, v := range roeHistory {
		w, err := parseWorkPeriod(v)
		exitOnError(err, "invalid work period")
		history = append(history, w)
	}
	exitOnError(e.InitROEWorkPeriods(history...), "failed to initialize work periods")
	s.save()
	fmt.Printf("%s: %d work periods\n", e.Name, len(history))
}
