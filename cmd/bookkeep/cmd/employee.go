package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

var (
	payPeriods        int
	federalCredits    []string
	provincialCredits []string
	vacationRate      string
	showYear          int
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Manage employees",
}

var employeeAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add an employee",
	Long: `Add an employee with TD1 tax credit claims.

Each credit is either "basic" (the basic personal amount of the rule period
in force) or a dollar amount. Claim "0" to claim nothing.

Example:
  bookkeep employee add alice --periods 26
  bookkeep employee add bob --federal-credit basic --federal-credit 2000 --vacation-rate 0.04`,
	Args: cobra.ExactArgs(1),
	Run:  runEmployeeAdd,
}

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	Run:   runEmployeeList,
}

var employeeShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show an employee's settings, year-to-date totals and ROE work periods",
	Args:  cobra.ExactArgs(1),
	Run:   runEmployeeShow,
}

func init() {
	employeeAddCmd.Flags().IntVar(&payPeriods, "periods", 26, "Pay periods per year")
	employeeAddCmd.Flags().StringArrayVar(&federalCredits, "federal-credit", []string{"basic"}, "Federal TD1 credit (basic or an amount)")
	employeeAddCmd.Flags().StringArrayVar(&provincialCredits, "provincial-credit", []string{"basic"}, "Provincial TD1 credit (basic or an amount)")
	employeeAddCmd.Flags().StringVar(&vacationRate, "vacation-rate", "0", "Vacation pay rate (e.g. 0.04)")

	employeeShowCmd.Flags().IntVar(&showYear, "year", time.Now().Year(), "Year of the year-to-date totals")

	employeeCmd.AddCommand(employeeAddCmd)
	employeeCmd.AddCommand(employeeListCmd)
	employeeCmd.AddCommand(employeeShowCmd)
}

func parseCredits(values []string) ([]payroll.TaxCredit, error) {
	credits := make([]payroll.TaxCredit, 0, len(values))
	for _, v := range values {
		if v == "basic" {
			credits = append(credits, payroll.BasicPersonal())
			continue
		}
		amount, err := money.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid tax credit %q: %w", v, err)
		}
		credits = append(credits, payroll.TaxCredit{Kind: payroll.CreditAmount, Amount: amount})
	}
	return credits, nil
}

func runEmployeeAdd(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()

	e := payroll.NewEmployee(args[0], payPeriods)
	var err error
	e.FederalCredits, err = parseCredits(federalCredits)
	exitOnError(err, "invalid federal credits")
	e.ProvincialCredits, err = parseCredits(provincialCredits)
	exitOnError(err, "invalid provincial credits")
	e.VacationRate, err = money.Parse(vacationRate)
	exitOnError(err, "invalid vacation rate")

	exitOnError(e.Validate(), "invalid employee")
	exitOnError(s.book.AddEmployee(e), "failed to add employee")
	s.save()

	slog.Info("Employee added", "employee", e.Name)
	fmt.Printf("Added %s\n", e.Name)
}

func runEmployeeList(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPERIODS\tVACATION\tPAYSTUBS")
	for _, e := range s.book.Employees() {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", e.Name, e.PayPeriodsPerYear, e.VacationRate, len(e.Paystubs()))
	}
	w.Flush()
}

func describeCredits(credits []payroll.TaxCredit) string {
	out := ""
	for i, c := range credits {
		if i > 0 {
			out += ", "
		}
		if c.Kind == payroll.CreditBasicPersonal {
			out += "basic"
		} else {
			out += money.Format(c.Amount)
		}
	}
	return out
}

func runEmployeeShow(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()
	e := s.employee(args[0])

	fmt.Printf("Name:               %s\n", e.Name)
	fmt.Printf("Pay periods/year:   %d\n", e.PayPeriodsPerYear)
	fmt.Printf("Federal credits:    %s\n", describeCredits(e.FederalCredits))
	fmt.Printf("Provincial credits: %s\n", describeCredits(e.ProvincialCredits))
	fmt.Printf("Vacation rate:      %s\n", e.VacationRate)

	fmt.Printf("\n=== Year to date %d ===\n", showYear)
	for _, key := range []payroll.YTDKey{
		payroll.YTDGross,
		payroll.YTDCPP,
		payroll.YTDCPPEmployer,
		payroll.YTDEI,
		payroll.YTDEIEmployer,
		payroll.YTDIncomeTax,
		payroll.YTDVacationAccrued,
		payroll.YTDVacationPaid,
		payroll.YTDNetPay,
	} {
		fmt.Printf("%-18s %12s\n", key, money.Format(e.YTDValue(showYear, key)))
	}

	fmt.Println("\n=== ROE work periods ===")
	periods := e.ROEWorkPeriods()
	if len(periods) == 0 {
		fmt.Println("(none)")
	}
	for _, w := range periods {
		end := "current"
		if w.End != nil {
			end = w.End.Format("2006-01-02")
		}
		fmt.Printf("%s .. %s\n", w.Start.Format("2006-01-02"), end)
	}
}
