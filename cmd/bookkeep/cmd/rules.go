package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/config"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

var rulesDate string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the statutory rate tables",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List rule periods, or show the one in force on a date",
	Long: `Without --date, list every rule period. With --date, show the
period a payday on that date resolves to.

Example:
  bookkeep rules show
  bookkeep rules show --date 2016-03-15`,
	Run: runRulesShow,
}

func init() {
	rulesShowCmd.Flags().StringVar(&rulesDate, "date", "", "Pay date (YYYY-MM-DD)")
	rulesCmd.AddCommand(rulesShowCmd)
}

func runRulesShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")
	table, err := loadRules(cfg)
	exitOnError(err, "failed to load rule table")

	if rulesDate == "" {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PERIOD\tEFFECTIVE\tCPP RATE\tEI RATE\tFEDERAL BPA\tPROVINCIAL BPA")
		for _, p := range table.Periods() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Start().Format("2006-01"),
				p.CPP.Rate, p.EI.Rate,
				money.Format(p.Federal.BasicPersonalAmount), money.Format(p.Provincial.BasicPersonalAmount))
		}
		w.Flush()
		return
	}

	date, err := parseDate(rulesDate)
	exitOnError(err, "invalid date")
	res := table.Resolve(date)
	printPeriod(res.Period)
	if res.Fallback {
		fmt.Printf("(fallback: %s)\n", res.Reason)
	}
}

func printPeriod(p rules.Period) {
	fmt.Printf("\n=== Rule period %s ===\n", p.ID)
	fmt.Printf("CPP rate %s, basic exemption %s, max pensionable %s, max contribution %s\n",
		p.CPP.Rate, money.Format(p.CPP.BasicExemption), money.Format(p.CPP.MaxPensionableEarnings), money.Format(p.CPP.MaxContribution))
	fmt.Printf("EI rate %s, max insurable %s, max contribution %s, employer x%s\n",
		p.EI.Rate, money.Format(p.EI.MaxInsurableEarnings), money.Format(p.EI.MaxContribution), p.EI.EmployerMultiplier)
	for _, t := range []rules.TaxTable{p.Federal, p.Provincial} {
		fmt.Printf("\n%s: basic personal %s\n", t.Jurisdiction, money.Format(t.BasicPersonalAmount))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "FROM\tRATE\tK\t")
		for _, b := range t.Brackets {
			fmt.Fprintf(w, "%s\t%s\t%s\t\n", money.Format(b.LowerBound), b.Rate, money.Format(b.Constant))
		}
		w.Flush()
	}
}
