package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/paystubpdf"
)

var paystubCmd = &cobra.Command{
	Use:   "paystub",
	Short: "Printable paystubs",
}

var paystubPDFCmd = &cobra.Command{
	Use:   "pdf DATE EMPLOYEE",
	Short: "Render a paystub as PDF",
	Long: `Render one employee's paystub for a payday as a PDF.

Example:
  bookkeep paystub pdf 2016-01-15 alice
  bookkeep paystub pdf 2016-01-15 alice --serial 1 -o alice.pdf`,
	Args: cobra.ExactArgs(2),
	Run:  runPaystubPDF,
}

func init() {
	paystubPDFCmd.Flags().IntVar(&paydaySerial, "serial", 0, "Payday serial")
	paystubPDFCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default exports/paystubs/YEAR/...)")
	paystubCmd.AddCommand(paystubPDFCmd)
}

func runPaystubPDF(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()
	p := s.payday(args[0], paydaySerial)

	stub, ok := p.Paystub(args[1])
	if !ok {
		exitOnError(fmt.Errorf("no paystub for %s on %s", args[1], p.Key()), "failed to find paystub")
	}

	path := outputPath
	if path == "" {
		path = s.paths.PaystubPath(p.Date, p.Serial, stub.EmployeeName)
	}
	exitOnError(s.paths.EnsureParentDir(path), "failed to create output directory")
	exitOnError(paystubpdf.Render(stub, path), "failed to render paystub")

	slog.Info("Paystub rendered", "payday", p.Key().String(), "employee", stub.EmployeeName, "path", path)
	fmt.Printf("Wrote %s\n", path)
}
