package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/export"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export paystubs as CSV or a spreadsheet",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export every paystub, by payday then by employee",
	Run: func(cmd *cobra.Command, args []string) {
		runExportWriter("paystubs.csv", export.WriteCSV)
	},
}

var exportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Export payday totals",
	Run: func(cmd *cobra.Command, args []string) {
		runExportWriter("paydays.csv", export.WriteSummaryCSV)
	},
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Export paystubs and payday totals as a workbook",
	Run:   runExportXLSX,
}

func init() {
	for _, c := range []*cobra.Command{exportCSVCmd, exportSummaryCmd, exportXLSXCmd} {
		c.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (- for stdout where supported)")
		exportCmd.AddCommand(c)
	}
}

func runExportWriter(defaultName string, write func(io.Writer, *payroll.Book) error) {
	s := openSession()
	defer s.Close()

	if outputPath == "-" {
		exitOnError(write(os.Stdout, s.book), "failed to export")
		return
	}

	path := outputPath
	if path == "" {
		path = s.paths.ExportPath(defaultName)
	}
	exitOnError(s.paths.EnsureParentDir(path), "failed to create output directory")
	f, err := os.Create(path)
	exitOnError(err, "failed to create output file")
	defer f.Close()

	exitOnError(write(f, s.book), "failed to export")
	slog.Info("Export written", "path", path)
	fmt.Printf("Wrote %s\n", path)
}

func runExportXLSX(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()

	path := outputPath
	if path == "" || path == "-" {
		path = s.paths.ExportPath("payroll.xlsx")
	}
	exitOnError(s.paths.EnsureParentDir(path), "failed to create output directory")
	exitOnError(export.WriteXLSX(path, s.book), "failed to export")
	slog.Info("Export written", "path", path)
	fmt.Printf("Wrote %s\n", path)
}
