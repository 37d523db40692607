package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/t4"
)

var (
	taxYear        int
	attributesFile string
	outputPath     string
)

var t4Cmd = &cobra.Command{
	Use:   "t4",
	Short: "Year-end T4 filing",
}

var t4GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate T4 slips and summary as T619 XML",
	Long: `Generate the T4 return for a tax year from posted paystubs.

The attributes file supplies what the book does not hold: the transmitter,
the employer's business number and address, and each employee's legal
name, SIN and province of employment. An employee without attributes is an
error; nothing is guessed.

Example:
  bookkeep t4 generate --year 2016 --attributes t4-2016.yaml`,
	Run: runT4Generate,
}

func init() {
	t4GenerateCmd.Flags().IntVar(&taxYear, "year", time.Now().Year()-1, "Tax year")
	t4GenerateCmd.Flags().StringVar(&attributesFile, "attributes", "", "T4 attributes YAML file (required)")
	t4GenerateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default exports/t4-YEAR.xml)")
	t4GenerateCmd.MarkFlagRequired("attributes")

	t4Cmd.AddCommand(t4GenerateCmd)
}

func runT4Generate(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()

	attrs, err := t4.LoadAttributes(attributesFile)
	exitOnError(err, "failed to load T4 attributes")

	sub, err := t4.Generate(taxYear, s.book.Employees(), attrs.Employees, attrs.Summary, attrs.Submission)
	exitOnError(err, "failed to generate T4")

	path := outputPath
	if path == "" {
		path = s.paths.ExportPath(fmt.Sprintf("t4-%d.xml", taxYear))
	}
	exitOnError(s.paths.EnsureParentDir(path), "failed to create output directory")

	f, err := os.Create(path)
	exitOnError(err, "failed to create output file")
	defer f.Close()
	exitOnError(t4.Write(f, sub), "failed to write T4")

	slog.Info("T4 generated", "year", taxYear, "slips", sub.Return.T4.Summary.SlipCount, "path", path)
	fmt.Printf("Wrote %d slips to %s\n", sub.Return.T4.Summary.SlipCount, path)
}
