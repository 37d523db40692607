package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

const (
	PaydaySheet   = "By payday"
	EmployeeSheet = "By employee"
	SummarySheet  = "Summary"
)

// WriteXLSX writes the payday block, the employee block and the payday
// summary to separate sheets of a workbook at path.
func WriteXLSX(path string, book *payroll.Book) error {
	rows, err := Rows(book)
	if err != nil {
		return err
	}
	summaries, err := Summaries(book)
	if err != nil {
		return err
	}
	header := Header(rows)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PaydaySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(EmployeeSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeSheet(f, PaydaySheet, header, rows); err != nil {
		return err
	}
	if err := writeSheet(f, EmployeeSheet, header, ByEmployee(rows)); err != nil {
		return err
	}

	summaryHeader := []interface{}{"date", "serial", "rule_period", "posted", "paystubs", "gross", "deductions", "employer_contributions", "net_pay"}
	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	for i, s := range summaries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{s.Date, s.Serial, s.Period, s.Posted, s.Paystubs, s.Gross, s.Deductions, s.EmployerContributions, s.NetPay}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows []Row) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		record := r.Record(header)
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("failed to write %s row: %w", sheet, err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze %s header: %w", sheet, err)
	}
	return nil
}
