// Package paystubpdf renders a printable paystub.
package paystubpdf

import (
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

var ErrDetachedPaystub = errors.New("paystub has no employee or payday")

var ytdRows = []struct {
	label string
	key   payroll.YTDKey
}{
	{"Gross", payroll.YTDGross},
	{"CPP", payroll.YTDCPP},
	{"EI", payroll.YTDEI},
	{"Income tax", payroll.YTDIncomeTax},
	{"Vacation accrued", payroll.YTDVacationAccrued},
	{"Net pay", payroll.YTDNetPay},
}

// Render writes a one-page PDF paystub to path.
func Render(stub *payroll.Paystub, path string) error {
	emp := stub.Employee()
	if emp == nil || stub.Payday() == nil {
		return ErrDetachedPaystub
	}

	deductions, err := stub.Deductions()
	if err != nil {
		return fmt.Errorf("failed to total deductions: %w", err)
	}
	net, err := stub.NetPay()
	if err != nil {
		return fmt.Errorf("failed to total net pay: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Pay Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", emp.Name))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Pay date: %s", stub.Date().Format("2006-01-02")))
	pdf.Ln(6)
	status := "draft"
	if stub.Posted() {
		status = "posted"
	}
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(110, 7, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Hours", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range stub.Lines {
		if l.Kind == payroll.LineNetPay {
			continue
		}
		v, err := stub.Value(l)
		if err != nil {
			return fmt.Errorf("failed to value %s: %w", l.Label(), err)
		}
		hours := ""
		if l.Kind == payroll.LineWage || l.Kind == payroll.LineOvertime {
			hours = l.Hours.String()
		}
		pdf.CellFormat(110, 6, l.Label(), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, hours, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money.Format(v), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	for _, row := range []struct {
		label string
		value decimal.Decimal
	}{
		{"Gross", stub.GrossIncome()},
		{"Deductions", deductions},
		{"Net pay", net},
	} {
		pdf.CellFormat(140, 7, row.label, "T", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, money.Format(row.value), "T", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.Cell(0, 7, fmt.Sprintf("Year to date %d", stub.Year()))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range ytdRows {
		pdf.CellFormat(140, 6, row.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, money.Format(emp.YTDValue(stub.Year(), row.key)), "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
