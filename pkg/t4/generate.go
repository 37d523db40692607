package t4

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

var (
	ErrMissingEmployeeAttributes = errors.New("missing T4 employee attributes")
	ErrMissingFilerAttributes    = errors.New("missing T4 filer attributes")
	ErrNoSlips                   = errors.New("no posted paystubs in tax year")
)

const (
	schemaNamespace = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation  = "layout-topologie.xsd"
	originalReport  = "O"
)

// totals are raw, unrounded line sums for one employee or the whole return.
type totals struct {
	income      decimal.Decimal
	cpp         decimal.Decimal
	ei          decimal.Decimal
	tax         decimal.Decimal
	employerCPP decimal.Decimal
	employerEI  decimal.Decimal
	pensionable decimal.Decimal
	insurable   decimal.Decimal
}

func (t *totals) add(o totals) {
	t.income = t.income.Add(o.income)
	t.cpp = t.cpp.Add(o.cpp)
	t.ei = t.ei.Add(o.ei)
	t.tax = t.tax.Add(o.tax)
	t.employerCPP = t.employerCPP.Add(o.employerCPP)
	t.employerEI = t.employerEI.Add(o.employerEI)
}

// yearStubs returns the posted paystubs paid in [Jan 1, Dec 31] of year.
func yearStubs(e *payroll.Employee, year int) []*payroll.Paystub {
	var out []*payroll.Paystub
	for _, s := range e.PaystubsInYear(year) {
		if s.Posted() {
			out = append(out, s)
		}
	}
	return out
}

func stubTotals(s *payroll.Paystub) (totals, error) {
	var t totals
	var err error
	t.income = s.GrossIncome().Add(s.VacationPayouts())
	for _, f := range []struct {
		dst  *decimal.Decimal
		kind payroll.LineKind
		calc payroll.Calculation
	}{
		{&t.cpp, payroll.LineDeduction, payroll.CalcCPP},
		{&t.ei, payroll.LineDeduction, payroll.CalcEI},
		{&t.tax, payroll.LineDeduction, payroll.CalcIncomeTax},
		{&t.employerCPP, payroll.LineEmployerContribution, payroll.CalcCPP},
		{&t.employerEI, payroll.LineEmployerContribution, payroll.CalcEI},
	} {
		if *f.dst, err = s.Total(f.kind, f.calc); err != nil {
			return totals{}, fmt.Errorf("failed to total %s %s: %w", f.kind, f.calc, err)
		}
	}
	return t, nil
}

func hasCalc(s *payroll.Paystub, calc payroll.Calculation) bool {
	for _, l := range s.LinesOf(payroll.LineDeduction) {
		if l.Calc == calc {
			return true
		}
	}
	return false
}

// employeeTotals sums an employee's year. Pensionable and insurable
// earnings count gross income only on stubs subject to CPP or EI, capped
// at the year's maximums.
func employeeTotals(stubs []*payroll.Paystub) (totals, error) {
	var sum totals
	for _, s := range stubs {
		t, err := stubTotals(s)
		if err != nil {
			return totals{}, err
		}
		sum.add(t)
		if hasCalc(s, payroll.CalcCPP) {
			sum.pensionable = sum.pensionable.Add(s.GrossIncome())
		}
		if hasCalc(s, payroll.CalcEI) {
			sum.insurable = sum.insurable.Add(s.GrossIncome())
		}
	}
	if len(stubs) > 0 {
		p := stubs[len(stubs)-1].Period()
		sum.pensionable = money.Min(sum.pensionable, p.CPP.MaxPensionableEarnings)
		sum.insurable = money.Min(sum.insurable, p.EI.MaxInsurableEarnings)
	}
	return sum, nil
}

// amount formats a rounded sum, or "" when it rounds to zero.
func amount(d decimal.Decimal) string {
	r := money.RoundTwoPlaceUsingThirdDigit(d)
	if r.IsZero() {
		return ""
	}
	return money.Format(r)
}

func total(d decimal.Decimal) string {
	return money.Format(money.RoundTwoPlaceUsingThirdDigit(d))
}

func exemptCode(exempt bool) string {
	if exempt {
		return "1"
	}
	return "0"
}

func sin(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

func validateFiler(summary SummaryAttributes, submission SubmissionAttributes) error {
	var missing []string
	if summary.BusinessNumber == "" {
		missing = append(missing, "summary.business_number")
	}
	if summary.EmployerName == "" {
		missing = append(missing, "summary.employer_name")
	}
	if submission.ReferenceID == "" {
		missing = append(missing, "submission.reference_id")
	}
	if submission.TransmitterNumber == "" {
		missing = append(missing, "submission.transmitter_number")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFilerAttributes, strings.Join(missing, ", "))
	}
	return nil
}

// Generate builds the T4 return for a tax year. Every employee with a
// posted paystub in the year gets a slip, which requires an entry in extra.
// Summary totals are re-summed from every employee's raw line values and
// rounded once, so they may differ from the sum of the rounded slips.
func Generate(year int, employees []*payroll.Employee, extra map[string]EmployeeAttributes, summary SummaryAttributes, submission SubmissionAttributes) (*Submission, error) {
	if err := validateFiler(summary, submission); err != nil {
		return nil, err
	}

	sorted := make([]*payroll.Employee, len(employees))
	copy(sorted, employees)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var slips []Slip
	var grand totals
	for _, e := range sorted {
		stubs := yearStubs(e, year)
		if len(stubs) == 0 {
			continue
		}
		attrs, ok := extra[e.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingEmployeeAttributes, e.Name)
		}
		if missing := attrs.missing(); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s: %s", ErrMissingEmployeeAttributes, e.Name, strings.Join(missing, ", "))
		}

		t, err := employeeTotals(stubs)
		if err != nil {
			return nil, fmt.Errorf("failed to total %s: %w", e.Name, err)
		}
		grand.add(t)

		slips = append(slips, Slip{
			Name: PersonName{
				Surname:   attrs.Surname,
				GivenName: attrs.GivenName,
				Initial:   attrs.Initial,
			},
			Address:              attrs.Address.element(),
			SIN:                  sin(attrs.SIN),
			EmployeeNumber:       attrs.EmployeeNumber,
			BusinessNumber:       summary.BusinessNumber,
			CPPExempt:            exemptCode(attrs.CPPExempt),
			EIExempt:             exemptCode(attrs.EIExempt),
			ReportType:           originalReport,
			ProvinceOfEmployment: attrs.ProvinceOfEmployment,
			Amounts: SlipAmounts{
				EmploymentIncome:    total(t.income),
				CPPContributions:    amount(t.cpp),
				EIPremiums:          amount(t.ei),
				IncomeTax:           amount(t.tax),
				InsurableEarnings:   amount(t.insurable),
				PensionableEarnings: amount(t.pensionable),
			},
		})
	}
	if len(slips) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoSlips, year)
	}

	contact := Contact{
		Name:     summary.ContactName,
		AreaCode: summary.ContactAreaCode,
		Phone:    summary.ContactPhone,
	}
	transmitterType := submission.TransmitterType
	if transmitterType == "" {
		transmitterType = "1"
	}
	language := submission.Language
	if language == "" {
		language = "E"
	}
	transmitterName := submission.TransmitterName
	if transmitterName == "" {
		transmitterName = summary.EmployerName
	}

	return &Submission{
		XSI:            schemaNamespace,
		SchemaLocation: schemaLocation,
		T619: T619{
			ReferenceID:       submission.ReferenceID,
			ReportType:        originalReport,
			TransmitterNumber: submission.TransmitterNumber,
			TransmitterType:   transmitterType,
			SummaryCount:      1,
			Language:          language,
			Name:              OrgName{Line1: transmitterName},
			Address:           submission.Address.element(),
			Contact: Contact{
				Name:     submission.ContactName,
				AreaCode: submission.ContactAreaCode,
				Phone:    submission.ContactPhone,
				Email:    submission.ContactEmail,
			},
		},
		Return: Return{T4: T4{
			Slips: slips,
			Summary: Summary{
				BusinessNumber: summary.BusinessNumber,
				EmployerName:   OrgName{Line1: summary.EmployerName},
				Address:        summary.Address.element(),
				Contact:        contact,
				TaxYear:        year,
				SlipCount:      len(slips),
				ReportType:     originalReport,
				Totals: SummaryTotals{
					EmploymentIncome: total(grand.income),
					CPPContributions: total(grand.cpp),
					EIPremiums:       total(grand.ei),
					IncomeTax:        total(grand.tax),
					EmployerCPP:      total(grand.employerCPP),
					EmployerEI:       total(grand.employerEI),
				},
			},
		}},
	}, nil
}

// Write encodes a submission as an indented XML document.
func Write(w io.Writer, sub *Submission) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(sub); err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush XML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
