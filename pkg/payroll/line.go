package payroll

import (
	"slices"

	"github.com/shopspring/decimal"
)

// LineKind discriminates the paystub line variants.
type LineKind string

const (
	LineIncome               LineKind = "income"
	LineWage                 LineKind = "wage"
	LineOvertime             LineKind = "overtime"
	LineDeduction            LineKind = "deduction"
	LineEmployerContribution LineKind = "employer_contribution"
	LineNetPay               LineKind = "net_pay"
	LineVacationPay          LineKind = "vacation_pay"
	LineVacationPayout       LineKind = "vacation_payout"
)

// IsIncome reports whether lines of this kind count toward gross income.
func (k LineKind) IsIncome() bool {
	return k == LineIncome || k == LineWage || k == LineOvertime
}

// Calculation names the formula behind a calculated line.
type Calculation string

const (
	CalcNone        Calculation = ""
	CalcCPP         Calculation = "cpp"
	CalcEI          Calculation = "ei"
	CalcIncomeTax   Calculation = "income_tax"
	CalcVacationPay Calculation = "vacation_pay"
)

// Line is one entry on a paystub.
//
// Simple lines carry a fixed Amount. Wage and overtime lines derive their
// amount from Hours, Rate and Multiplier. Lines with a Calc are formulas
// evaluated against the owning paystub until the payday is posted, at which
// point every line's value is frozen into Amount.
type Line struct {
	Kind        LineKind        `json:"kind"`
	Calc        Calculation     `json:"calc,omitempty"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
	Multiplier  decimal.Decimal `json:"multiplier"`
	Paid        bool            `json:"paid,omitempty"`
	Frozen      bool            `json:"frozen,omitempty"`
}

// Calculated reports whether the line is a formula rather than a fixed number.
func (l Line) Calculated() bool {
	return l.Calc != CalcNone || l.Kind == LineNetPay
}

// HasTag reports whether the line carries tag.
func (l Line) HasTag(tag string) bool {
	return slices.Contains(l.Tags, tag)
}

// Label is the name the line is reported under in exports.
func (l Line) Label() string {
	if l.Description != "" {
		return l.Description
	}
	if l.Calc != CalcNone {
		if l.Kind == LineEmployerContribution {
			return string(l.Calc) + " employer"
		}
		return string(l.Calc)
	}
	return string(l.Kind)
}

// Income returns a fixed income line.
func Income(amount decimal.Decimal, description string, tags ...string) Line {
	return Line{Kind: LineIncome, Amount: amount, Description: description, Tags: tags}
}

// Wage returns an hourly wage line.
func Wage(hours, rate decimal.Decimal, description string, tags ...string) Line {
	return Line{Kind: LineWage, Hours: hours, Rate: rate, Multiplier: decimal.NewFromInt(1), Description: description, Tags: tags}
}

// Overtime returns an hourly line paid at rate × multiplier.
func Overtime(hours, rate, multiplier decimal.Decimal, description string, tags ...string) Line {
	return Line{Kind: LineOvertime, Hours: hours, Rate: rate, Multiplier: multiplier, Description: description, Tags: tags}
}

// Deduction returns a fixed deduction line.
func Deduction(amount decimal.Decimal, description string, tags ...string) Line {
	return Line{Kind: LineDeduction, Amount: amount, Description: description, Tags: tags}
}

// EmployerContribution returns a fixed employer contribution line.
func EmployerContribution(amount decimal.Decimal, description string, tags ...string) Line {
	return Line{Kind: LineEmployerContribution, Amount: amount, Description: description, Tags: tags}
}

// VacationPayout returns a payout from accrued vacation pay.
// Only paid payouts reach net pay.
func VacationPayout(amount decimal.Decimal, paid bool, description string) Line {
	return Line{Kind: LineVacationPayout, Amount: amount, Paid: paid, Description: description}
}

// CPPDeductionLine returns the calculated employee CPP contribution.
func CPPDeductionLine() Line {
	return Line{Kind: LineDeduction, Calc: CalcCPP, Description: "CPP"}
}

// EIDeductionLine returns the calculated employee EI premium.
func EIDeductionLine() Line {
	return Line{Kind: LineDeduction, Calc: CalcEI, Description: "EI"}
}

// IncomeTaxLine returns the calculated combined federal and provincial tax.
func IncomeTaxLine() Line {
	return Line{Kind: LineDeduction, Calc: CalcIncomeTax, Description: "Income tax"}
}

// CPPEmployerLine returns the calculated employer CPP contribution.
func CPPEmployerLine() Line {
	return Line{Kind: LineEmployerContribution, Calc: CalcCPP, Description: "CPP employer"}
}

// EIEmployerLine returns the calculated employer EI premium.
func EIEmployerLine() Line {
	return Line{Kind: LineEmployerContribution, Calc: CalcEI, Description: "EI employer"}
}

// VacationPayLine returns the calculated vacation pay accrual.
func VacationPayLine() Line {
	return Line{Kind: LineVacationPay, Calc: CalcVacationPay, Description: "Vacation pay"}
}

// NetPayLine returns a summary line whose value is the paystub's net pay.
func NetPayLine() Line {
	return Line{Kind: LineNetPay, Description: "Net pay"}
}
