package t4

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

func testAttributes() (map[string]EmployeeAttributes, SummaryAttributes, SubmissionAttributes) {
	extra := map[string]EmployeeAttributes{
		"alice": {Surname: "Smith", GivenName: "Alice", SIN: "046 454 286", ProvinceOfEmployment: "MB"},
		"bob":   {Surname: "Jones", GivenName: "Bob", Initial: "R", SIN: "046-454-294", ProvinceOfEmployment: "MB"},
		"carol": {Surname: "Lee", GivenName: "Carol", SIN: "046454302", ProvinceOfEmployment: "MB", CPPExempt: true, EIExempt: true},
	}
	summary := SummaryAttributes{
		BusinessNumber:  "123456789RP0001",
		EmployerName:    "Prairie Bookkeeping",
		Address:         Address{Line1: "1 Main St", City: "Winnipeg", Province: "MB", Country: "CAN", PostalCode: "R3C 1A1"},
		ContactName:     "Alice Smith",
		ContactAreaCode: "204",
		ContactPhone:    "555-0100",
	}
	submission := SubmissionAttributes{ReferenceID: "T4-2016", TransmitterNumber: "MM555555"}
	return extra, summary, submission
}

func post(t *testing.T, b *payroll.Book, date time.Time, stubs map[string]string, withDeductions bool) {
	t.Helper()
	p, err := b.NewPayday(date, 0)
	require.NoError(t, err)
	for name, gross := range stubs {
		e, err := b.Employee(name)
		require.NoError(t, err)
		s := p.NewPaystub(e)
		s.AddLine(payroll.Income(money.MustParse(gross), "Salary"))
		if withDeductions {
			s.AddLine(payroll.CPPDeductionLine())
			s.AddLine(payroll.EIDeductionLine())
			s.AddLine(payroll.IncomeTaxLine())
			s.AddLine(payroll.CPPEmployerLine())
			s.AddLine(payroll.EIEmployerLine())
		}
		s.AddLine(payroll.NetPayLine())
	}
	_, err = p.Post()
	require.NoError(t, err)
}

func newTestBook(t *testing.T) *payroll.Book {
	t.Helper()
	table, err := rules.Default()
	require.NoError(t, err)
	b := payroll.NewBook(table)
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		e := payroll.NewEmployee(name, 26)
		e.FederalCredits = []payroll.TaxCredit{payroll.BasicPersonal()}
		e.ProvincialCredits = []payroll.TaxCredit{payroll.BasicPersonal()}
		require.NoError(t, b.AddEmployee(e))
	}

	post(t, b, payroll.Date(2015, time.December, 31), map[string]string{"alice": "480"}, true)
	post(t, b, payroll.Date(2016, time.January, 15), map[string]string{"alice": "480", "bob": "480"}, true)
	post(t, b, payroll.Date(2016, time.January, 29), map[string]string{"alice": "480", "bob": "480"}, true)
	post(t, b, payroll.Date(2016, time.February, 12), map[string]string{"carol": "100"}, false)

	// Unposted stubs are not reported.
	p, err := b.NewPayday(payroll.Date(2016, time.December, 30), 0)
	require.NoError(t, err)
	dave, err := b.Employee("dave")
	require.NoError(t, err)
	p.NewPaystub(dave).AddLine(payroll.Income(money.MustParse("1000"), "Salary"))
	return b
}

func TestGenerateSlipsAndSummary(t *testing.T) {
	b := newTestBook(t)
	extra, summary, submission := testAttributes()

	sub, err := Generate(2016, b.Employees(), extra, summary, submission)
	require.NoError(t, err)

	slips := sub.Return.T4.Slips
	require.Len(t, slips, 3)
	assert.Equal(t, "Smith", slips[0].Name.Surname)
	assert.Equal(t, "046454286", slips[0].SIN)
	assert.Equal(t, "046454294", slips[1].SIN)

	alice := slips[0].Amounts
	assert.Equal(t, "960.00", alice.EmploymentIncome)
	assert.Equal(t, "34.20", alice.CPPContributions)
	assert.Equal(t, "18.04", alice.EIPremiums)
	assert.Equal(t, "22.16", alice.IncomeTax)
	assert.Equal(t, "960.00", alice.PensionableEarnings)
	assert.Equal(t, "960.00", alice.InsurableEarnings)

	carol := slips[2]
	assert.Equal(t, "100.00", carol.Amounts.EmploymentIncome)
	assert.Empty(t, carol.Amounts.CPPContributions)
	assert.Empty(t, carol.Amounts.EIPremiums)
	assert.Empty(t, carol.Amounts.IncomeTax)
	assert.Empty(t, carol.Amounts.PensionableEarnings)
	assert.Equal(t, "1", carol.CPPExempt)

	s := sub.Return.T4.Summary
	assert.Equal(t, 2016, s.TaxYear)
	assert.Equal(t, 3, s.SlipCount)
	assert.Equal(t, "2020.00", s.Totals.EmploymentIncome)
	assert.Equal(t, "68.40", s.Totals.CPPContributions)
	assert.Equal(t, "36.08", s.Totals.EIPremiums)
	assert.Equal(t, "44.32", s.Totals.IncomeTax)
	assert.Equal(t, "68.40", s.Totals.EmployerCPP)
	assert.Equal(t, "50.52", s.Totals.EmployerEI)

	assert.Equal(t, "Prairie Bookkeeping", sub.T619.Name.Line1)
	assert.Equal(t, "R3C1A1", s.Address.PostalCode)
}

func TestGenerateSummaryRoundsTotalsOnce(t *testing.T) {
	table, err := rules.Default()
	require.NoError(t, err)
	b := payroll.NewBook(table)
	for _, name := range []string{"alice", "bob"} {
		e := payroll.NewEmployee(name, 26)
		e.FederalCredits = []payroll.TaxCredit{payroll.BasicPersonal()}
		e.ProvincialCredits = []payroll.TaxCredit{payroll.BasicPersonal()}
		require.NoError(t, b.AddEmployee(e))
	}
	post(t, b, payroll.Date(2016, time.March, 11), map[string]string{"alice": "100.005", "bob": "100.005"}, false)
	extra, summary, submission := testAttributes()

	sub, err := Generate(2016, b.Employees(), extra, summary, submission)
	require.NoError(t, err)

	slips := sub.Return.T4.Slips
	require.Len(t, slips, 2)
	assert.Equal(t, "100.01", slips[0].Amounts.EmploymentIncome)
	assert.Equal(t, "100.01", slips[1].Amounts.EmploymentIncome)
	// Summing the rounded slips would give 200.02.
	assert.Equal(t, "200.01", sub.Return.T4.Summary.Totals.EmploymentIncome)
}

func TestGeneratePriorYear(t *testing.T) {
	b := newTestBook(t)
	extra, summary, submission := testAttributes()

	sub, err := Generate(2015, b.Employees(), extra, summary, submission)
	require.NoError(t, err)
	require.Len(t, sub.Return.T4.Slips, 1)
	assert.Equal(t, "480.00", sub.Return.T4.Summary.Totals.EmploymentIncome)

	_, err = Generate(2014, b.Employees(), extra, summary, submission)
	assert.ErrorIs(t, err, ErrNoSlips)
}

func TestGenerateMissingAttributes(t *testing.T) {
	b := newTestBook(t)
	extra, summary, submission := testAttributes()

	delete(extra, "bob")
	_, err := Generate(2016, b.Employees(), extra, summary, submission)
	assert.ErrorIs(t, err, ErrMissingEmployeeAttributes)
	assert.Contains(t, err.Error(), "bob")

	extra, _, _ = testAttributes()
	carol := extra["carol"]
	carol.SIN = ""
	extra["carol"] = carol
	_, err = Generate(2016, b.Employees(), extra, summary, submission)
	assert.ErrorIs(t, err, ErrMissingEmployeeAttributes)
	assert.Contains(t, err.Error(), "sin")

	extra, _, _ = testAttributes()
	summary.BusinessNumber = ""
	_, err = Generate(2016, b.Employees(), extra, summary, submission)
	assert.ErrorIs(t, err, ErrMissingFilerAttributes)
}

func TestWrite(t *testing.T) {
	b := newTestBook(t)
	extra, summary, submission := testAttributes()
	sub, err := Generate(2016, b.Employees(), extra, summary, submission)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sub))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>"))
	assert.Contains(t, out, `xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`)
	assert.Contains(t, out, "<sbmt_ref_id>T4-2016</sbmt_ref_id>")
	assert.Equal(t, 3, strings.Count(out, "<T4Slip>"))
	assert.Equal(t, 2, strings.Count(out, "<cpp_cntrb_amt>"))
	assert.Contains(t, out, "<tot_empt_incamt>2020.00</tot_empt_incamt>")
	assert.Less(t, strings.Index(out, "</T4Slip>"), strings.Index(out, "<T4Summary>"))
}

func TestLoadAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t4.yaml")
	data := `
submission:
  reference_id: T4-2016
  transmitter_number: MM555555
summary:
  business_number: 123456789RP0001
  employer_name: Prairie Bookkeeping
  address: {line1: 1 Main St, city: Winnipeg, province: MB, country: CAN, postal_code: R3C 1A1}
employees:
  alice:
    surname: Smith
    given_name: Alice
    sin: "046454286"
    province_of_employment: MB
    ei_exempt: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	a, err := LoadAttributes(path)
	require.NoError(t, err)
	assert.Equal(t, "MM555555", a.Submission.TransmitterNumber)
	assert.Equal(t, "Winnipeg", a.Summary.Address.City)
	assert.Equal(t, "046454286", a.Employees["alice"].SIN)
	assert.True(t, a.Employees["alice"].EIExempt)

	_, err = LoadAttributes(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
