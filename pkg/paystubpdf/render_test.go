package paystubpdf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

func TestRender(t *testing.T) {
	table, err := rules.Default()
	if err != nil {
		t.Fatalf("rules.Default() error = %v", err)
	}
	b := payroll.NewBook(table)
	e := payroll.NewEmployee("alice", 26)
	e.FederalCredits = []payroll.TaxCredit{payroll.BasicPersonal()}
	e.ProvincialCredits = []payroll.TaxCredit{payroll.BasicPersonal()}
	if err := b.AddEmployee(e); err != nil {
		t.Fatalf("AddEmployee() error = %v", err)
	}
	p, err := b.NewPayday(payroll.Date(2016, time.January, 15), 0)
	if err != nil {
		t.Fatalf("NewPayday() error = %v", err)
	}
	s := p.NewPaystub(e)
	s.AddLine(payroll.Wage(money.MustParse("32"), money.MustParse("15"), "Regular"))
	s.AddLine(payroll.CPPDeductionLine())
	s.AddLine(payroll.EIDeductionLine())
	s.AddLine(payroll.IncomeTaxLine())
	s.AddLine(payroll.NetPayLine())
	if _, err := p.Post(); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "stub.pdf")
	if err := Render(s, path); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("Render() wrote %q..., expected a PDF", data[:8])
	}
}

func TestRenderDetached(t *testing.T) {
	err := Render(&payroll.Paystub{EmployeeName: "ghost"}, filepath.Join(t.TempDir(), "x.pdf"))
	if !errors.Is(err, ErrDetachedPaystub) {
		t.Errorf("Render(detached) error = %v, expected ErrDetachedPaystub", err)
	}
}
