// Package payrun posts paydays and records their paystubs in an accounting
// backend, undoing everything when any paystub fails.
package payrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/backend"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/db"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/ledger"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
)

// RunError reports the payday and employee a pay run failed on.
type RunError struct {
	Payday   string
	Employee string
	Err      error
}

func (e *RunError) Error() string {
	if e.Employee == "" {
		return fmt.Sprintf("pay run %s failed: %v", e.Payday, e.Err)
	}
	return fmt.Sprintf("pay run %s failed for %s: %v", e.Payday, e.Employee, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Result summarizes a completed pay run.
type Result struct {
	Payday       string
	Transactions []string
	YTDChanges   []payroll.YTDChange
}

// Runner posts paydays and records them in a backend.
type Runner struct {
	backend   backend.Backend
	converter *ledger.Converter
	txLog     *db.TransactionLog
	logger    *slog.Logger
}

// NewRunner creates a new Runner.
func NewRunner(be backend.Backend, accounts *ledger.AccountMap, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		backend:   be,
		converter: ledger.NewConverter(accounts),
		logger:    logger,
	}
}

// WithTransactionLog records every backend transaction in log as well.
func (r *Runner) WithTransactionLog(log *db.TransactionLog) *Runner {
	r.txLog = log
	return r
}

// Run posts the payday, converts each paystub and records it in the
// backend. Any failure removes the transactions already recorded and
// unposts the payday before returning a RunError.
func (r *Runner) Run(ctx context.Context, p *payroll.Payday) (*Result, error) {
	key := p.Key().String()
	r.logger.Info("Starting pay run", "payday", key, "period", p.Period().ID, "paystubs", len(p.Paystubs))
	if p.Fallback() {
		r.logger.Warn("Pay date outside the rule table", "payday", key, "period", p.Period().ID)
	}

	changes, err := p.Post()
	if err != nil {
		return nil, &RunError{Payday: key, Employee: employeeOf(err), Err: err}
	}

	txns, err := r.converter.FromPayday(p)
	if err != nil {
		r.unpost(p)
		return nil, &RunError{Payday: key, Employee: employeeOf(err), Err: err}
	}

	var recorded []*payroll.Paystub
	fail := func(s *payroll.Paystub, err error) (*Result, error) {
		r.compensate(ctx, recorded)
		r.unpost(p)
		return nil, &RunError{Payday: key, Employee: s.EmployeeName, Err: err}
	}

	result := &Result{Payday: key, YTDChanges: changes}
	for i, s := range p.Paystubs {
		if err := ctx.Err(); err != nil {
			return fail(s, err)
		}
		id, err := r.backend.Record(ctx, txns[i])
		if err != nil {
			return fail(s, fmt.Errorf("failed to record transaction in %s: %w", r.backend.Name(), err))
		}
		s.TransactionID = id
		recorded = append(recorded, s)

		if r.txLog != nil {
			net, _ := s.NetPay()
			err := r.txLog.Record(db.TransactionRecord{
				Backend:       r.backend.Name(),
				TransactionID: id,
				PayDate:       p.Date.Format("2006-01-02"),
				Serial:        p.Serial,
				Employee:      s.EmployeeName,
				NetPay:        money.Format(net),
			})
			if err != nil {
				return fail(s, err)
			}
		}

		r.logger.Debug("Recorded paystub", "payday", key, "employee", s.EmployeeName, "transaction_id", id)
		result.Transactions = append(result.Transactions, id)
	}

	r.logger.Info("Pay run complete", "payday", key, "transactions", len(result.Transactions))
	return result, nil
}

// Reverse removes a posted payday's transactions from the backend and
// unposts it. Transactions the backend no longer knows are skipped.
func (r *Runner) Reverse(ctx context.Context, p *payroll.Payday) ([]payroll.YTDChange, error) {
	key := p.Key().String()
	if err := p.CheckUnpost(); err != nil {
		return nil, &RunError{Payday: key, Employee: employeeOf(err), Err: err}
	}

	for i := len(p.Paystubs) - 1; i >= 0; i-- {
		s := p.Paystubs[i]
		if s.TransactionID == "" {
			continue
		}
		err := r.backend.Remove(ctx, s.TransactionID)
		if errors.Is(err, backend.ErrTransactionNotFound) {
			r.logger.Warn("Transaction already gone from backend", "payday", key, "employee", s.EmployeeName, "transaction_id", s.TransactionID)
		} else if err != nil {
			return nil, &RunError{Payday: key, Employee: s.EmployeeName, Err: fmt.Errorf("failed to remove transaction: %w", err)}
		}
		r.forget(s)
	}

	changes, err := p.Unpost()
	if err != nil {
		return nil, &RunError{Payday: key, Err: err}
	}
	r.logger.Info("Pay run reversed", "payday", key)
	return changes, nil
}

// compensate removes recorded transactions, newest first.
func (r *Runner) compensate(ctx context.Context, recorded []*payroll.Paystub) {
	for i := len(recorded) - 1; i >= 0; i-- {
		s := recorded[i]
		// The run context may be what failed.
		if err := r.backend.Remove(context.WithoutCancel(ctx), s.TransactionID); err != nil {
			r.logger.Error("Failed to remove transaction during rollback",
				"employee", s.EmployeeName,
				"transaction_id", s.TransactionID,
				"error", err,
			)
		}
		r.forget(s)
	}
}

func (r *Runner) forget(s *payroll.Paystub) {
	if r.txLog != nil {
		if _, err := r.txLog.Delete(r.backend.Name(), s.TransactionID); err != nil {
			r.logger.Error("Failed to delete transaction record", "transaction_id", s.TransactionID, "error", err)
		}
	}
	s.TransactionID = ""
}

func (r *Runner) unpost(p *payroll.Payday) {
	if _, err := p.Unpost(); err != nil {
		r.logger.Error("Failed to unpost payday", "payday", p.Key().String(), "error", err)
	}
}

func employeeOf(err error) string {
	var cfg *payroll.ConfigError
	if errors.As(err, &cfg) {
		return cfg.Employee
	}
	var stub *payroll.PaystubError
	if errors.As(err, &stub) {
		return stub.Employee
	}
	var mapping *ledger.MappingError
	if errors.As(err, &mapping) {
		return mapping.Employee
	}
	return ""
}
