package payroll

import (
	"errors"
	"fmt"
)

// ROE work period sequence errors.
var (
	ErrCanNotStartWorkPeriodWithCurrent = errors.New("can not start an ROE work period while one is current")
	ErrInvalidROEWorkPeriodStartDate    = errors.New("ROE work period must start after the previous period ended")
	ErrInvalidROEWorkPeriodEndDate      = errors.New("ROE work period can not end before it starts")
	ErrNoCurrentROEWorkPeriod           = errors.New("no current ROE work period")
	ErrNoEndedROEWorkPeriodToReverse    = errors.New("no ended ROE work period to reverse")
	ErrROEWorkPeriodsAlreadyInit        = errors.New("ROE work periods already initialized")
)

// Employee configuration errors.
var (
	ErrMissingTaxCredits    = errors.New("missing tax credits")
	ErrInvalidTaxCredit     = errors.New("invalid tax credit")
	ErrInvalidPayPeriods    = errors.New("pay periods per year must be positive")
	ErrInvalidVacationRate  = errors.New("vacation rate must not be negative")
	ErrUnknownCalculation   = errors.New("unknown calculation")
	ErrPaystubWithoutPayday = errors.New("paystub is not attached to a payday")
)

// Book errors.
var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrDuplicateEmployee   = errors.New("employee already exists")
	ErrPaydayNotFound      = errors.New("payday not found")
	ErrDuplicatePayday     = errors.New("payday already exists")
	ErrAlreadyPosted       = errors.New("payday already posted")
	ErrNotPosted           = errors.New("payday not posted")
	ErrPostingOutOfOrder   = errors.New("a later paystub is already posted for this employee")
	ErrUnpostingOutOfOrder = errors.New("a later paystub is still posted for this employee")
)

// ConfigError reports an employee setting that would change the amount withheld.
type ConfigError struct {
	Employee string
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for employee %s: %v", e.Employee, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PaystubError reports the employee whose paystub could not be posted.
type PaystubError struct {
	Employee string
	Err      error
}

func (e *PaystubError) Error() string {
	return fmt.Sprintf("failed to post paystub for %s: %v", e.Employee, e.Err)
}

func (e *PaystubError) Unwrap() error {
	return e.Err
}
