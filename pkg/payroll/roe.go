package payroll

import "time"

// WorkPeriod is one span of insurable employment reported on a Record of
// Employment. End is nil while the period is current.
type WorkPeriod struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Current reports whether the period has not ended.
func (w WorkPeriod) Current() bool {
	return w.End == nil
}

// InitROEWorkPeriods seeds the work period history of an employee that
// predates the book. It may only be called once, before any other ROE
// operation.
func (e *Employee) InitROEWorkPeriods(history ...WorkPeriod) error {
	if e.ROEInitialized {
		return ErrROEWorkPeriodsAlreadyInit
	}
	periods := make([]WorkPeriod, 0, len(history))
	for i, w := range history {
		w.Start = Day(w.Start)
		if i > 0 {
			prev := periods[i-1]
			if prev.Current() || !w.Start.After(*prev.End) {
				return ErrInvalidROEWorkPeriodStartDate
			}
		}
		if w.End != nil {
			end := Day(*w.End)
			if end.Before(w.Start) {
				return ErrInvalidROEWorkPeriodEndDate
			}
			w.End = &end
		}
		w.EndRecorded = false
		periods = append(periods, w)
	}
	e.ROEPeriods = periods
	e.ROEInitialized = true
	return nil
}

func (e *Employee) ensureROE() {
	if !e.ROEInitialized {
		e.ROEPeriods = []WorkPeriod{}
		e.ROEInitialized = true
	}
}

// ROEWorkPeriods returns a copy of the work period history.
func (e *Employee) ROEWorkPeriods() []WorkPeriod {
	out := make([]WorkPeriod, len(e.ROEPeriods))
	for i, w := range e.ROEPeriods {
		if w.End != nil {
			end := *w.End
			w.End = &end
		}
		out[i] = w
	}
	return out
}

// CurrentROEWorkPeriod returns the open work period, if any.
func (e *Employee) CurrentROEWorkPeriod() (WorkPeriod, bool) {
	if n := len(e.ROEPeriods); n > 0 && e.ROEPeriods[n-1].Current() {
		return e.ROEPeriods[n-1], true
	}
	return WorkPeriod{}, false
}

// StartROEWorkPeriod opens a new work period on date.
func (e *Employee) StartROEWorkPeriod(date time.Time) error {
	e.ensureROE()
	date = Day(date)
	n := len(e.ROEPeriods)
	if n > 0 {
		last := e.ROEPeriods[n-1]
		if last.Current() {
			return ErrCanNotStartWorkPeriodWithCurrent
		}
		if !date.After(*last.End) {
			return ErrInvalidROEWorkPeriodStartDate
		}
	}
	e.ROEPeriods = append(e.ROEPeriods, WorkPeriod{Start: date})
	return nil
}

// EndROEWorkPeriod closes the current work period on date.
func (e *Employee) EndROEWorkPeriod(date time.Time) error {
	e.ensureROE()
	date = Day(date)
	n := len(e.ROEPeriods)
	if n == 0 || !e.ROEPeriods[n-1].Current() {
		return ErrNoCurrentROEWorkPeriod
	}
	if date.Before(e.ROEPeriods[n-1].Start) {
		return ErrInvalidROEWorkPeriodEndDate
	}
	e.ROEPeriods[n-1].End = &date
	e.ROEPeriods[n-1].EndRecorded = true
	return nil
}

// ReverseROEWorkPeriodStarted undoes StartROEWorkPeriod.
func (e *Employee) ReverseROEWorkPeriodStarted() error {
	n := len(e.ROEPeriods)
	if n == 0 || !e.ROEPeriods[n-1].Current() {
		return ErrNoCurrentROEWorkPeriod
	}
	e.ROEPeriods = e.ROEPeriods[:n-1]
	return nil
}

// ReverseROEWorkPeriodEnded undoes EndROEWorkPeriod. Ends seeded by
// InitROEWorkPeriods can not be reversed.
func (e *Employee) ReverseROEWorkPeriodEnded() error {
	n := len(e.ROEPeriods)
	if n == 0 || !e.ROEPeriods[n-1].EndRecorded {
		return ErrNoEndedROEWorkPeriodToReverse
	}
	e.ROEPeriods[n-1].End = nil
	e.ROEPeriods[n-1].EndRecorded = false
	return nil
}
