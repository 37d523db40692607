package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

// BookStore loads and saves the payroll book.
type BookStore struct {
	conn *Connection
}

// NewBookStore creates a new BookStore instance.
func NewBookStore(conn *Connection) *BookStore {
	return &BookStore{conn: conn}
}

// Load rebuilds the book from the database, relinking every paystub to its
// employee.
func (s *BookStore) Load(table *rules.Table) (*payroll.Book, error) {
	book := payroll.NewBook(table)

	rows, err := s.conn.Query(`SELECT name, data FROM employees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, data string
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		var e payroll.Employee
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("failed to decode employee %s: %w", name, err)
		}
		if err := book.AddEmployee(&e); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	paydayRows, err := s.conn.Query(`SELECT pay_date, serial, data FROM paydays ORDER BY pay_date, serial`)
	if err != nil {
		return nil, fmt.Errorf("failed to load paydays: %w", err)
	}
	defer paydayRows.Close()

	for paydayRows.Next() {
		var date, data string
		var serial int
		if err := paydayRows.Scan(&date, &serial, &data); err != nil {
			return nil, fmt.Errorf("failed to scan payday: %w", err)
		}
		var p payroll.Payday
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("failed to decode payday %s#%d: %w", date, serial, err)
		}
		if err := book.AddPayday(&p); err != nil {
			return nil, err
		}
	}
	if err := paydayRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load paydays: %w", err)
	}

	return book, nil
}

// Save replaces the stored book with book in a single transaction.
func (s *BookStore) Save(book *payroll.Book) error {
	return s.conn.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM employees`); err != nil {
			return fmt.Errorf("failed to clear employees: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM paydays`); err != nil {
			return fmt.Errorf("failed to clear paydays: %w", err)
		}

		for _, e := range book.Employees() {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to encode employee %s: %w", e.Name, err)
			}
			if _, err := tx.Exec(`INSERT INTO employees (name, data) VALUES (?, ?)`, e.Name, string(data)); err != nil {
				return fmt.Errorf("failed to save employee %s: %w", e.Name, err)
			}
		}

		for _, p := range book.Paydays() {
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to encode payday %s: %w", p.Key(), err)
			}
			_, err = tx.Exec(`
				INSERT INTO paydays (pay_date, serial, period_id, posted, data)
				VALUES (?, ?, ?, ?, ?)
			`, p.Date.Format("2006-01-02"), p.Serial, p.PeriodID, p.Posted, string(data))
			if err != nil {
				return fmt.Errorf("failed to save payday %s: %w", p.Key(), err)
			}
		}
		return nil
	})
}
