package db

import (
	"database/sql"
	"fmt"
	"time"
)

// TransactionRecord links a paystub to the backend transaction that recorded it.
type TransactionRecord struct {
	ID            int64
	Backend       string
	TransactionID string
	PayDate       string // YYYY-MM-DD
	Serial        int
	Employee      string
	NetPay        string
	RecordedAt    time.Time
}

// TransactionLog manages backend transaction records and book metadata.
type TransactionLog struct {
	conn *Connection
}

// NewTransactionLog creates a new TransactionLog instance.
func NewTransactionLog(conn *Connection) *TransactionLog {
	return &TransactionLog{conn: conn}
}

// Record stores a backend transaction.
// If the record already exists (same backend + transaction id), it updates it.
func (l *TransactionLog) Record(record TransactionRecord) error {
	query := `
		INSERT INTO backend_transactions (backend, transaction_id, pay_date, serial, employee, net_pay)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(backend, transaction_id) DO UPDATE SET
			pay_date = excluded.pay_date,
			serial = excluded.serial,
			employee = excluded.employee,
			net_pay = excluded.net_pay,
			recorded_at = CURRENT_TIMESTAMP
	`

	_, err := l.conn.Exec(query,
		record.Backend,
		record.TransactionID,
		record.PayDate,
		record.Serial,
		record.Employee,
		record.NetPay,
	)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	return nil
}

// ForPayday returns the transactions recorded for a payday, in insertion order.
func (l *TransactionLog) ForPayday(payDate string, serial int) ([]TransactionRecord, error) {
	query := `
		SELECT id, backend, transaction_id, pay_date, serial, employee, net_pay, recorded_at
		FROM backend_transactions
		WHERE pay_date = ? AND serial = ?
		ORDER BY id
	`

	rows, err := l.conn.Query(query, payDate, serial)
	if err != nil {
		return nil, fmt.Errorf("failed to get payday transactions: %w", err)
	}
	defer rows.Close()

	var records []TransactionRecord
	for rows.Next() {
		var r TransactionRecord
		if err := rows.Scan(
			&r.ID,
			&r.Backend,
			&r.TransactionID,
			&r.PayDate,
			&r.Serial,
			&r.Employee,
			&r.NetPay,
			&r.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// Delete removes a transaction record.
func (l *TransactionLog) Delete(backend, transactionID string) (bool, error) {
	result, err := l.conn.Exec(`DELETE FROM backend_transactions WHERE backend = ? AND transaction_id = ?`, backend, transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Stats represents book statistics.
type Stats struct {
	Employees     int
	Paydays       int
	PostedPaydays int
	Transactions  int
	LastRecorded  sql.NullString
}

// GetStats retrieves book statistics.
func (l *TransactionLog) GetStats() (*Stats, error) {
	var stats Stats

	counts := []struct {
		query string
		dest  *int
		what  string
	}{
		{`SELECT COUNT(*) FROM employees`, &stats.Employees, "employee"},
		{`SELECT COUNT(*) FROM paydays`, &stats.Paydays, "payday"},
		{`SELECT COUNT(*) FROM paydays WHERE posted = 1`, &stats.PostedPaydays, "posted payday"},
		{`SELECT COUNT(*) FROM backend_transactions`, &stats.Transactions, "transaction"},
	}
	for _, c := range counts {
		if err := l.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to get %s count: %w", c.what, err)
		}
	}

	err := l.conn.QueryRow(`SELECT MAX(recorded_at) FROM backend_transactions`).Scan(&stats.LastRecorded)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last recorded time: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value.
func (l *TransactionLog) GetMetadata(key string) (string, error) {
	var value string
	err := l.conn.QueryRow(`SELECT value FROM book_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (l *TransactionLog) SetMetadata(key, value string) error {
	query := `
		INSERT INTO book_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := l.conn.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
