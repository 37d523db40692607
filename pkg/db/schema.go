// Package db persists the payroll book and the backend transaction log in SQLite.
package db

// Schema creates the tables of SchemaVersion. Every statement is idempotent.
const Schema = `
-- Employees, one JSON document each (settings, YTD, ROE work periods)
CREATE TABLE IF NOT EXISTS employees (
    name TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Paydays with their paystubs as a JSON document
CREATE TABLE IF NOT EXISTS paydays (
    pay_date TEXT NOT NULL,            -- YYYY-MM-DD
    serial INTEGER NOT NULL,
    period_id TEXT NOT NULL,           -- Rule period the payday resolved to
    posted INTEGER NOT NULL DEFAULT 0,
    data TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (pay_date, serial)
);

-- Backend transactions
-- Tracks which paystubs have been recorded in which accounting backend
CREATE TABLE IF NOT EXISTS backend_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    backend TEXT NOT NULL,             -- 'file', 'null' or 'ledgerapi'
    transaction_id TEXT NOT NULL,      -- Id assigned by the backend
    pay_date TEXT NOT NULL,            -- YYYY-MM-DD
    serial INTEGER NOT NULL,
    employee TEXT NOT NULL,
    net_pay TEXT NOT NULL,             -- Decimal string
    recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(backend, transaction_id)
);

CREATE INDEX IF NOT EXISTS idx_backend_transactions_payday
    ON backend_transactions(pay_date, serial);

-- Book metadata
CREATE TABLE IF NOT EXISTS book_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
