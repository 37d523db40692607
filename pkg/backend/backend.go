// Package backend records payroll transactions in an accounting system.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/ledger"
)

// ErrTransactionNotFound is returned when removing an unknown transaction.
var ErrTransactionNotFound = errors.New("transaction not found")

// Backend is an accounting system that accepts ledger transactions.
type Backend interface {
	// Name identifies the backend in logs and the transaction log.
	Name() string
	// Record stores a transaction and returns its id.
	Record(ctx context.Context, txn ledger.Transaction) (string, error)
	// Remove deletes a previously recorded transaction.
	Remove(ctx context.Context, id string) error
}

// Kind names a backend implementation.
type Kind string

const (
	KindFile      Kind = "file"
	KindNull      Kind = "null"
	KindLedgerAPI Kind = "ledgerapi"
)

// ParseKind validates a backend name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindFile, KindNull, KindLedgerAPI:
		return k, nil
	case "":
		return KindFile, nil
	}
	return "", fmt.Errorf("unknown backend %q (expected file, null or ledgerapi)", s)
}

func newID() string {
	return uuid.NewString()
}
