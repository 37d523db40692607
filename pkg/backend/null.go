package backend

import (
	"context"
	"sync"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/ledger"
)

// Null accepts every transaction and keeps only a count of the live ones.
type Null struct {
	mu   sync.Mutex
	live map[string]struct{}
}

// NewNull creates a new Null backend.
func NewNull() *Null {
	return &Null{live: make(map[string]struct{})}
}

// Name returns "null".
func (n *Null) Name() string {
	return string(KindNull)
}

// Record accepts txn and returns a fresh id.
func (n *Null) Record(_ context.Context, _ ledger.Transaction) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := newID()
	n.live[id] = struct{}{}
	return id, nil
}

// Remove forgets a recorded transaction.
func (n *Null) Remove(_ context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.live[id]; !ok {
		return ErrTransactionNotFound
	}
	delete(n.live, id)
	return nil
}

// Count returns the number of recorded transactions not yet removed.
func (n *Null) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.live)
}
