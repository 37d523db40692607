// Package ledgeremu is a local stand-in for the external ledger service.
// It accepts the same manual-journal requests as the ledgerapi backend and
// keeps them in a bbolt file.
package ledgeremu

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/backend"
)

// ErrNotFound is returned when a journal is not found.
var ErrNotFound = errors.New("record not found")

// Bucket names.
const (
	BucketJournals = "journals"
)

// Journal is a stored manual journal.
type Journal struct {
	ID          int64                   `json:"id"`
	CompanyID   int64                   `json:"company_id"`
	IssueDate   string                  `json:"issue_date"`
	Description string                  `json:"description"`
	Partner     string                  `json:"partner_name,omitempty"`
	Details     []backend.JournalDetail `json:"details"`
	CreatedAt   time.Time               `json:"created_at"`
}

// Store represents the bbolt database wrapper.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// NewStore opens the database at dbPath and initializes buckets.
func NewStore(dbPath string) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketJournals)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", BucketJournals, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateJournal assigns an id to a journal request and stores it.
func (s *Store) CreateJournal(req backend.JournalRequest) (*Journal, error) {
	journal := &Journal{
		CompanyID:   req.CompanyID,
		IssueDate:   req.IssueDate,
		Description: req.Description,
		Partner:     req.Partner,
		Details:     req.Details,
		CreatedAt:   s.now(),
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketJournals))
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to generate ID: %w", err)
		}
		journal.ID = int64(seq)

		data, err := json.Marshal(journal)
		if err != nil {
			return fmt.Errorf("failed to marshal journal: %w", err)
		}
		return b.Put(itob(journal.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}
	return journal, nil
}

// GetJournal retrieves a journal by id.
func (s *Store) GetJournal(id int64) (*Journal, error) {
	var journal Journal
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(BucketJournals)).Get(itob(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &journal)
	})
	if err != nil {
		return nil, err
	}
	return &journal, nil
}

// ListJournals returns every journal, optionally only one company's.
func (s *Store) ListJournals(companyID *int64) ([]*Journal, error) {
	journals := []*Journal{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketJournals)).ForEach(func(k, v []byte) error {
			var journal Journal
			if err := json.Unmarshal(v, &journal); err != nil {
				return fmt.Errorf("failed to unmarshal journal: %w", err)
			}
			if companyID == nil || journal.CompanyID == *companyID {
				journals = append(journals, &journal)
			}
			return nil
		})
	})
	return journals, err
}

// DeleteJournal removes a company's journal.
func (s *Store) DeleteJournal(companyID, id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketJournals))
		data := b.Get(itob(id))
		if data == nil {
			return ErrNotFound
		}
		var journal Journal
		if err := json.Unmarshal(data, &journal); err != nil {
			return fmt.Errorf("failed to unmarshal journal: %w", err)
		}
		if journal.CompanyID != companyID {
			return ErrNotFound
		}
		return b.Delete(itob(id))
	})
}

// itob converts an int64 to a byte slice for use as a bbolt key.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}
