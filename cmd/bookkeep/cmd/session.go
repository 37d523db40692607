package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/backend"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/config"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/db"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/ledger"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/pathutil"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/payroll"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/rules"
)

// session is an opened book: configuration, database and the loaded payroll.
type session struct {
	cfg   *config.Config
	paths *pathutil.PathResolver
	conn  *db.Connection
	store *db.BookStore
	txLog *db.TransactionLog
	table *rules.Table
	book  *payroll.Book
}

// openSession loads configuration and the book. Callers must close it.
func openSession() *session {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")
	exitOnError(cfg.Validate([]string{"book", "root"}), "invalid configuration")

	paths := cfg.Paths()

	table, err := loadRules(cfg)
	exitOnError(err, "failed to load rule table")

	dbPath := paths.DatabasePath()
	slog.Debug("Opening database", "path", dbPath)
	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")

	store := db.NewBookStore(conn)
	book, err := store.Load(table)
	if err != nil {
		conn.Close()
		exitOnError(err, "failed to load book")
	}
	book.WithLogger(slog.Default())

	return &session{
		cfg:   cfg,
		paths: paths,
		conn:  conn,
		store: store,
		txLog: db.NewTransactionLog(conn),
		table: table,
		book:  book,
	}
}

func (s *session) Close() {
	if err := s.conn.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// save persists the book in one database transaction.
func (s *session) save() {
	exitOnError(s.store.Save(s.book), "failed to save book")
	slog.Debug("Book saved", "path", s.conn.Path())
}

func loadRules(cfg *config.Config) (*rules.Table, error) {
	var table *rules.Table
	var err error
	if cfg.Book.RulesFile != "" {
		slog.Debug("Loading rule table", "path", cfg.Book.RulesFile)
		table, err = rules.Load(cfg.Book.RulesFile)
	} else {
		table, err = rules.Default()
	}
	if err != nil {
		return nil, err
	}
	return table.WithLogger(slog.Default()), nil
}

func (s *session) accounts() *ledger.AccountMap {
	var accounts *ledger.AccountMap
	var err error
	if s.cfg.Book.AccountMapFile != "" {
		accounts, err = ledger.LoadAccountMap(s.cfg.Book.AccountMapFile)
	} else {
		accounts, err = ledger.DefaultAccountMap()
	}
	exitOnError(err, "failed to load account map")
	if s.cfg.Book.Currency != "" {
		accounts.Currency = s.cfg.Book.Currency
	}
	return accounts
}

// backend builds the configured accounting backend.
func (s *session) backend() backend.Backend {
	kind, err := backend.ParseKind(s.cfg.Backend)
	exitOnError(err, "invalid backend")

	switch kind {
	case backend.KindNull:
		return backend.NewNull()
	case backend.KindLedgerAPI:
		exitOnError(s.cfg.Validate(
			[]string{"ledgerapi", "url"},
			[]string{"ledgerapi", "token"},
			[]string{"ledgerapi", "companyId"},
		), "invalid configuration")
		return backend.NewLedgerAPI(backend.LedgerAPIConfig{
			APIURL:      s.cfg.LedgerAPI.URL,
			AccessToken: s.cfg.LedgerAPI.Token,
			CompanyID:   s.cfg.LedgerAPI.CompanyID,
			Timeout:     30 * time.Second,
		})
	default:
		return backend.NewFile(s.paths)
	}
}

// payday finds a payday by its date argument and serial flag.
func (s *session) payday(dateArg string, serial int) *payroll.Payday {
	date, err := parseDate(dateArg)
	exitOnError(err, "invalid date")
	p, err := s.book.Payday(date, serial)
	exitOnError(err, "failed to find payday")
	return p
}

func (s *session) employee(name string) *payroll.Employee {
	e, err := s.book.Employee(name)
	exitOnError(err, "failed to find employee")
	return e
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
