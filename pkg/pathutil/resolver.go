// Package pathutil provides centralized path management for the book's
// ledger files, database, exports and printed paystubs.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PathResolver manages paths under the book root.
type PathResolver struct {
	root         string
	ledgerDir    string
	databasePath string
	exportDir    string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// Root is the book's root directory (e.g., ~/payroll/book)
	Root string
	// LedgerDir holds the monthly Beancount files
	LedgerDir string
	// DatabasePath is the SQLite book store
	DatabasePath string
	// ExportDir receives CSV, spreadsheet, T4 and paystub output
	ExportDir string
}

// New creates a new PathResolver with the given configuration.
// Empty paths default to {Root}/ledger, {Root}/.book/book.db and {Root}/exports.
func New(config Config) *PathResolver {
	ledgerDir := config.LedgerDir
	if ledgerDir == "" {
		ledgerDir = filepath.Join(config.Root, "ledger")
	}

	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.Root, ".book", "book.db")
	}

	exportDir := config.ExportDir
	if exportDir == "" {
		exportDir = filepath.Join(config.Root, "exports")
	}

	return &PathResolver{
		root:         config.Root,
		ledgerDir:    ledgerDir,
		databasePath: dbPath,
		exportDir:    exportDir,
	}
}

// Root returns the book root directory.
func (p *PathResolver) Root() string {
	return p.root
}

// LedgerDir returns the directory holding the monthly ledger files.
func (p *PathResolver) LedgerDir() string {
	return p.ledgerDir
}

// DatabasePath returns the database file path.
func (p *PathResolver) DatabasePath() string {
	return p.databasePath
}

// ExportDir returns the export directory.
func (p *PathResolver) ExportDir() string {
	return p.exportDir
}

// YearDir returns the ledger directory for a year.
// Example: ~/payroll/book/ledger/2016
func (p *PathResolver) YearDir(year string) string {
	return filepath.Join(p.ledgerDir, year)
}

// MonthFilePath returns the ledger file path for a month.
// yearMonth should be in YYYY-MM format.
// Example: ~/payroll/book/ledger/2016/2016-01.beancount
func (p *PathResolver) MonthFilePath(yearMonth string) (string, error) {
	parts := strings.Split(yearMonth, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", yearMonth)
	}

	return filepath.Join(p.YearDir(parts[0]), yearMonth+".beancount"), nil
}

// ExportPath returns a file path inside the export directory.
func (p *PathResolver) ExportPath(name string) string {
	return filepath.Join(p.exportDir, name)
}

// PaystubPath returns the printable paystub path for an employee and pay date.
// Example: exports/paystubs/2016/2016-01-15-alice.pdf
func (p *PathResolver) PaystubPath(date time.Time, serial int, employee string) string {
	name := fmt.Sprintf("%s-%s.pdf", date.Format("2006-01-02"), sanitize(employee))
	if serial != 0 {
		name = fmt.Sprintf("%s-%d-%s.pdf", date.Format("2006-01-02"), serial, sanitize(employee))
	}
	return filepath.Join(p.exportDir, "paystubs", date.Format("2006"), name)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, name)
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
