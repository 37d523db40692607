package backend

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/ledger"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/pathutil"
)

const markerPrefix = "; txn:"

// File is a flat-file Beancount ledger with one file per month.
// Each entry is preceded by a "; txn:<id>" marker line and followed by a
// blank line.
type File struct {
	pathResolver *pathutil.PathResolver
	now          func() time.Time
}

// NewFile creates a new File backend rooted at the resolver's ledger dir.
func NewFile(pathResolver *pathutil.PathResolver) *File {
	return &File{
		pathResolver: pathResolver,
		now:          time.Now,
	}
}

// Name returns "file".
func (f *File) Name() string {
	return string(KindFile)
}

// Record appends txn to the file of its month.
func (f *File) Record(_ context.Context, txn ledger.Transaction) (string, error) {
	id := txn.ID
	if id == "" {
		id = newID()
	}
	if err := f.AppendTransaction(txn.YearMonth(), ledger.Format(txn), "txn:"+id); err != nil {
		return "", fmt.Errorf("failed to record transaction: %w", err)
	}
	return id, nil
}

// Remove deletes the entry marked with id.
func (f *File) Remove(_ context.Context, id string) error {
	files, err := f.monthFiles()
	if err != nil {
		return err
	}
	marker := markerPrefix + id
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		content, ok := removeEntry(string(data), marker)
		if !ok {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
}

// removeEntry drops the marker line and the entry up to and including the
// blank line that ends it.
func removeEntry(content, marker string) (string, bool) {
	lines := strings.SplitAfter(content, "\n")
	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, "\n") == marker {
			start = i
			break
		}
	}
	if start < 0 {
		return content, false
	}
	end := start + 1
	for end < len(lines) && strings.TrimSpace(lines[end]) != "" {
		end++
	}
	if end < len(lines) {
		end++
	}
	return strings.Join(append(lines[:start:start], lines[end:]...), ""), true
}

// AppendTransaction appends a rendered transaction to a monthly file.
// It creates the file if it doesn't exist.
func (f *File) AppendTransaction(yearMonth, transaction string, comment ...string) error {
	filePath, err := f.pathResolver.MonthFilePath(yearMonth)
	if err != nil {
		return fmt.Errorf("failed to get month file path: %w", err)
	}

	if err := f.EnsureMonthFile(yearMonth); err != nil {
		return fmt.Errorf("failed to ensure month file: %w", err)
	}

	var content string
	if len(comment) > 0 && comment[0] != "" {
		content += fmt.Sprintf("; %s\n", comment[0])
	}
	content += transaction
	if len(transaction) > 0 && transaction[len(transaction)-1] != '\n' {
		content += "\n"
	}
	content += "\n"

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file for appending: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(content); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}

// ReadMonthFile reads the content of a monthly file.
// Returns empty string if file doesn't exist.
func (f *File) ReadMonthFile(yearMonth string) (string, error) {
	filePath, err := f.pathResolver.MonthFilePath(yearMonth)
	if err != nil {
		return "", fmt.Errorf("failed to get month file path: %w", err)
	}

	if !f.pathResolver.FileExists(filePath) {
		return "", nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return string(data), nil
}

// EnsureMonthFile ensures a monthly file exists with header.
func (f *File) EnsureMonthFile(yearMonth string) error {
	filePath, err := f.pathResolver.MonthFilePath(yearMonth)
	if err != nil {
		return fmt.Errorf("failed to get month file path: %w", err)
	}

	if f.pathResolver.FileExists(filePath) {
		return nil
	}

	if err := f.pathResolver.EnsureParentDir(filePath); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	header := fmt.Sprintf("; Payroll ledger for %s\n; Generated at %s\n\n", yearMonth, f.now().Format(time.RFC3339))
	if err := os.WriteFile(filePath, []byte(header), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// monthFiles lists every monthly ledger file, oldest first.
func (f *File) monthFiles() ([]string, error) {
	root := f.pathResolver.LedgerDir()
	if !f.pathResolver.FileExists(root) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".beancount" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
