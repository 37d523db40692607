// Package config provides configuration management for bookkeep.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/pathutil"
)

// Config represents the application configuration.
type Config struct {
	Book      BookConfig
	Backend   string
	LedgerAPI LedgerAPIConfig
	Debug     bool
}

// BookConfig locates the book's files and the tables it is computed with.
type BookConfig struct {
	Root           string
	DBPath         string
	LedgerDir      string
	ExportDir      string
	RulesFile      string
	AccountMapFile string
	Currency       string
}

// LedgerAPIConfig represents the external ledger configuration.
type LedgerAPIConfig struct {
	URL       string
	Token     string
	CompanyID int64
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	companyID, err := parseInt64Env("LEDGER_COMPANY_ID", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_COMPANY_ID: %w", err)
	}

	config := &Config{
		Book: BookConfig{
			Root:           getEnvOrDefault("BOOK_ROOT", "./book"),
			DBPath:         os.Getenv("BOOK_DB_PATH"),
			LedgerDir:      os.Getenv("BOOK_LEDGER_DIR"),
			ExportDir:      os.Getenv("BOOK_EXPORT_DIR"),
			RulesFile:      os.Getenv("RULES_FILE"),
			AccountMapFile: os.Getenv("ACCOUNT_MAP_FILE"),
			Currency:       getEnvOrDefault("CURRENCY", "CAD"),
		},
		Backend: getEnvOrDefault("BOOKKEEP_BACKEND", "file"),
		LedgerAPI: LedgerAPIConfig{
			URL:       os.Getenv("LEDGER_API_URL"),
			Token:     os.Getenv("LEDGER_API_TOKEN"),
			CompanyID: companyID,
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Paths returns a resolver for the configured book layout.
func (c *Config) Paths() *pathutil.PathResolver {
	return pathutil.New(pathutil.Config{
		Root:         c.Book.Root,
		LedgerDir:    c.Book.LedgerDir,
		DatabasePath: c.Book.DBPath,
		ExportDir:    c.Book.ExportDir,
	})
}

// Validate validates the configuration.
// It checks that every required field, given as a path such as
// []string{"ledgerapi", "url"}, is set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "book":
			switch path[1] {
			case "root":
				value = c.Book.Root
			case "dbPath":
				value = c.Book.DBPath
			case "rulesFile":
				value = c.Book.RulesFile
			case "accountMapFile":
				value = c.Book.AccountMapFile
			}
		case "ledgerapi":
			switch path[1] {
			case "url":
				value = c.LedgerAPI.URL
			case "token":
				value = c.LedgerAPI.Token
			case "companyId":
				if c.LedgerAPI.CompanyID != 0 {
					value = "set"
				}
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseInt64Env parses an int64 from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseInt64Env(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
