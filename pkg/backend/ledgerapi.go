package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/ledger"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
)

// LedgerAPIConfig represents the configuration for the external ledger client.
type LedgerAPIConfig struct {
	APIURL      string
	AccessToken string
	CompanyID   int64
	Timeout     time.Duration // Default: 30 seconds
}

// LedgerAPI records transactions as manual journals in an external
// accounting service over HTTP/JSON.
type LedgerAPI struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	companyID   int64
}

// NewLedgerAPI creates a new external ledger client.
func NewLedgerAPI(config LedgerAPIConfig) *LedgerAPI {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &LedgerAPI{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     config.APIURL,
		accessToken: config.AccessToken,
		companyID:   config.CompanyID,
	}
}

// JournalDetail is one debit or credit line of a manual journal.
type JournalDetail struct {
	EntryType   string `json:"entry_type"` // debit or credit
	AccountName string `json:"account_item_name"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
}

// JournalRequest is the body of a journal creation request.
type JournalRequest struct {
	CompanyID   int64           `json:"company_id"`
	IssueDate   string          `json:"issue_date"` // YYYY-MM-DD
	Description string          `json:"description"`
	Partner     string          `json:"partner_name,omitempty"`
	Details     []JournalDetail `json:"details"`
}

// JournalResponse is the body of a successful journal creation.
type JournalResponse struct {
	Journal struct {
		ID int64 `json:"id"`
	} `json:"journal"`
}

// ErrorResponse is an error body returned by the service.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Name returns "ledgerapi".
func (c *LedgerAPI) Name() string {
	return string(KindLedgerAPI)
}

// Record creates a manual journal and returns the id the service assigned.
func (c *LedgerAPI) Record(ctx context.Context, txn ledger.Transaction) (string, error) {
	body, err := json.Marshal(c.journalRequest(txn))
	if err != nil {
		return "", fmt.Errorf("failed to encode journal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/1/journals", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.parseError(resp)
	}

	var journalResp JournalResponse
	if err := json.NewDecoder(resp.Body).Decode(&journalResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return strconv.FormatInt(journalResp.Journal.ID, 10), nil
}

// Remove deletes a journal by id.
func (c *LedgerAPI) Remove(ctx context.Context, id string) error {
	queryParams := url.Values{}
	queryParams.Set("company_id", strconv.FormatInt(c.companyID, 10))
	endpoint := fmt.Sprintf("%s/api/1/journals/%s?%s", c.baseURL, url.PathEscape(id), queryParams.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return c.parseError(resp)
}

func (c *LedgerAPI) journalRequest(txn ledger.Transaction) JournalRequest {
	req := JournalRequest{
		CompanyID:   c.companyID,
		IssueDate:   txn.Date.Format("2006-01-02"),
		Description: txn.Narration,
		Partner:     txn.Payee,
	}
	for _, p := range txn.Postings {
		entryType := "debit"
		if p.Amount.IsNegative() {
			entryType = "credit"
		}
		req.Details = append(req.Details, JournalDetail{
			EntryType:   entryType,
			AccountName: p.Account,
			Amount:      money.Format(p.Amount.Abs()),
			Currency:    p.Currency,
			Description: p.Comment,
		})
	}
	return req
}

func (c *LedgerAPI) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))
	req.Header.Set("Content-Type", "application/json")
}

// parseError parses an error response from the service.
func (c *LedgerAPI) parseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ledger API error (status %d): failed to read error response", resp.StatusCode)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("ledger API error (status %d): %s", resp.StatusCode, string(body))
	}

	if errResp.ErrorDescription != "" {
		return fmt.Errorf("ledger API error: %s - %s", errResp.Error, errResp.ErrorDescription)
	}

	return fmt.Errorf("ledger API error: %s", errResp.Error)
}
