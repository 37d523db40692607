package ledgeremu

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/backend"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/ledger"
	"github.com/shunichi-ikebuchi/bookkeep/pkg/money"
)

func newServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	server := httptest.NewServer(NewRouter(st, []string{"secret"}, nil))
	t.Cleanup(server.Close)
	return server, st
}

func payrollTransaction() ledger.Transaction {
	return ledger.Transaction{
		Date:      time.Date(2016, time.January, 15, 0, 0, 0, 0, time.UTC),
		Narration: "Payroll 2016-01-15",
		Payee:     "alice",
		Postings: []ledger.Posting{
			{Account: "Expenses:Payroll:Wages", Amount: money.MustParse("480"), Currency: "CAD"},
			{Account: "Liabilities:Payroll:CPP", Amount: money.MustParse("-17.10"), Currency: "CAD"},
			{Account: "Assets:Bank:Chequing", Amount: money.MustParse("-462.90"), Currency: "CAD"},
		},
	}
}

func TestLedgerAPIAgainstEmulator(t *testing.T) {
	server, st := newServer(t)
	client := backend.NewLedgerAPI(backend.LedgerAPIConfig{APIURL: server.URL, AccessToken: "secret", CompanyID: 7})
	ctx := context.Background()

	id, err := client.Record(ctx, payrollTransaction())
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	journal, err := st.GetJournal(1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), journal.CompanyID)
	assert.Equal(t, "2016-01-15", journal.IssueDate)
	assert.Equal(t, "alice", journal.Partner)
	require.Len(t, journal.Details, 3)
	assert.Equal(t, "credit", journal.Details[2].EntryType)
	assert.Equal(t, "462.90", journal.Details[2].Amount)

	require.NoError(t, client.Remove(ctx, id))
	_, err = st.GetJournal(1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, client.Remove(ctx, id), backend.ErrTransactionNotFound)
}

func TestRemoveOtherCompanyJournal(t *testing.T) {
	server, _ := newServer(t)
	ctx := context.Background()
	owner := backend.NewLedgerAPI(backend.LedgerAPIConfig{APIURL: server.URL, AccessToken: "secret", CompanyID: 7})
	other := backend.NewLedgerAPI(backend.LedgerAPIConfig{APIURL: server.URL, AccessToken: "secret", CompanyID: 8})

	id, err := owner.Record(ctx, payrollTransaction())
	require.NoError(t, err)
	assert.ErrorIs(t, other.Remove(ctx, id), backend.ErrTransactionNotFound)
	assert.NoError(t, owner.Remove(ctx, id))
}

func TestRejectsUnknownToken(t *testing.T) {
	server, _ := newServer(t)
	client := backend.NewLedgerAPI(backend.LedgerAPIConfig{APIURL: server.URL, AccessToken: "wrong", CompanyID: 7})

	_, err := client.Record(context.Background(), payrollTransaction())
	require.Error(t, err)
	assert.Equal(t, "ledger API error: invalid_token - Invalid or expired token", err.Error())
}

func TestCreateValidation(t *testing.T) {
	server, _ := newServer(t)

	tests := []struct {
		name string
		req  backend.JournalRequest
	}{
		{"missing company", backend.JournalRequest{IssueDate: "2016-01-15"}},
		{"bad date", backend.JournalRequest{CompanyID: 7, IssueDate: "15/01/2016"}},
		{"unbalanced", backend.JournalRequest{CompanyID: 7, IssueDate: "2016-01-15", Details: []backend.JournalDetail{
			{EntryType: "debit", AccountName: "Expenses:Payroll:Wages", Amount: "480.00"},
			{EntryType: "credit", AccountName: "Assets:Bank:Chequing", Amount: "470.00"},
		}}},
		{"bad entry type", backend.JournalRequest{CompanyID: 7, IssueDate: "2016-01-15", Details: []backend.JournalDetail{
			{EntryType: "debit", AccountName: "Expenses:Payroll:Wages", Amount: "480.00"},
			{EntryType: "refund", AccountName: "Assets:Bank:Chequing", Amount: "480.00"},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.req)
			require.NoError(t, err)
			req, err := http.NewRequest(http.MethodPost, server.URL+"/api/1/journals", bytes.NewReader(body))
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer secret")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var errResp ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
			assert.Equal(t, "invalid_parameter", errResp.Error)
		})
	}
}

func TestListJournals(t *testing.T) {
	server, st := newServer(t)
	ctx := context.Background()
	for _, company := range []int64{7, 7, 8} {
		client := backend.NewLedgerAPI(backend.LedgerAPIConfig{APIURL: server.URL, AccessToken: "secret", CompanyID: company})
		_, err := client.Record(ctx, payrollTransaction())
		require.NoError(t, err)
	}

	company := int64(7)
	journals, err := st.ListJournals(&company)
	require.NoError(t, err)
	assert.Len(t, journals, 2)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/1/journals?company_id=8", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Journals []Journal `json:"journals"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Journals, 1)
	assert.Equal(t, int64(3), body.Journals[0].ID)
}

func TestRejectsEmptyToken(t *testing.T) {
	st, err := NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer st.Close()
	server := httptest.NewServer(NewRouter(st, []string{""}, nil))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/1/journals", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer ")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
