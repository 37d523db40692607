package ledgeremu

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/bookkeep/pkg/backend"
)

// NewRouter serves the journal endpoints under /api/1. Requests must carry
// one of tokens as a bearer token.
func NewRouter(st *Store, tokens []string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &JournalsHandler{store: st, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/1", func(r chi.Router) {
		r.Use(AuthMiddleware(tokens))
		r.Route("/journals", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Delete("/{id}", h.Delete)
		})
	})
	return r
}

// AuthMiddleware rejects requests without a known bearer token.
func AuthMiddleware(tokens []string) func(http.Handler) http.Handler {
	valid := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if t != "" {
			valid[t] = true
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format")
				return
			}
			if !valid[parts[1]] {
				writeJSONError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// JournalsHandler handles journal endpoints.
type JournalsHandler struct {
	store  *Store
	logger *slog.Logger
}

func companyParam(r *http.Request) (*int64, bool) {
	s := r.URL.Query().Get("company_id")
	if s == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// List handles GET /api/1/journals.
func (h *JournalsHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid company_id")
		return
	}

	journals, err := h.store.ListJournals(companyID)
	if err != nil {
		h.logger.Error("Failed to list journals", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to list journals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"journals": journals})
}

// Get handles GET /api/1/journals/{id}.
func (h *JournalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid journal ID")
		return
	}

	journal, err := h.store.GetJournal(id)
	if errors.Is(err, ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "not_found", "Journal not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get journal", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to get journal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"journal": journal})
}

// Create handles POST /api/1/journals.
func (h *JournalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req backend.JournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	if msg := validateJournal(req); msg != "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", msg)
		return
	}

	journal, err := h.store.CreateJournal(req)
	if err != nil {
		h.logger.Error("Failed to create journal", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to create journal")
		return
	}
	h.logger.Info("Journal created", "id", journal.ID, "company_id", journal.CompanyID, "issue_date", journal.IssueDate)
	writeJSON(w, http.StatusCreated, map[string]any{"journal": journal})
}

// Delete handles DELETE /api/1/journals/{id}?company_id=N.
func (h *JournalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid journal ID")
		return
	}
	companyID, ok := companyParam(r)
	if !ok || companyID == nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing company_id")
		return
	}

	err = h.store.DeleteJournal(*companyID, id)
	if errors.Is(err, ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "not_found", "Journal not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete journal", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to delete journal")
		return
	}
	h.logger.Info("Journal deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// validateJournal returns a description of what is wrong with req, or "".
// Debit and credit amounts must balance.
func validateJournal(req backend.JournalRequest) string {
	if req.CompanyID == 0 {
		return "Missing company_id"
	}
	if _, err := time.Parse("2006-01-02", req.IssueDate); err != nil {
		return "Invalid issue_date"
	}
	if len(req.Details) < 2 {
		return "A journal needs at least two details"
	}
	debits, credits := decimal.Zero, decimal.Zero
	for _, d := range req.Details {
		if d.AccountName == "" {
			return "Missing account_item_name"
		}
		amount, err := decimal.NewFromString(d.Amount)
		if err != nil || amount.IsNegative() {
			return "Invalid amount " + d.Amount
		}
		switch d.EntryType {
		case "debit":
			debits = debits.Add(amount)
		case "credit":
			credits = credits.Add(amount)
		default:
			return "Invalid entry_type " + d.EntryType
		}
	}
	if !debits.Equal(credits) {
		return "Debits " + debits.StringFixed(2) + " do not equal credits " + credits.StringFixed(2)
	}
	return ""
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}
