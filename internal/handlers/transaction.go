package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	apperrors "github.com/jadewell/loon/internal/errors"
	"github.com/jadewell/loon/internal/models"
	"github.com/jadewell/loon/internal/services"
)

type TransactionHandler struct {
	series services.SeriesService
	logger *zap.Logger
}

func NewTransactionHandler(series services.SeriesService, logger *zap.Logger) *TransactionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionHandler{series: series, logger: logger}
}

// createRequest is the wire shape of a create call. The date must carry an
// explicit offset; dates without a timezone marker are rejected here, before
// the engine sees them.
type createRequest struct {
	Type                string                   `json:"type"`
	Date                string                   `json:"date"`
	Merchant            *string                  `json:"merchant"`
	Place               *string                  `json:"place"`
	City                *string                  `json:"city"`
	Category            *string                  `json:"category"`
	Subcategory         *string                  `json:"subcategory"`
	Details             *string                  `json:"details"`
	OriginalCurrency    models.Currency          `json:"original_currency"`
	OriginalAmountCents int64                    `json:"original_amount_cents"`
	LineItems           []services.LineItemDraft `json:"line_items"`
	IsScheduled         bool                     `json:"is_scheduled"`
	Frequency           models.Frequency         `json:"frequency"`
}

type updateRequest struct {
	Scope services.Scope           `json:"scope"`
	Patch *models.TransactionPatch `json:"patch"`
	// Date arrives as a string so the explicit-offset rule applies here too.
	Date *string `json:"date"`
}

// HandleTransactions handles collection-level operations for transactions.
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case "POST":
		h.createSeries(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleTransaction handles item-level operations for a transaction.
func (h *TransactionHandler) HandleTransaction(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case "PUT":
		h.updateOccurrence(w, r)
	case "DELETE":
		h.deleteOccurrence(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleRuleOccurrences lists every occurrence of one schedule rule.
func (h *TransactionHandler) HandleRuleOccurrences(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	ruleID := mux.Vars(r)["ruleID"]

	txs, err := h.series.ListOccurrences(r.Context(), userID, ruleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(txs)
}

func (h *TransactionHandler) createSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	frequency := models.Frequency("")
	if req.IsScheduled {
		if req.Frequency == "" {
			h.writeError(w, r, &apperrors.ErrValidation{Field: "frequency", Message: "is required when is_scheduled is true"})
			return
		}
		frequency = req.Frequency
	}

	draft := &services.TransactionDraft{
		UserID:              userID,
		Type:                req.Type,
		Date:                date,
		Merchant:            req.Merchant,
		Place:               req.Place,
		City:                req.City,
		Category:            req.Category,
		Subcategory:         req.Subcategory,
		Details:             req.Details,
		OriginalCurrency:    req.OriginalCurrency,
		OriginalAmountCents: req.OriginalAmountCents,
		LineItems:           req.LineItems,
	}

	result, err := h.series.CreateSeries(r.Context(), userID, draft, frequency)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

func (h *TransactionHandler) updateOccurrence(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	targetID := mux.Vars(r)["id"]

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Patch == nil {
		req.Patch = &models.TransactionPatch{}
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		req.Patch.Date = &date
	}

	updated, err := h.series.UpdateOccurrence(r.Context(), userID, targetID, req.Scope, req.Patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"updated": updated})
}

func (h *TransactionHandler) deleteOccurrence(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	targetID := mux.Vars(r)["id"]
	scope := services.Scope(r.URL.Query().Get("scope"))

	deleted, err := h.series.DeleteOccurrence(r.Context(), userID, targetID, scope)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"deleted_ids": deleted})
}

// userID reads the already-authenticated user from the request. The engine
// trusts the surrounding system to have authenticated it.
func (h *TransactionHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		http.Error(w, "Missing X-User-ID header", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// writeError maps typed errors to status codes. Validation and not-found
// surface verbatim; everything else degrades to a generic failure and is
// logged with enough context to diagnose.
func (h *TransactionHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperrors.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case apperrors.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// parseDate requires an ISO-8601 timestamp with an explicit offset and
// normalizes it to UTC.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, &apperrors.ErrValidation{Field: "date", Message: "is required"}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &apperrors.ErrValidation{Field: "date", Message: "must be ISO-8601 with an explicit offset"}
	}
	return t.UTC(), nil
}
