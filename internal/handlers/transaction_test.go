package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/jadewell/loon/internal/db"
	"github.com/jadewell/loon/internal/repositories"
	"github.com/jadewell/loon/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	database, err := db.ConnectSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate())
	t.Cleanup(func() { database.Close() })

	transactions := repositories.NewTransactionRepository(database)
	snapshots := services.NewFxSnapshotService(services.NewMockRateSource(), repositories.NewFxSnapshotRepository(database), nil)
	converter := services.NewCurrencyConverter(snapshots)
	materializer := services.NewOccurrenceMaterializer(services.NewScheduleExpander(), converter)
	scopes := services.NewScopeResolver(transactions)
	series := services.NewSeriesService(transactions, snapshots, converter, materializer, scopes, nil)

	handler := NewTransactionHandler(series, nil)
	router := mux.NewRouter()
	router.HandleFunc("/api/transactions", handler.HandleTransactions)
	router.HandleFunc("/api/transactions/{id}", handler.HandleTransaction)
	router.HandleFunc("/api/schedules/{ruleID}/occurrences", handler.HandleRuleOccurrences)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func createRecurring(t *testing.T, server *httptest.Server) *services.SeriesResult {
	t.Helper()
	resp := doJSON(t, "POST", server.URL+"/api/transactions", map[string]interface{}{
		"type":                  "expense",
		"date":                  "2025-01-15T09:00:00Z",
		"merchant":              "Hydro One",
		"original_currency":     "USD",
		"original_amount_cents": 1000,
		"is_scheduled":          true,
		"frequency":             "annually",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result services.SeriesResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return &result
}

func TestCreateRecurringOverHTTP(t *testing.T) {
	server := newTestServer(t)

	result := createRecurring(t, server)
	require.True(t, result.Seed.IsScheduled)
	require.NotNil(t, result.Seed.ScheduleRuleID)
	require.Len(t, result.Generated, 10)
	require.Equal(t, int64(1400), result.Seed.AmountCadCents)
}

func TestCreateRejectsDateWithoutOffset(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/transactions", map[string]interface{}{
		"type":                  "expense",
		"date":                  "2025-01-15T09:00:00",
		"original_currency":     "USD",
		"original_amount_cents": 1000,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateScheduledRequiresFrequency(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/transactions", map[string]interface{}{
		"type":                  "expense",
		"date":                  "2025-01-15T09:00:00Z",
		"original_currency":     "USD",
		"original_amount_cents": 1000,
		"is_scheduled":          true,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestsRequireUser(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest("POST", server.URL+"/api/transactions", bytes.NewBufferString("{}"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateOccurrenceOverHTTP(t *testing.T) {
	server := newTestServer(t)
	result := createRecurring(t, server)
	target := result.Generated[2]

	resp := doJSON(t, "PUT", server.URL+"/api/transactions/"+target.ID, map[string]interface{}{
		"scope": "all",
		"patch": map[string]interface{}{"category": "utilities"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Updated []json.RawMessage `json:"updated"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Updated, 8)
}

func TestUpdateUnknownTransactionIs404(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, "PUT", server.URL+"/api/transactions/missing", map[string]interface{}{
		"scope": "single",
		"patch": map[string]interface{}{"category": "x"},
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteAndListOverHTTP(t *testing.T) {
	server := newTestServer(t)
	result := createRecurring(t, server)
	ruleID := *result.Seed.ScheduleRuleID
	target := result.Generated[0]

	resp := doJSON(t, "DELETE", fmt.Sprintf("%s/api/transactions/%s?scope=single", server.URL, target.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		DeletedIDs []string `json:"deleted_ids"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, []string{target.ID}, body.DeletedIDs)

	resp = doJSON(t, "GET", server.URL+"/api/schedules/"+ruleID+"/occurrences", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed, 10)
}
