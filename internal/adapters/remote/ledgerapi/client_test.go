package ledgerapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/asientoflow/asientoflow/internal/adapters/remote/ledgerapi"
	"github.com/asientoflow/asientoflow/internal/apperrors"
	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ledgerapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return ledgerapi.NewClient(ledgerapi.ClientConfig{BaseURL: server.URL, Timeout: 5 * time.Second})
}

func TestGetEntry_ForwardsBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/entries/e1", r.URL.Path)
		json.NewEncoder(w).Encode(domain.JournalEntry{EntryID: "e1", Status: domain.StatusDraft})
	})

	ctx := middleware.WithToken(context.Background(), "token-123")
	entry, err := client.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", entry.EntryID)
	assert.Equal(t, "Bearer token-123", gotAuth)
}

func TestListEntries_QueryAndPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c1", r.URL.Query().Get("companyID"))
		assert.Equal(t, "POSTED", r.URL.Query().Get("status"))
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("dateFrom"))
		next := "page-2"
		json.NewEncoder(w).Encode(map[string]any{
			"entries":   []domain.JournalEntry{{EntryID: "e1"}},
			"nextToken": next,
		})
	})

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries, next, err := client.ListEntries(context.Background(), domain.EntryFilters{
		CompanyID: "c1",
		Status:    domain.StatusPosted,
		DateFrom:  &from,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, next)
	assert.Equal(t, "page-2", *next)
}

func TestPostEntry_SendsConfirmedCodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entries/e1/post", r.URL.Path)
		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"UNUSUAL_ACCOUNT"}, body["confirmedWarningCodes"])
		json.NewEncoder(w).Encode(map[string]any{
			"entry":   domain.JournalEntry{EntryID: "e1", Status: domain.StatusPosted},
			"message": "entry posted",
		})
	})

	result, err := client.PostEntry(context.Background(), "e1", []string{"UNUSUAL_ACCOUNT"})
	require.NoError(t, err)
	assert.Equal(t, "entry posted", result.Message)
	assert.Equal(t, domain.StatusPosted, result.Entry.Status)
}

func TestReverseEntry_SendsDateAndReason(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entries/e1/reverse", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2026-01-20", body["date"])
		assert.Equal(t, "wrong amount", body["reason"])
		json.NewEncoder(w).Encode(map[string]any{
			"entry": domain.JournalEntry{EntryID: "e2", Status: domain.StatusPosted},
		})
	})

	result, err := client.ReverseEntry(context.Background(), "e1", time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), "wrong amount")
	require.NoError(t, err)
	assert.Equal(t, "e2", result.Entry.EntryID)
}

func TestErrorMapping(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: apperrors.ErrSessionExpired},
		{name: "forbidden", status: http.StatusForbidden, wantErr: apperrors.ErrForbidden},
		{name: "not found", status: http.StatusNotFound, wantErr: apperrors.ErrNotFound},
		{name: "conflict", status: http.StatusConflict, wantErr: apperrors.ErrConflict},
		{name: "bad request", status: http.StatusBadRequest, wantErr: apperrors.ErrValidation},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, wantErr: apperrors.ErrValidation},
		{name: "server error", status: http.StatusInternalServerError, wantErr: apperrors.ErrRemote},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(map[string]string{"error": "the server's words"})
			})
			_, err := client.GetEntry(context.Background(), "e1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Contains(t, err.Error(), "the server's words", "the authority's literal message is preserved")
		})
	}
}

func TestErrorMapping_NonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway</html>"))
	})
	_, err := client.GetEntry(context.Background(), "e1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrRemote)
}

func TestValidate_RoundTrip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entries/validate", r.URL.Path)
		var entry domain.JournalEntry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&entry))
		assert.Len(t, entry.Lines, 2)
		json.NewEncoder(w).Encode(domain.ValidationResult{
			Warnings: []domain.ValidationWarning{{Code: "UNUSUAL_ACCOUNT", RequiresConfirmation: true}},
		})
	})

	result, err := client.Validate(context.Background(), domain.JournalEntry{
		Lines: []domain.EntryLine{
			{AccountCode: "601", Debit: decimal.RequireFromString("118.00")},
			{AccountCode: "42", Credit: decimal.RequireFromString("118.00")},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.True(t, result.Warnings[0].RequiresConfirmation)
}

func TestExportSpreadsheet_FilenameFromDisposition(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entries/export", r.URL.Path)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="enero.xlsx"`)
		w.Write([]byte("spreadsheet-bytes"))
	})

	stream, contentType, filename, err := client.ExportSpreadsheet(context.Background(), domain.EntryFilters{CompanyID: "c1"})
	require.NoError(t, err)
	defer stream.Close()

	assert.Contains(t, contentType, "spreadsheet")
	assert.Equal(t, "enero.xlsx", filename)
}
