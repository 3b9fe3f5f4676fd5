package ledgerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/asientoflow/asientoflow/internal/apperrors"
	"github.com/asientoflow/asientoflow/internal/core/domain"
	portsrepo "github.com/asientoflow/asientoflow/internal/core/ports/repositories"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/shopspring/decimal"
)

// ClientConfig represents the configuration for the ledger authority client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration // Default: 30 seconds
}

// Client is an HTTP client for the remote ledger authority. The bearer token
// of the inbound request travels in the context and is forwarded verbatim.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ portsrepo.LedgerRemote = (*Client)(nil)

// NewClient creates a new ledger authority client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    config.BaseURL,
	}
}

// do performs a JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, query.Encode())
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := middleware.GetTokenFromCtx(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach ledger authority: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.parseError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorResponse is the authority's error envelope. Message is surfaced
// verbatim to the operator.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) parseError(resp *http.Response) error {
	var envelope errorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Error == "" {
		envelope.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", apperrors.ErrSessionExpired, envelope.Error)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, envelope.Error)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, envelope.Error)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, envelope.Error)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, envelope.Error)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrRemote, envelope.Error)
	}
}

func filtersToQuery(filters domain.EntryFilters) url.Values {
	q := url.Values{}
	if filters.CompanyID != "" {
		q.Set("companyID", filters.CompanyID)
	}
	if filters.PeriodID != "" {
		q.Set("periodID", filters.PeriodID)
	}
	if filters.DateFrom != nil {
		q.Set("dateFrom", filters.DateFrom.Format("2006-01-02"))
	}
	if filters.DateTo != nil {
		q.Set("dateTo", filters.DateTo.Format("2006-01-02"))
	}
	if filters.Status != "" {
		q.Set("status", string(filters.Status))
	}
	if filters.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", filters.Limit))
	}
	if filters.NextToken != nil {
		q.Set("nextToken", *filters.NextToken)
	}
	return q
}

type listEntriesResponse struct {
	Entries   []domain.JournalEntry `json:"entries"`
	NextToken *string               `json:"nextToken"`
}

// ListEntries returns entry summaries matching the filters.
func (c *Client) ListEntries(ctx context.Context, filters domain.EntryFilters) ([]domain.JournalEntry, *string, error) {
	var resp listEntriesResponse
	if err := c.do(ctx, http.MethodGet, "/entries", filtersToQuery(filters), nil, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Entries, resp.NextToken, nil
}

// GetEntry returns the full entry with lines.
func (c *Client) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	if err := c.do(ctx, http.MethodGet, "/entries/"+entryID, nil, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateEntry persists a new DRAFT entry.
func (c *Client) CreateEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	var saved domain.JournalEntry
	if err := c.do(ctx, http.MethodPost, "/entries", nil, entry, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateEntry replaces a DRAFT entry's content.
func (c *Client) UpdateEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	var saved domain.JournalEntry
	if err := c.do(ctx, http.MethodPut, "/entries/"+entry.EntryID, nil, entry, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Validate runs the rule engine against an entry shape.
func (c *Client) Validate(ctx context.Context, entry domain.JournalEntry) (*domain.ValidationResult, error) {
	var result domain.ValidationResult
	if err := c.do(ctx, http.MethodPost, "/entries/validate", nil, entry, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetWarnings returns the current pre-posting findings for an entry.
func (c *Client) GetWarnings(ctx context.Context, entryID string) (*domain.WarningReport, error) {
	var report domain.WarningReport
	if err := c.do(ctx, http.MethodGet, "/entries/"+entryID+"/warnings", nil, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

type transitionEnvelope struct {
	Entry   *domain.JournalEntry `json:"entry"`
	Message string               `json:"message"`
}

func (e *transitionEnvelope) toResult() *domain.TransitionResult {
	return &domain.TransitionResult{Entry: e.Entry, Message: e.Message}
}

// PostEntry commits a draft, attaching warning acknowledgments.
func (c *Client) PostEntry(ctx context.Context, entryID string, confirmedWarningCodes []string) (*domain.TransitionResult, error) {
	body := map[string]any{"confirmedWarningCodes": confirmedWarningCodes}
	var envelope transitionEnvelope
	if err := c.do(ctx, http.MethodPost, "/entries/"+entryID+"/post", nil, body, &envelope); err != nil {
		return nil, err
	}
	return envelope.toResult(), nil
}

// VoidEntry voids a posted entry.
func (c *Client) VoidEntry(ctx context.Context, entryID string) (*domain.TransitionResult, error) {
	var envelope transitionEnvelope
	if err := c.do(ctx, http.MethodPost, "/entries/"+entryID+"/void", nil, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.toResult(), nil
}

// ReactivateEntry restores a voided entry to its pre-void status.
func (c *Client) ReactivateEntry(ctx context.Context, entryID string) (*domain.TransitionResult, error) {
	var envelope transitionEnvelope
	if err := c.do(ctx, http.MethodPost, "/entries/"+entryID+"/reactivate", nil, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.toResult(), nil
}

type correctionRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

// ReverseEntry creates a new posted entry offsetting the original.
func (c *Client) ReverseEntry(ctx context.Context, entryID string, date time.Time, reason string) (*domain.TransitionResult, error) {
	body := correctionRequest{Date: date.Format("2006-01-02"), Reason: reason}
	var envelope transitionEnvelope
	if err := c.do(ctx, http.MethodPost, "/entries/"+entryID+"/reverse", nil, body, &envelope); err != nil {
		return nil, err
	}
	return envelope.toResult(), nil
}

// AdjustEntry creates a new DRAFT entry referencing the original.
func (c *Client) AdjustEntry(ctx context.Context, entryID string, date time.Time, reason string) (*domain.TransitionResult, error) {
	body := correctionRequest{Date: date.Format("2006-01-02"), Reason: reason}
	var envelope transitionEnvelope
	if err := c.do(ctx, http.MethodPost, "/entries/"+entryID+"/adjust", nil, body, &envelope); err != nil {
		return nil, err
	}
	return envelope.toResult(), nil
}

type suggestEntryResponse struct {
	Suggestions []domain.SuggestedLine `json:"suggestions"`
}

// SuggestEntry proposes lines for a memo.
func (c *Client) SuggestEntry(ctx context.Context, companyID, memo string, amount *decimal.Decimal) ([]domain.SuggestedLine, error) {
	body := map[string]any{"companyID": companyID, "memo": memo}
	if amount != nil {
		body["amount"] = amount
	}
	var resp suggestEntryResponse
	if err := c.do(ctx, http.MethodPost, "/suggestions/entry", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

type suggestAccountsResponse struct {
	Accounts []domain.AccountHint `json:"accounts"`
}

// SuggestAccounts ranks accounts for a free-text query.
func (c *Client) SuggestAccounts(ctx context.Context, companyID, query string) ([]domain.AccountHint, error) {
	q := url.Values{}
	q.Set("companyID", companyID)
	q.Set("query", query)
	var resp suggestAccountsResponse
	if err := c.do(ctx, http.MethodGet, "/suggestions/accounts", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

type listTemplatesResponse struct {
	Templates []domain.Template `json:"templates"`
}

// ListTemplates returns the company's entry templates.
func (c *Client) ListTemplates(ctx context.Context, companyID string) ([]domain.Template, error) {
	q := url.Values{}
	q.Set("companyID", companyID)
	var resp listTemplatesResponse
	if err := c.do(ctx, http.MethodGet, "/templates", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Templates, nil
}

type listSimilarResponse struct {
	Entries []domain.SimilarEntry `json:"entries"`
}

// ListSimilar returns prior entries ranked by similarity to the memo.
func (c *Client) ListSimilar(ctx context.Context, companyID, memo string) ([]domain.SimilarEntry, error) {
	q := url.Values{}
	q.Set("companyID", companyID)
	q.Set("memo", memo)
	var resp listSimilarResponse
	if err := c.do(ctx, http.MethodGet, "/entries/similar", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// ExportSpreadsheet streams the server-rendered spreadsheet for the filters.
func (c *Client) ExportSpreadsheet(ctx context.Context, filters domain.EntryFilters) (io.ReadCloser, string, string, error) {
	endpoint := fmt.Sprintf("%s/entries/export?%s", c.baseURL, filtersToQuery(filters).Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to create request: %w", err)
	}
	if token, ok := middleware.GetTokenFromCtx(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to reach ledger authority: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", "", c.parseError(resp)
	}

	contentType := resp.Header.Get("Content-Type")
	filename := "entries.xlsx"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if name, ok := params["filename"]; ok {
			filename = name
		}
	}
	return resp.Body, contentType, filename, nil
}
