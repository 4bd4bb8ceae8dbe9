// Package xero provides a client for the Xero accounting API: paginated
// payable invoices plus the profit-and-loss report converted into the
// engine's report tree.
package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/report"
	"github.com/ledgerlens/ledgerlens/internal/service"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "https://api.xero.com"
	dateLayout     = "2006-01-02"
	// billStatuses are the invoice statuses that participate in extraction.
	billStatuses = "AUTHORISED,PAID"
)

// Config holds Xero API configuration.
type Config struct {
	TokenSource oauth2.TokenSource
	BaseURL     string
	TenantID    string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.TenantID == "" {
		return fmt.Errorf("%w: xero tenant ID is required", common.ErrMissingConfig)
	}
	if c.TokenSource == nil {
		return fmt.Errorf("%w: xero token source is required", common.ErrMissingConfig)
	}
	return nil
}

// Client implements the BillSource interface.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	tenantID   string
	retryOpts  common.RetryOptions
}

// NewClient creates a new Xero client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := oauth2.NewClient(context.Background(), cfg.TokenSource)
	httpClient.Timeout = 30 * time.Second

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		tenantID:   cfg.TenantID,
		logger:     slog.Default().With("component", "xero"),
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// Xero API response shapes.
type invoicesResponse struct {
	Invoices []invoice `json:"Invoices"`
}

type invoice struct {
	Type          string     `json:"Type"`
	InvoiceID     string     `json:"InvoiceID"`
	InvoiceNumber string     `json:"InvoiceNumber"`
	Status        string     `json:"Status"`
	DateString    string     `json:"DateString"`
	Date          string     `json:"Date"`
	Contact       contact    `json:"Contact"`
	LineItems     []lineItem `json:"LineItems"`
	SubTotal      float64    `json:"SubTotal"`
}

type contact struct {
	Name string `json:"Name"`
}

type lineItem struct {
	Description string  `json:"Description"`
	AccountID   string  `json:"AccountID"`
	AccountCode string  `json:"AccountCode"`
	LineAmount  float64 `json:"LineAmount"`
}

// BillPage fetches one page of payable invoices. The method value satisfies
// report.PageFetcher, so the engine drives pagination and owns the date and
// account filtering.
func (c *Client) BillPage(ctx context.Context, page int) ([]report.FlatRecord, error) {
	endpoint := c.baseURL + "/api.xro/2.0/Invoices"
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoices URL: %w", err)
	}

	q := u.Query()
	q.Set("where", `Type=="ACCPAY"`)
	q.Set("Statuses", billStatuses)
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(report.PageSize))
	u.RawQuery = q.Encode()

	var decoded invoicesResponse
	retryErr := common.WithRetry(ctx, func() error {
		return c.getJSON(ctx, u.String(), &decoded)
	}, c.retryOpts)
	if retryErr != nil {
		return nil, retryErr
	}

	c.logger.Debug("Fetched invoice page", "page", page, "count", len(decoded.Invoices))

	records := make([]report.FlatRecord, 0, len(decoded.Invoices))
	for _, inv := range decoded.Invoices {
		records = append(records, report.FlatRecord{
			Date:      parseInvoiceDate(inv),
			Type:      inv.Type,
			Status:    inv.Status,
			SourceID:  inv.InvoiceID,
			DocNumber: inv.InvoiceNumber,
			PartyName: inv.Contact.Name,
			LineItems: convertLineItems(inv.LineItems),
			Subtotal:  inv.SubTotal,
		})
	}
	return records, nil
}

type reportsResponse struct {
	Reports []xeroReport `json:"Reports"`
}

type xeroReport struct {
	ReportName string    `json:"ReportName"`
	Rows       []xeroRow `json:"Rows"`
}

type xeroRow struct {
	RowType string     `json:"RowType"`
	Title   string     `json:"Title"`
	Cells   []xeroCell `json:"Cells"`
	Rows    []xeroRow  `json:"Rows"`
}

type xeroCell struct {
	Value string `json:"Value"`
}

// ProfitAndLossReport fetches the P&L report and converts it into the
// engine's report tree, preserving the "Row" row-type vocabulary.
func (c *Client) ProfitAndLossReport(ctx context.Context, window model.PeriodWindow) (*report.Report, error) {
	endpoint := c.baseURL + "/api.xro/2.0/Reports/ProfitAndLoss"
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report URL: %w", err)
	}

	q := u.Query()
	q.Set("fromDate", window.From.Format(dateLayout))
	q.Set("toDate", window.To.Format(dateLayout))
	u.RawQuery = q.Encode()

	c.logger.Info("Fetching profit and loss report",
		"from_date", window.From.Format(dateLayout),
		"to_date", window.To.Format(dateLayout))

	var decoded reportsResponse
	retryErr := common.WithRetry(ctx, func() error {
		return c.getJSON(ctx, u.String(), &decoded)
	}, c.retryOpts)
	if retryErr != nil {
		return nil, retryErr
	}

	if len(decoded.Reports) == 0 {
		// An empty payload is rendered as "no data" downstream, not an error.
		return &report.Report{}, nil
	}

	return convertReport(decoded.Reports[0]), nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Xero-Tenant-Id", c.tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPlatformConnection, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("Rate limit hit, will retry")
		return &common.RetryableError{Err: common.ErrPlatformRateLimit, Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("xero API error: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// convertReport maps a Xero report payload onto the engine's tree. Sections
// become container nodes with their Title as header label; leaf rows keep
// their RowType and carry their cells as ColData.
func convertReport(src xeroReport) *report.Report {
	rep := &report.Report{}
	for _, row := range src.Rows {
		rep.Rows.Row = append(rep.Rows.Row, convertRow(row))
	}
	return rep
}

func convertRow(src xeroRow) report.ReportNode {
	if len(src.Rows) == 0 && src.Title == "" {
		return report.ReportNode{
			Type:    src.RowType,
			ColData: convertCells(src.Cells),
		}
	}

	node := report.ReportNode{
		Type: report.RowTypeSection,
		Header: &report.RowHeader{
			ColData: []report.Cell{{Value: src.Title}},
		},
		Rows: &report.Rows{},
	}
	for _, child := range src.Rows {
		node.Rows.Row = append(node.Rows.Row, convertRow(child))
	}
	return node
}

func convertCells(cells []xeroCell) []report.Cell {
	out := make([]report.Cell, 0, len(cells))
	for _, cell := range cells {
		out = append(out, report.Cell{Value: cell.Value})
	}
	return out
}

func convertLineItems(lines []lineItem) []model.LineItem {
	out := make([]model.LineItem, 0, len(lines))
	for _, line := range lines {
		out = append(out, model.LineItem{
			Description: line.Description,
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			Amount:      line.LineAmount,
		})
	}
	return out
}

// parseInvoiceDate handles both date encodings the API emits: an ISO
// DateString and the legacy /Date(milliseconds+offset)/ form.
func parseInvoiceDate(inv invoice) time.Time {
	if inv.DateString != "" {
		if t, err := time.Parse("2006-01-02T15:04:05", inv.DateString); err == nil {
			return t
		}
	}
	if ms, ok := extractEpochMillis(inv.Date); ok {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

func extractEpochMillis(raw string) (int64, bool) {
	s := strings.TrimSuffix(strings.TrimPrefix(raw, "/Date("), ")/")
	if s == raw {
		return 0, false
	}
	if idx := strings.IndexAny(s, "+-"); idx > 0 {
		s = s[:idx]
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

// Ensure Client implements BillSource.
var _ service.BillSource = (*Client)(nil)
