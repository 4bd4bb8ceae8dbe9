// Package quickbooks provides a client for the QuickBooks Online report API.
package quickbooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/report"
	"github.com/ledgerlens/ledgerlens/internal/service"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "https://quickbooks.api.intuit.com"
	minorVersion   = "70"
	dateLayout     = "2006-01-02"
)

// Config holds QuickBooks API configuration. Token acquisition and refresh
// live behind the TokenSource.
type Config struct {
	TokenSource oauth2.TokenSource
	BaseURL     string
	RealmID     string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.RealmID == "" {
		return fmt.Errorf("%w: quickbooks realm ID is required", common.ErrMissingConfig)
	}
	if c.TokenSource == nil {
		return fmt.Errorf("%w: quickbooks token source is required", common.ErrMissingConfig)
	}
	return nil
}

// Client implements the ReportSource interface.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	realmID    string
	retryOpts  common.RetryOptions
}

// NewClient creates a new QuickBooks client with the given configuration.
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
		realmID:    cfg.RealmID,
		logger:     slog.Default().With("component", "quickbooks"),
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// TransactionListReport fetches the transaction-list report for the window.
// The decoded tree is handed to the engine verbatim.
func (c *Client) TransactionListReport(ctx context.Context, window model.PeriodWindow) (*report.Report, error) {
	return c.fetchReport(ctx, "TransactionList", window)
}

// ProfitAndLossReport fetches the profit-and-loss report for the window.
func (c *Client) ProfitAndLossReport(ctx context.Context, window model.PeriodWindow) (*report.Report, error) {
	return c.fetchReport(ctx, "ProfitAndLoss", window)
}

func (c *Client) fetchReport(ctx context.Context, name string, window model.PeriodWindow) (*report.Report, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	endpoint := fmt.Sprintf("%s/v3/company/%s/reports/%s", c.baseURL, c.realmID, name)
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report URL: %w", err)
	}

	q := u.Query()
	q.Set("start_date", window.From.Format(dateLayout))
	q.Set("end_date", window.To.Format(dateLayout))
	q.Set("minorversion", minorVersion)
	u.RawQuery = q.Encode()

	c.logger.Info("Fetching report",
		"report", name,
		"start_date", window.From.Format(dateLayout),
		"end_date", window.To.Format(dateLayout))

	var rep report.Report
	retryErr := common.WithRetry(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if reqErr != nil {
			return fmt.Errorf("failed to create request: %w", reqErr)
		}
		req.Header.Set("Accept", "application/json")

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return fmt.Errorf("%w: %v", common.ErrPlatformConnection, doErr)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests {
			c.logger.Warn("Rate limit hit, will retry", "report", name)
			return &common.RetryableError{Err: common.ErrPlatformRateLimit, Retryable: true}
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("quickbooks API error: %d - %s", resp.StatusCode, string(body))
		}

		if decErr := json.NewDecoder(resp.Body).Decode(&rep); decErr != nil {
			return fmt.Errorf("failed to decode report: %w", decErr)
		}
		return nil
	}, c.retryOpts)

	if retryErr != nil {
		return nil, retryErr
	}

	return &rep, nil
}

// Ensure Client implements ReportSource.
var _ service.ReportSource = (*Client)(nil)
