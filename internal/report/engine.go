package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// Engine errors. Malformed upstream data never produces an error - only a
// broken call contract does.
var (
	// ErrNoSource means the caller supplied neither a report tree nor a page
	// fetcher. This is the one fatal input condition.
	ErrNoSource = errors.New("report: no report tree or page fetcher supplied")
	// ErrUnknownPlatform means the platform discriminator is unrecognized.
	ErrUnknownPlatform = errors.New("report: unknown platform")
)

// Engine is the reconciliation facade. It routes extraction requests to the
// format-appropriate path and combines results into the canonical shape; no
// business logic lives here beyond routing. Engines are stateless and safe
// for concurrent use.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine() *Engine {
	return &Engine{
		logger: slog.Default().With("component", "report"),
	}
}

// CategoryRequest selects one expense category (hierarchical format) or one
// ledger account (flat format) to extract transactions for.
type CategoryRequest struct {
	Platform model.Platform
	Tree     *Report
	Fetch    PageFetcher
	Category string
	Account  AccountRef
	Window   model.PeriodWindow
}

// CategoryTransactions extracts the normalized transaction list for a
// category request. Missing or malformed upstream payloads yield an empty
// list so callers can render "no data" instead of failing the page.
func (e *Engine) CategoryTransactions(ctx context.Context, req CategoryRequest) ([]model.NormalizedTransaction, error) {
	if req.Tree == nil && req.Fetch == nil {
		return nil, ErrNoSource
	}

	switch req.Platform {
	case model.PlatformQuickBooks:
		return CategoryTransactions(req.Tree, req.Category), nil
	case model.PlatformXero:
		if req.Fetch == nil {
			return []model.NormalizedTransaction{}, nil
		}
		return reconcilePayables(ctx, req.Fetch, req.Account, req.Window, e.logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, req.Platform)
	}
}

// BreakdownRequest selects a fetched report to aggregate into expense
// buckets. TotalCostOfSales only applies to the flat-format path.
type BreakdownRequest struct {
	Platform         model.Platform
	Tree             *Report
	TotalCostOfSales float64
}

// Breakdown aggregates a report into the top expense category buckets,
// descending by value. A missing tree yields an empty list.
func (e *Engine) Breakdown(req BreakdownRequest) ([]model.ExpenseCategoryBucket, error) {
	switch req.Platform {
	case model.PlatformQuickBooks:
		return ExpenseBreakdown(req.Tree), nil
	case model.PlatformXero:
		return OperatingExpenseBreakdown(req.Tree, req.TotalCostOfSales), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, req.Platform)
	}
}
