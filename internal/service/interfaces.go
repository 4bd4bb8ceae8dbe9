// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/report"
)

// ConnectionStore is the persistence contract for platform connections.
type ConnectionStore interface {
	SaveConnection(ctx context.Context, conn *model.Connection) error
	ActiveConnection(ctx context.Context) (*model.Connection, error)
	ListConnections(ctx context.Context) ([]model.Connection, error)
	SetActiveConnection(ctx context.Context, id int64) error
	Close() error
}

// ReportSource fetches hierarchical reports from a QuickBooks-style platform.
type ReportSource interface {
	TransactionListReport(ctx context.Context, window model.PeriodWindow) (*report.Report, error)
	ProfitAndLossReport(ctx context.Context, window model.PeriodWindow) (*report.Report, error)
}

// BillSource fetches flat payable records, page by page, plus the converted
// profit-and-loss report from a Xero-style platform.
type BillSource interface {
	BillPage(ctx context.Context, page int) ([]report.FlatRecord, error)
	ProfitAndLossReport(ctx context.Context, window model.PeriodWindow) (*report.Report, error)
}
