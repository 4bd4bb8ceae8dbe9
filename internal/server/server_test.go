package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	conn *model.Connection
	err  error
}

func (f *fakeStore) SaveConnection(_ context.Context, _ *model.Connection) error { return nil }
func (f *fakeStore) ActiveConnection(_ context.Context) (*model.Connection, error) {
	return f.conn, f.err
}
func (f *fakeStore) ListConnections(_ context.Context) ([]model.Connection, error) { return nil, nil }
func (f *fakeStore) SetActiveConnection(_ context.Context, _ int64) error          { return nil }
func (f *fakeStore) Close() error                                                  { return nil }

type fakeReportSource struct {
	txnList *report.Report
	pnl     *report.Report
	err     error
}

func (f *fakeReportSource) TransactionListReport(_ context.Context, _ model.PeriodWindow) (*report.Report, error) {
	return f.txnList, f.err
}
func (f *fakeReportSource) ProfitAndLossReport(_ context.Context, _ model.PeriodWindow) (*report.Report, error) {
	return f.pnl, f.err
}

type fakeBillSource struct {
	pages [][]report.FlatRecord
	pnl   *report.Report
}

func (f *fakeBillSource) BillPage(_ context.Context, page int) ([]report.FlatRecord, error) {
	if page < 1 || page > len(f.pages) {
		return nil, nil
	}
	return f.pages[page-1], nil
}
func (f *fakeBillSource) ProfitAndLossReport(_ context.Context, _ model.PeriodWindow) (*report.Report, error) {
	return f.pnl, nil
}

func quickbooksConn() *model.Connection {
	return &model.Connection{Platform: model.PlatformQuickBooks, TenantID: "realm123", Active: true}
}

func xeroConn() *model.Connection {
	return &model.Connection{Platform: model.PlatformXero, TenantID: "tenant-1", Active: true}
}

func advertisingReport() *report.Report {
	raw := `{
		"Columns": {"Column": [
			{"ColType": "tx_date", "MetaData": [{"Name": "ColKey", "Value": "tx_date"}]},
			{"ColType": "txn_type", "MetaData": [{"Name": "ColKey", "Value": "txn_type"}]},
			{"ColType": "name", "MetaData": [{"Name": "ColKey", "Value": "name"}]},
			{"ColType": "subt_nat_amount", "MetaData": [{"Name": "ColKey", "Value": "subt_nat_amount"}]}
		]},
		"Rows": {"Row": [
			{"type": "Section",
			 "Header": {"ColData": [{"value": "Advertising"}]},
			 "Rows": {"Row": [
				{"type": "Data", "ColData": [{"value": "2024-01-05"}, {"value": "Bill"}, {"value": "AdCo"}, {"value": "120.00"}]}
			 ]}}
		]}
	}`
	var rep report.Report
	if err := json.Unmarshal([]byte(raw), &rep); err != nil {
		panic(err)
	}
	return &rep
}

func doRequest(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestTransactionsHandler_ValidatesParams(t *testing.T) {
	srv := New(Config{Store: &fakeStore{conn: quickbooksConn()}, QuickBooks: &fakeReportSource{}})

	tests := []struct {
		name   string
		target string
	}{
		{name: "missing expenseName", target: "/api/expenses/transactions?fromDate=2024-01-01&toDate=2024-01-31"},
		{name: "missing dates", target: "/api/expenses/transactions?expenseName=Advertising"},
		{name: "bad fromDate", target: "/api/expenses/transactions?expenseName=Advertising&fromDate=Jan-1&toDate=2024-01-31"},
		{name: "bad toDate", target: "/api/expenses/transactions?expenseName=Advertising&fromDate=2024-01-01&toDate=Jan-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTransactionsHandler_NoActiveConnection(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("%w: active connection", common.ErrNotFound)}
	srv := New(Config{Store: store})

	rec := doRequest(t, srv, "/api/expenses/transactions?expenseName=Advertising&fromDate=2024-01-01&toDate=2024-01-31")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionsHandler_QuickBooks(t *testing.T) {
	srv := New(Config{
		Store:      &fakeStore{conn: quickbooksConn()},
		QuickBooks: &fakeReportSource{txnList: advertisingReport()},
	})

	rec := doRequest(t, srv, "/api/expenses/transactions?expenseName=advertising&fromDate=2024-01-01&toDate=2024-01-31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body struct {
		ExpenseName string                        `json:"expenseName"`
		Details     []model.NormalizedTransaction `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "advertising", body.ExpenseName)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "AdCo", body.Details[0].PartyName)
	assert.InDelta(t, 120.0, body.Details[0].Amount, 0.001)
}

func TestTransactionsHandler_QuickBooksFetchFailure(t *testing.T) {
	srv := New(Config{
		Store:      &fakeStore{conn: quickbooksConn()},
		QuickBooks: &fakeReportSource{err: fmt.Errorf("%w: socket closed", common.ErrPlatformConnection)},
	})

	rec := doRequest(t, srv, "/api/expenses/transactions?expenseName=Advertising&fromDate=2024-01-01&toDate=2024-01-31")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestTransactionsHandler_XeroRequiresAccount(t *testing.T) {
	srv := New(Config{Store: &fakeStore{conn: xeroConn()}, Xero: &fakeBillSource{}})

	rec := doRequest(t, srv, "/api/expenses/transactions?expenseName=Rent&fromDate=2024-01-01&toDate=2024-01-31")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionsHandler_Xero(t *testing.T) {
	bills := &fakeBillSource{
		pages: [][]report.FlatRecord{{
			{
				Date:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				Type:      "ACCPAY",
				DocNumber: "BILL-001",
				PartyName: "Acme Supplies",
				Subtotal:  80,
				LineItems: []model.LineItem{{AccountID: "acct-1", AccountCode: "400", Amount: 80}},
			},
		}},
	}
	srv := New(Config{Store: &fakeStore{conn: xeroConn()}, Xero: bills})

	rec := doRequest(t, srv, "/api/expenses/transactions?expenseName=Rent&accountCode=400&fromDate=2024-01-01&toDate=2024-01-31")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Details []model.NormalizedTransaction `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Details, 1)
	assert.Equal(t, "BILL-001", body.Details[0].DocNumber)
	assert.Equal(t, "400", body.Details[0].ContraAccount)
}

func TestBreakdownHandler_ValidatesTimeframe(t *testing.T) {
	srv := New(Config{Store: &fakeStore{conn: quickbooksConn()}, QuickBooks: &fakeReportSource{}})

	rec := doRequest(t, srv, "/api/expenses/breakdown")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, "/api/expenses/breakdown?timeframe=decade")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, "/api/expenses/breakdown?timeframe=custom")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBreakdownHandler_QuickBooks(t *testing.T) {
	raw := `{
		"Rows": {"Row": [
			{"type": "Section",
			 "Header": {"ColData": [{"value": "Expenses"}]},
			 "Rows": {"Row": [
				{"type": "Data", "ColData": [{"value": "Rent"}, {"value": "100.00"}]},
				{"type": "Data", "ColData": [{"value": "Total Expenses"}, {"value": "100.00"}]}
			 ]}}
		]}
	}`
	var pnl report.Report
	require.NoError(t, json.Unmarshal([]byte(raw), &pnl))

	srv := New(Config{
		Store:      &fakeStore{conn: quickbooksConn()},
		QuickBooks: &fakeReportSource{pnl: &pnl},
	})

	rec := doRequest(t, srv, "/api/expenses/breakdown?timeframe=month")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		PreviousPeriodData []model.ExpenseCategoryBucket `json:"previousPeriodData"`
		Timeframe          string                        `json:"timeframe"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "month", body.Timeframe)
	require.Len(t, body.PreviousPeriodData, 1)
	assert.Equal(t, "Rent", body.PreviousPeriodData[0].Name)
}

func TestBreakdownHandler_XeroAddsCostOfSales(t *testing.T) {
	pnl := &report.Report{
		Rows: report.Rows{Row: []report.ReportNode{
			{
				Type:   report.RowTypeSection,
				Header: &report.RowHeader{ColData: []report.Cell{{Value: "Less Operating Expenses"}}},
				Rows: &report.Rows{Row: []report.ReportNode{
					{Type: report.RowTypeRow, ColData: []report.Cell{{Value: "Rent"}, {Value: "100.00"}}},
				}},
			},
			{
				Type:   report.RowTypeSection,
				Header: &report.RowHeader{ColData: []report.Cell{{Value: "Cost of Sales"}}},
				Rows: &report.Rows{Row: []report.ReportNode{
					{Type: "SummaryRow", ColData: []report.Cell{{Value: "Total Cost of Sales"}, {Value: "300.00"}}},
				}},
			},
		}},
	}
	srv := New(Config{Store: &fakeStore{conn: xeroConn()}, Xero: &fakeBillSource{pnl: pnl}})

	rec := doRequest(t, srv, "/api/expenses/breakdown?timeframe=year")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		PreviousPeriodData []model.ExpenseCategoryBucket `json:"previousPeriodData"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.PreviousPeriodData, 2)
	assert.Equal(t, "Cost of Sales", body.PreviousPeriodData[0].Name)
	assert.Equal(t, "Rent", body.PreviousPeriodData[1].Name)
}
