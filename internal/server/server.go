// Package server implements the HTTP API surface of the dashboard backend.
// Handlers own request validation and upstream fetching; all report shaping
// happens in the report engine.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/report"
	"github.com/ledgerlens/ledgerlens/internal/service"
)

const queryDateLayout = "2006-01-02"

// Config wires the server's collaborators. Either platform source may be nil
// when the corresponding platform has no active connection.
type Config struct {
	Store      service.ConnectionStore
	QuickBooks service.ReportSource
	Xero       service.BillSource
}

// Server routes dashboard API requests to the report engine.
type Server struct {
	engine     *report.Engine
	store      service.ConnectionStore
	quickbooks service.ReportSource
	xero       service.BillSource
	logger     *slog.Logger
	handler    http.Handler
}

// New creates a Server with its routes registered.
func New(cfg Config) *Server {
	s := &Server{
		engine:     report.NewEngine(),
		store:      cfg.Store,
		quickbooks: cfg.QuickBooks,
		xero:       cfg.Xero,
		logger:     slog.Default().With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/expenses/transactions", s.handleCategoryTransactions)
	mux.HandleFunc("GET /api/expenses/breakdown", s.handleBreakdown)
	s.handler = s.withRequestLogging(mux)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleCategoryTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	expenseName := q.Get("expenseName")
	if expenseName == "" {
		writeError(w, http.StatusBadRequest, "expenseName is required")
		return
	}
	fromRaw, toRaw := q.Get("fromDate"), q.Get("toDate")
	if fromRaw == "" || toRaw == "" {
		writeError(w, http.StatusBadRequest, "fromDate and toDate are required")
		return
	}
	from, err := time.Parse(queryDateLayout, fromRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "fromDate must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse(queryDateLayout, toRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "toDate must be YYYY-MM-DD")
		return
	}
	window := model.CustomWindow(from, to)

	conn, ok := s.activeConnection(w, r)
	if !ok {
		return
	}

	req := report.CategoryRequest{
		Platform: conn.Platform,
		Category: expenseName,
		Window:   window,
	}

	switch conn.Platform {
	case model.PlatformQuickBooks:
		if s.quickbooks == nil {
			writeError(w, http.StatusServiceUnavailable, "quickbooks is not configured")
			return
		}
		tree, fetchErr := s.quickbooks.TransactionListReport(r.Context(), window)
		if fetchErr != nil {
			s.logger.Error("report fetch failed", "platform", conn.Platform, "error", fetchErr)
			writeError(w, http.StatusBadGateway, "upstream report fetch failed")
			return
		}
		req.Tree = tree
	case model.PlatformXero:
		if s.xero == nil {
			writeError(w, http.StatusServiceUnavailable, "xero is not configured")
			return
		}
		account := report.AccountRef{ID: q.Get("accountId"), Code: q.Get("accountCode")}
		if account.IsZero() {
			writeError(w, http.StatusBadRequest, "accountId or accountCode is required")
			return
		}
		req.Fetch = s.xero.BillPage
		req.Account = account
	}

	details, err := s.engine.CategoryTransactions(r.Context(), req)
	if err != nil {
		s.logger.Error("category extraction failed", "expense_name", expenseName, "error", err)
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"expenseName": expenseName,
		"details":     details,
	})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	timeframe := q.Get("timeframe")
	if timeframe == "" {
		writeError(w, http.StatusBadRequest, "timeframe is required")
		return
	}
	window, err := parseTimeframe(timeframe, q.Get("fromDate"), q.Get("toDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, ok := s.activeConnection(w, r)
	if !ok {
		return
	}

	req := report.BreakdownRequest{Platform: conn.Platform}

	switch conn.Platform {
	case model.PlatformQuickBooks:
		if s.quickbooks == nil {
			writeError(w, http.StatusServiceUnavailable, "quickbooks is not configured")
			return
		}
		tree, fetchErr := s.quickbooks.ProfitAndLossReport(r.Context(), window)
		if fetchErr != nil {
			s.logger.Error("report fetch failed", "platform", conn.Platform, "error", fetchErr)
			writeError(w, http.StatusBadGateway, "upstream report fetch failed")
			return
		}
		req.Tree = tree
	case model.PlatformXero:
		if s.xero == nil {
			writeError(w, http.StatusServiceUnavailable, "xero is not configured")
			return
		}
		tree, fetchErr := s.xero.ProfitAndLossReport(r.Context(), window)
		if fetchErr != nil {
			s.logger.Error("report fetch failed", "platform", conn.Platform, "error", fetchErr)
			writeError(w, http.StatusBadGateway, "upstream report fetch failed")
			return
		}
		req.Tree = tree
		if tcos, found := report.TotalCostOfSales(tree); found {
			req.TotalCostOfSales = tcos
		}
	}

	buckets, err := s.engine.Breakdown(req)
	if err != nil {
		s.logger.Error("breakdown failed", "timeframe", timeframe, "error", err)
		writeError(w, http.StatusInternalServerError, "breakdown failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"previousPeriodData": buckets,
		"timeframe":          timeframe,
	})
}

// activeConnection resolves the active platform connection, writing the
// response itself on failure.
func (s *Server) activeConnection(w http.ResponseWriter, r *http.Request) (*model.Connection, bool) {
	conn, err := s.store.ActiveConnection(r.Context())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no active platform connection")
			return nil, false
		}
		s.logger.Error("connection lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "connection lookup failed")
		return nil, false
	}
	return conn, true
}

func parseTimeframe(timeframe, fromRaw, toRaw string) (model.PeriodWindow, error) {
	switch timeframe {
	case "month":
		return model.NewPeriodWindow(model.PeriodMonth, time.Now())
	case "year":
		return model.NewPeriodWindow(model.PeriodYear, time.Now())
	case "trailing12":
		return model.NewPeriodWindow(model.PeriodTrailing12, time.Now())
	case "custom":
		from, err := time.Parse(queryDateLayout, fromRaw)
		if err != nil {
			return model.PeriodWindow{}, errors.New("fromDate must be YYYY-MM-DD for a custom timeframe")
		}
		to, err := time.Parse(queryDateLayout, toRaw)
		if err != nil {
			return model.PeriodWindow{}, errors.New("toDate must be YYYY-MM-DD for a custom timeframe")
		}
		return model.CustomWindow(from, to), nil
	default:
		return model.PeriodWindow{}, errors.New("timeframe must be one of month, year, trailing12, custom")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
