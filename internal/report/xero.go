package report

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// PageSize is the fixed page size of the flat-record collection API. A page
// carrying fewer records signals exhaustion.
const PageSize = 20

// FlatRecord is one transactional record (e.g. a bill) from the flat,
// paginated collection format. The fetch layer decodes platform payloads into
// this shape; the reconciler never sees raw wire data.
type FlatRecord struct {
	Date      time.Time
	Type      string
	Status    string
	SourceID  string
	DocNumber string
	PartyName string
	LineItems []model.LineItem
	Subtotal  float64
}

// PageFetcher returns one page of flat records. Pages are numbered from 1 and
// fetched sequentially; the upstream applies per-minute rate limits, so the
// reconciler never fetches in parallel.
type PageFetcher func(ctx context.Context, page int) ([]FlatRecord, error)

// AccountRef selects a ledger account by platform identifier and/or code.
type AccountRef struct {
	ID   string
	Code string
}

// IsZero reports whether the ref selects nothing.
func (a AccountRef) IsZero() bool {
	return a.ID == "" && a.Code == ""
}

func (a AccountRef) matches(line model.LineItem) bool {
	if a.ID != "" && line.AccountID == a.ID {
		return true
	}
	if a.Code != "" && line.AccountCode == a.Code {
		return true
	}
	return false
}

// payableRecordTypes is the record-type set that participates in expense
// extraction.
var payableRecordTypes = map[string]struct{}{
	"ACCPAY": {},
}

// reconcilePayables accumulates payable records across pages, filters them to
// the window and target account, and derives normalized transactions. A
// page-fetch failure ends pagination and keeps what was accumulated; the
// caller owns logging the underlying error. The running balance is recomputed
// in one pass after the final date sort, since accumulation order and sort
// order can differ.
func reconcilePayables(ctx context.Context, fetch PageFetcher, account AccountRef, window model.PeriodWindow, logger *slog.Logger) []model.NormalizedTransaction {
	var kept []FlatRecord
	for page := 1; ; page++ {
		records, err := fetch(ctx, page)
		if err != nil {
			logger.Warn("page fetch failed, using accumulated records",
				"page", page,
				"accumulated", len(kept),
				"error", err)
			break
		}
		for _, rec := range records {
			if _, ok := payableRecordTypes[rec.Type]; !ok {
				continue
			}
			if !window.Contains(rec.Date) {
				continue
			}
			kept = append(kept, rec)
		}
		if len(records) < PageSize {
			break
		}
	}

	txns := []model.NormalizedTransaction{}
	for _, rec := range kept {
		if !lineItemsMatch(rec.LineItems, account) {
			continue
		}
		txns = append(txns, model.NormalizedTransaction{
			Date:            rec.Date,
			TransactionType: rec.Type,
			DocNumber:       rec.DocNumber,
			PartyName:       rec.PartyName,
			ContraAccount:   account.Code,
			Amount:          ParseAmount(rec.Subtotal),
			LineItems:       rec.LineItems,
			SourceID:        rec.SourceID,
		})
	}

	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date)
	})
	model.RecomputeRunningBalance(txns)

	return txns
}

func lineItemsMatch(lines []model.LineItem, account AccountRef) bool {
	for _, line := range lines {
		if account.matches(line) {
			return true
		}
	}
	return false
}
