package report

import (
	"time"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// expenseSectionTitles are the known expense and cost-of-goods section
// headers of the hierarchical report format, compared case-insensitively.
var expenseSectionTitles = map[string]struct{}{
	"EXPENSES":           {},
	"OTHER EXPENSES":     {},
	"COST OF GOODS SOLD": {},
	"COST OF SALES":      {},
	"COGS":               {},
}

const reportDateLayout = "2006-01-02"

// CategoryTransactions extracts the normalized transactions of one named
// category from a hierarchical report. The search is global: if the same
// category name appears under several parent sections, the rows of every
// occurrence are aggregated. A nil or empty report yields an empty slice.
func CategoryTransactions(rep *Report, category string) []model.NormalizedTransaction {
	txns := []model.NormalizedTransaction{}
	if rep == nil {
		return txns
	}

	cols := ResolveColumns(rep.Columns.Column)

	var rows []ReportNode
	for _, root := range rep.Rows.Row {
		rows = append(rows, findCategoryRows(root, category)...)
	}

	for _, row := range rows {
		// Sub-headers and summary rows under a category are not transactions.
		if row.Type != RowTypeData {
			continue
		}
		if tx, ok := normalizeDataRow(cols, row); ok {
			txns = append(txns, tx)
		}
	}
	return txns
}

// normalizeDataRow shapes one data row into a NormalizedTransaction. A row is
// kept if it has a parseable amount or at least one identifying field (date,
// transaction type, party name); rows with no content at all are dropped.
func normalizeDataRow(cols ColumnKeyMap, row ReportNode) (model.NormalizedTransaction, bool) {
	dateRaw := cols.CellValue(row, FieldDate)
	typeRaw := cols.CellValue(row, FieldTransactionType)
	partyRaw := cols.CellValue(row, FieldPartyName)
	amountRaw := cols.CellValue(row, FieldAmount)

	if !IsParseableAmount(amountRaw) && dateRaw == "" && typeRaw == "" && partyRaw == "" {
		return model.NormalizedTransaction{}, false
	}

	tx := model.NormalizedTransaction{
		TransactionType: typeRaw,
		DocNumber:       cols.CellValue(row, FieldDocNumber),
		PartyName:       partyRaw,
		ClassLabel:      cols.CellValue(row, FieldClassLabel),
		Memo:            cols.CellValue(row, FieldMemo),
		ContraAccount:   cols.CellValue(row, FieldContraAccount),
		Amount:          ParseAmount(amountRaw),
		RunningBalance:  ParseAmount(cols.CellValue(row, FieldRunningBalance)),
	}
	if dateRaw != "" {
		if d, err := time.Parse(reportDateLayout, dateRaw); err == nil {
			tx.Date = d
		}
	}
	return tx, true
}
