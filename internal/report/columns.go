package report

// Field names a canonical transaction field resolvable from a report column.
type Field string

// Canonical fields of a transaction data row.
const (
	FieldDate            Field = "date"
	FieldTransactionType Field = "transactionType"
	FieldDocNumber       Field = "docNumber"
	FieldPartyName       Field = "partyName"
	FieldClassLabel      Field = "classLabel"
	FieldMemo            Field = "memo"
	FieldContraAccount   Field = "contraAccount"
	FieldAmount          Field = "amount"
	FieldRunningBalance  Field = "runningBalance"
)

// colKeyFields maps the platform's declared column keys to canonical fields.
var colKeyFields = map[string]Field{
	"tx_date":         FieldDate,
	"txn_type":        FieldTransactionType,
	"doc_num":         FieldDocNumber,
	"name":            FieldPartyName,
	"klass_name":      FieldClassLabel,
	"memo":            FieldMemo,
	"split_acc":       FieldContraAccount,
	"subt_nat_amount": FieldAmount,
	"rbal_nat_amount": FieldRunningBalance,
}

// fallbackIndex is the well-known fixed column order used when a report
// variant omits column metadata entirely. Any upstream column reordering
// silently corrupts fixed-index extraction, which is why metadata-driven
// resolution is always preferred when metadata is present.
var fallbackIndex = map[Field]int{
	FieldDate:            0,
	FieldTransactionType: 1,
	FieldDocNumber:       2,
	FieldPartyName:       3,
	FieldClassLabel:      4,
	FieldMemo:            5,
	FieldContraAccount:   6,
	FieldAmount:          7,
	FieldRunningBalance:  8,
}

// ColumnKeyMap maps canonical fields to zero-based column indices. A nil map
// is valid and means "no metadata declared": lookups fall back to the fixed
// column order.
type ColumnKeyMap map[Field]int

// ResolveColumns builds a ColumnKeyMap from a report's column-metadata block.
// Each column's declared key is read from its "ColKey" metadata entry, with
// ColType as a secondary source. Returns nil when no column declares a key.
func ResolveColumns(cols []Column) ColumnKeyMap {
	m := make(ColumnKeyMap)
	for i, col := range cols {
		key := col.ColType
		for _, meta := range col.MetaData {
			if meta.Name == "ColKey" && meta.Value != "" {
				key = meta.Value
				break
			}
		}
		field, ok := colKeyFields[key]
		if !ok {
			continue
		}
		if _, seen := m[field]; !seen {
			m[field] = i
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// CellValue resolves a canonical field on a data row. The declared map wins;
// fields it does not cover use the fixed fallback order. Every schema gap
// (missing cell, short row, unknown field) degrades to "".
func (m ColumnKeyMap) CellValue(row ReportNode, f Field) string {
	idx, ok := m[f]
	if !ok {
		idx, ok = fallbackIndex[f]
		if !ok {
			return ""
		}
	}
	if idx < 0 || idx >= len(row.ColData) {
		return ""
	}
	return row.ColData[idx].Value
}
