package report

import (
	"sort"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// maxBreakdownBuckets caps the breakdown at the ten largest categories.
// Percentages are computed over the pre-truncation total, so the returned
// percentages intentionally do not sum to 100 when buckets are cut off.
const maxBreakdownBuckets = 10

type bucketEntry struct {
	name  string
	value float64
}

// ExpenseBreakdown aggregates the expense and cost-of-goods sections of a
// hierarchical report (row vocabulary "Data") into ranked category buckets.
func ExpenseBreakdown(rep *Report) []model.ExpenseCategoryBucket {
	if rep == nil {
		return []model.ExpenseCategoryBucket{}
	}
	var entries []bucketEntry
	for _, root := range rep.Rows.Row {
		for _, section := range findSections(root, titleInSet(expenseSectionTitles)) {
			entries = append(entries, collectSectionEntries(section, RowTypeData)...)
		}
	}
	return rankBuckets(entries)
}

// OperatingExpenseBreakdown aggregates the operating-expense section of a
// converted flat-format report (row vocabulary "Row", section title matched
// by substring) and appends a separately retrieved cost-of-sales scalar as
// its own bucket when positive.
func OperatingExpenseBreakdown(rep *Report, totalCostOfSales float64) []model.ExpenseCategoryBucket {
	if rep == nil {
		return []model.ExpenseCategoryBucket{}
	}
	match := func(label string) bool {
		return strings.Contains(strings.ToLower(label), "less operating expenses")
	}
	var entries []bucketEntry
	for _, root := range rep.Rows.Row {
		for _, section := range findSections(root, match) {
			entries = append(entries, collectSectionEntries(section, RowTypeRow)...)
		}
	}
	if totalCostOfSales > 0 {
		entries = append(entries, bucketEntry{name: "Cost of Sales", value: totalCostOfSales})
	}
	return rankBuckets(entries)
}

// collectSectionEntries pulls name/value pairs from a matched section's
// direct data rows. Rows whose label contains "total" are summary rows and
// must not double-count into the breakdown; rows with a zero, negative, or
// unparsable value are dropped outright. That asymmetry with detail
// extraction (which keeps such rows when other fields identify them) is
// load-bearing dashboard behavior.
func collectSectionEntries(section ReportNode, rowType string) []bucketEntry {
	var entries []bucketEntry
	for _, row := range section.dataRows() {
		if row.Type != rowType || len(row.ColData) == 0 {
			continue
		}
		name := strings.TrimSpace(row.ColData[0].Value)
		if strings.Contains(strings.ToLower(name), "total") {
			continue
		}
		var value float64
		if len(row.ColData) > 1 {
			value = ParseAmount(row.ColData[1].Value)
		}
		if value <= 0 {
			continue
		}
		entries = append(entries, bucketEntry{name: name, value: value})
	}
	return entries
}

// rankBuckets computes percentage shares, orders by value descending, and
// truncates to the bucket cap.
func rankBuckets(entries []bucketEntry) []model.ExpenseCategoryBucket {
	var total float64
	for _, e := range entries {
		total += e.value
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].value > entries[j].value
	})
	if len(entries) > maxBreakdownBuckets {
		entries = entries[:maxBreakdownBuckets]
	}

	buckets := make([]model.ExpenseCategoryBucket, 0, len(entries))
	for _, e := range entries {
		var pct float64
		if total > 0 {
			pct = 100 * e.value / total
		}
		buckets = append(buckets, model.ExpenseCategoryBucket{
			Name:       e.name,
			Value:      e.value,
			Percentage: pct,
		})
	}
	return buckets
}

// TotalCostOfSales scans a report for the summary row labeled "Total Cost of
// Sales" and returns its value. Used by the flat-format breakdown path, where
// cost of sales lives outside the operating-expense section.
func TotalCostOfSales(rep *Report) (float64, bool) {
	if rep == nil {
		return 0, false
	}
	for _, root := range rep.Rows.Row {
		if v, ok := findTotalCostOfSales(root); ok {
			return v, true
		}
	}
	return 0, false
}

func findTotalCostOfSales(node ReportNode) (float64, bool) {
	if node.IsLeaf() {
		if strings.Contains(strings.ToLower(node.ColData[0].Value), "total cost of sales") && len(node.ColData) > 1 {
			return ParseAmount(node.ColData[1].Value), true
		}
		return 0, false
	}
	if node.Rows == nil {
		return 0, false
	}
	for _, child := range node.Rows.Row {
		if v, ok := findTotalCostOfSales(child); ok {
			return v, true
		}
	}
	return 0, false
}
