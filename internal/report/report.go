// Package report implements the normalization and reconciliation engine that
// reduces the two upstream report formats to the canonical model types. It is
// pure computation over already-fetched payloads; all I/O happens behind the
// PageFetcher seam supplied by callers.
package report

import "strings"

// Row type vocabularies of the two upstream formats.
const (
	RowTypeSection = "Section"
	RowTypeData    = "Data"
	RowTypeRow     = "Row"
)

// Report is the envelope of a hierarchical report as returned by the
// QuickBooks-style report API. The JSON shape is decoded verbatim; the
// Xero-style client converts its own report payload into the same tree.
type Report struct {
	Columns Columns `json:"Columns"`
	Rows    Rows    `json:"Rows"`
}

// Columns is the column-metadata block of a report.
type Columns struct {
	Column []Column `json:"Column"`
}

// Column describes one report column. The declared semantic key lives either
// in a MetaData entry named "ColKey" or in ColType; some report variants omit
// both, in which case extraction falls back to the fixed column order.
type Column struct {
	ColTitle string      `json:"ColTitle"`
	ColType  string      `json:"ColType"`
	MetaData []MetaEntry `json:"MetaData,omitempty"`
}

// MetaEntry is a name/value pair attached to a column.
type MetaEntry struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// Rows wraps an ordered list of report nodes.
type Rows struct {
	Row []ReportNode `json:"Row"`
}

// ReportNode is one row of a report tree. A node is either a container
// (Header plus child Rows) or a leaf data row (ColData). Containers may nest
// arbitrarily deep.
type ReportNode struct {
	Type    string     `json:"type,omitempty"`
	Header  *RowHeader `json:"Header,omitempty"`
	ColData []Cell     `json:"ColData,omitempty"`
	Rows    *Rows      `json:"Rows,omitempty"`
	Summary *RowHeader `json:"Summary,omitempty"`
}

// RowHeader carries the label cells of a container node.
type RowHeader struct {
	ColData []Cell `json:"ColData"`
}

// Cell is a single report cell value with an optional opaque id.
type Cell struct {
	Value string `json:"value"`
	ID    string `json:"id,omitempty"`
}

// HeaderLabel returns the node's header label, or "" for headerless nodes.
func (n ReportNode) HeaderLabel() string {
	if n.Header == nil || len(n.Header.ColData) == 0 {
		return ""
	}
	return n.Header.ColData[0].Value
}

// IsLeaf reports whether the node is a leaf data row rather than a container.
func (n ReportNode) IsLeaf() bool {
	return len(n.ColData) > 0 && (n.Rows == nil || len(n.Rows.Row) == 0)
}

// children returns the node's container children in declaration order.
func (n ReportNode) children() []ReportNode {
	if n.Rows == nil {
		return nil
	}
	var out []ReportNode
	for _, child := range n.Rows.Row {
		if !child.IsLeaf() {
			out = append(out, child)
		}
	}
	return out
}

// dataRows returns the node's direct leaf rows in declaration order.
func (n ReportNode) dataRows() []ReportNode {
	if n.Rows == nil {
		return nil
	}
	var out []ReportNode
	for _, child := range n.Rows.Row {
		if child.IsLeaf() {
			out = append(out, child)
		}
	}
	return out
}

// headerEquals matches a header label against a target, case-folded and
// trimmed on both sides.
func headerEquals(label, target string) bool {
	return strings.EqualFold(strings.TrimSpace(label), strings.TrimSpace(target))
}
