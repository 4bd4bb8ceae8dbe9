// Package model defines the canonical entities shared across the application.
package model

import "time"

// NormalizedTransaction is the canonical transaction shape produced by the
// report engine regardless of which upstream platform the data came from.
// Amount and RunningBalance are always non-negative; debit/credit semantics
// are carried by the row's position in the source report, not by sign.
type NormalizedTransaction struct {
	Date            time.Time  `json:"date"`
	TransactionType string     `json:"transactionType"`
	DocNumber       string     `json:"docNumber"`
	PartyName       string     `json:"partyName"`
	ClassLabel      string     `json:"classLabel"`
	Memo            string     `json:"memo"`
	ContraAccount   string     `json:"contraAccount"`
	Amount          float64    `json:"amount"`
	RunningBalance  float64    `json:"runningBalance"`
	LineItems       []LineItem `json:"lineItems,omitempty"`
	SourceID        string     `json:"sourceId,omitempty"`
}

// LineItem is a single line of a flat record (e.g. one line of a bill),
// attached to a NormalizedTransaction for drill-down views.
type LineItem struct {
	Description string  `json:"description"`
	AccountID   string  `json:"accountId"`
	AccountCode string  `json:"accountCode"`
	Amount      float64 `json:"amount"`
}

// RecomputeRunningBalance rewrites RunningBalance as a cumulative sum of
// Amount over the slice in its current order. Callers sort first.
func RecomputeRunningBalance(txns []NormalizedTransaction) {
	var balance float64
	for i := range txns {
		balance += txns[i].Amount
		txns[i].RunningBalance = balance
	}
}
