package model

// ExpenseCategoryBucket is one slice of an expense breakdown: a category
// name, its summed value, and its share of the pre-truncation total.
// Buckets are immutable once returned from the engine.
type ExpenseCategoryBucket struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}
