package models

import "time"

// CreditCheck is the result of a cost estimation for a candidate repository.
// Fallback is true when the tree listing failed and the file count is an
// assumed figure rather than a real one.
type CreditCheck struct {
	Repo      string `json:"repo"`
	FileCount int    `json:"file_count"`
	Credits   int    `json:"credits"`
	Fallback  bool   `json:"fallback"`
}

// CreditEntry is one row of the workspace credit ledger. Amount is negative
// for debits.
type CreditEntry struct {
	ID        string    `bson:"_id" json:"id"`
	Repo      string    `bson:"repo,omitempty" json:"repo,omitempty"`
	Amount    int       `bson:"amount" json:"amount"`
	Reason    string    `bson:"reason" json:"reason"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CreditBalance is the aggregate view returned by GET /credits.
type CreditBalance struct {
	Balance int           `json:"balance"`
	Recent  []CreditEntry `json:"recent"`
}
