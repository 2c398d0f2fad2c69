package models

import "time"

// Payment statuses assigned by the outcome decider.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Payment methods accepted at creation time.
const (
	MethodCard         = "card"
	MethodUPI          = "upi"
	MethodBankTransfer = "bank_transfer"
)

// Time ranges accepted by the stats endpoint.
const (
	Range24h = "24h"
	Range7d  = "7d"
	Range30d = "30d"
	RangeAll = "all"
)

// Payment represents a financial transaction owned by a single user
type Payment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Amount    float64   `json:"amount"`
	Receiver  string    `json:"receiver"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidStatus reports whether s is a known payment status
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusSuccess || s == StatusFailed
}

// ValidMethod reports whether m is a known payment method
func ValidMethod(m string) bool {
	return m == MethodCard || m == MethodUPI || m == MethodBankTransfer
}

// ValidTimeRange reports whether r is a known stats time range
func ValidTimeRange(r string) bool {
	return r == Range24h || r == Range7d || r == Range30d || r == RangeAll
}
