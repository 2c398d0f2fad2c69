package models

// StatsCounts holds per-status counts over the filtered payment set
type StatsCounts struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
}

// StatsAmounts holds amount aggregates over the filtered payment set
type StatsAmounts struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	AverageAmount float64 `json:"averageAmount"`
	MinAmount     float64 `json:"minAmount"`
	MaxAmount     float64 `json:"maxAmount"`
}

// StatsMethods holds per-method counts over the filtered payment set
type StatsMethods struct {
	Card         int `json:"card"`
	UPI          int `json:"upi"`
	BankTransfer int `json:"bank_transfer"`
}

// StatsReport is the aggregate view over a filtered, time-windowed
// subset of a user's payments. An all-zero report is the valid result
// for an empty subset.
type StatsReport struct {
	Counts      StatsCounts  `json:"counts"`
	Amounts     StatsAmounts `json:"amounts"`
	Methods     StatsMethods `json:"methods"`
	SuccessRate float64      `json:"successRate"`
}
