package models

import "time"

// PaymentFilter narrows a payment query. Zero values mean "no
// constraint"; Status and Method combine with AND when both are set.
type PaymentFilter struct {
	Status string
	Method string
	Since  time.Time
}
