package service

import (
	"math/rand"

	"github.com/finbase/payment-service/internal/models"
)

// OutcomeDecider assigns a terminal status to a newly created payment.
// The production implementation simulates an external processor; swap
// it for a real integration without touching the payment service.
type OutcomeDecider interface {
	Decide() string
}

// WeightedDecider draws a status at random with success weighted twice
// as heavily as failed or pending
type WeightedDecider struct{}

var outcomes = []string{
	models.StatusSuccess,
	models.StatusSuccess,
	models.StatusFailed,
	models.StatusPending,
}

// Decide returns a randomly drawn payment status
func (WeightedDecider) Decide() string {
	return outcomes[rand.Intn(len(outcomes))]
}
