// Package digest implements the scheduled daily payment-activity
// digest emails.
package digest

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finbase/payment-service/internal/models"
	"github.com/finbase/payment-service/internal/service"
)

// Sender delivers a digest email to one user
type Sender interface {
	SendPaymentDigest(to, username string, day time.Time, report *models.StatsReport) error
}

// Job aggregates the last day of each user's payments and mails a
// summary to users with activity
type Job struct {
	users    service.UserStore
	payments *service.PaymentService
	sender   Sender
	log      *logrus.Logger
}

// NewJob initializes a new digest job
func NewJob(users service.UserStore, payments *service.PaymentService, sender Sender, log *logrus.Logger) *Job {
	return &Job{users: users, payments: payments, sender: sender, log: log}
}

// Run sends a digest to every user with payments in the last 24 hours.
// A failure for one user is logged and does not stop the run.
func (j *Job) Run() {
	users, err := j.users.ListUsers()
	if err != nil {
		j.log.Errorf("Digest run failed to list users: %v", err)
		return
	}

	since := time.Now().AddDate(0, 0, -1)
	sent := 0
	for _, user := range users {
		payments, report, err := j.payments.DigestSince(user.ID, since)
		if err != nil {
			j.log.Errorf("Digest aggregation failed for user %d: %v", user.ID, err)
			continue
		}
		if len(payments) == 0 {
			continue
		}
		if err := j.sender.SendPaymentDigest(user.Email, user.Username, since, report); err != nil {
			// Already logged by the sender
			continue
		}
		sent++
	}

	j.log.Infof("Digest run complete: %d of %d users notified", sent, len(users))
}
