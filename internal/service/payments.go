package service

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finbase/payment-service/internal/models"
)

// PaymentService handles the per-user payment ledger
type PaymentService struct {
	users    UserStore
	payments PaymentStore
	decider  OutcomeDecider
	log      *logrus.Logger
}

// NewPaymentService initializes a new payment service
func NewPaymentService(users UserStore, payments PaymentStore, decider OutcomeDecider, log *logrus.Logger) *PaymentService {
	return &PaymentService{users: users, payments: payments, decider: decider, log: log}
}

// Create persists a payment owned by the authenticated user. Ownership
// comes from ownerID only; the request payload never names an owner.
func (s *PaymentService) Create(ownerID int64, amount float64, receiver, method string) (*models.Payment, error) {
	if _, err := s.users.FindUserByID(ownerID); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:   ownerID,
		Amount:   amount,
		Receiver: receiver,
		Method:   method,
		Status:   s.decider.Decide(),
	}
	if err := s.payments.CreatePayment(payment); err != nil {
		return nil, err
	}

	s.log.Infof("Payment %d created for user %d: %s", payment.ID, ownerID, payment.Status)
	return payment, nil
}

// List returns the owner's payments, most recent first, with optional
// AND-combined status and method filters
func (s *PaymentService) List(ownerID int64, status, method string) ([]models.Payment, error) {
	return s.payments.ListPayments(ownerID, models.PaymentFilter{Status: status, Method: method})
}

// Get returns a payment by ID. The lookup is deliberately unscoped:
// any authenticated caller can fetch any payment.
func (s *PaymentService) Get(id int64) (*models.Payment, error) {
	return s.payments.FindPaymentByID(id)
}

// Stats computes the aggregate report over the owner's payments
// matching the filters. An empty result set yields the all-zero
// report, not an error.
func (s *PaymentService) Stats(ownerID int64, status, method, timeRange string) (*models.StatsReport, error) {
	filter := models.PaymentFilter{Status: status, Method: method, Since: rangeStart(timeRange)}
	payments, err := s.payments.ListPayments(ownerID, filter)
	if err != nil {
		return nil, err
	}
	return buildReport(payments), nil
}

// DigestSince returns the owner's payments created at or after since,
// together with their aggregate report. Used by the daily digest job.
func (s *PaymentService) DigestSince(ownerID int64, since time.Time) ([]models.Payment, *models.StatsReport, error) {
	payments, err := s.payments.ListPayments(ownerID, models.PaymentFilter{Since: since})
	if err != nil {
		return nil, nil, err
	}
	return payments, buildReport(payments), nil
}

// rangeStart maps a time range keyword to its inclusive lower bound.
// "all", "" and unknown values apply no bound.
func rangeStart(timeRange string) time.Time {
	days := 0
	switch timeRange {
	case models.Range24h:
		days = 1
	case models.Range7d:
		days = 7
	case models.Range30d:
		days = 30
	}
	if days == 0 {
		return time.Time{}
	}
	return time.Now().AddDate(0, 0, -days)
}

func buildReport(payments []models.Payment) *models.StatsReport {
	report := &models.StatsReport{}
	report.Counts.Total = len(payments)
	if len(payments) == 0 {
		return report
	}

	minAmount := payments[0].Amount
	maxAmount := payments[0].Amount
	var totalRevenue float64

	for _, p := range payments {
		switch p.Status {
		case models.StatusSuccess:
			report.Counts.Success++
			totalRevenue += p.Amount
		case models.StatusFailed:
			report.Counts.Failed++
		case models.StatusPending:
			report.Counts.Pending++
		}

		switch p.Method {
		case models.MethodCard:
			report.Methods.Card++
		case models.MethodUPI:
			report.Methods.UPI++
		case models.MethodBankTransfer:
			report.Methods.BankTransfer++
		}

		if p.Amount < minAmount {
			minAmount = p.Amount
		}
		if p.Amount > maxAmount {
			maxAmount = p.Amount
		}
	}

	report.Amounts.TotalRevenue = totalRevenue
	report.Amounts.AverageAmount = round2(totalRevenue / float64(len(payments)))
	report.Amounts.MinAmount = minAmount
	report.Amounts.MaxAmount = maxAmount
	report.SuccessRate = round2(float64(report.Counts.Success) / float64(len(payments)) * 100)
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
