package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/finbase/payment-service/internal/config"
	"github.com/finbase/payment-service/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentDigest sends a daily activity summary to a user
func (s *Sender) SendPaymentDigest(to, username string, day time.Time, report *models.StatsReport) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Payment Activity Digest for %s", day.Format("2006-01-02"))

	body := fmt.Sprintf(
		"Dear %s,\n\n", username,
	)
	body += fmt.Sprintf(
		"Here is your payment activity for %s:\n"+
			"Payments: %d (%d succeeded, %d failed, %d pending)\n"+
			"Revenue from successful payments: %.2f\n"+
			"Success rate: %.2f%%\n",
		day.Format("2006-01-02"),
		report.Counts.Total, report.Counts.Success, report.Counts.Failed, report.Counts.Pending,
		report.Amounts.TotalRevenue, report.SuccessRate,
	)
	body += "\nBest regards,\nPayment Service"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", to, err)
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
