package service

import "github.com/finbase/payment-service/internal/models"

// UserStore persists account records
type UserStore interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)
	ListUsers() ([]models.User, error)
}

// PaymentStore persists payment records
type PaymentStore interface {
	CreatePayment(payment *models.Payment) error
	FindPaymentByID(id int64) (*models.Payment, error)
	ListPayments(userID int64, filter models.PaymentFilter) ([]models.Payment, error)
}
