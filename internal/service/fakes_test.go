package service

import (
	"sort"
	"time"

	"github.com/finbase/payment-service/internal/apperrors"
	"github.com/finbase/payment-service/internal/models"
)

// fakeUserStore is an in-memory UserStore for tests
type fakeUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User), nextID: 1}
}

func (f *fakeUserStore) CreateUser(user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperrors.AlreadyExists("user already exists")
		}
	}
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.nextID++
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUserStore) FindUserByID(id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) ListUsers() ([]models.User, error) {
	var users []models.User
	for _, u := range f.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// fakePaymentStore is an in-memory PaymentStore for tests. It applies
// the same filter and ordering semantics as the SQL repository.
type fakePaymentStore struct {
	payments []models.Payment
	nextID   int64
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{nextID: 1}
}

func (f *fakePaymentStore) CreatePayment(payment *models.Payment) error {
	payment.ID = f.nextID
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	f.nextID++
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePaymentStore) FindPaymentByID(id int64) (*models.Payment, error) {
	for _, p := range f.payments {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("payment not found")
}

func (f *fakePaymentStore) ListPayments(userID int64, filter models.PaymentFilter) ([]models.Payment, error) {
	var result []models.Payment
	for _, p := range f.payments {
		if p.UserID != userID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Method != "" && p.Method != filter.Method {
			continue
		}
		if !filter.Since.IsZero() && p.CreatedAt.Before(filter.Since) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// fixedDecider always assigns the same status
type fixedDecider struct {
	status string
}

func (d fixedDecider) Decide() string {
	return d.status
}
