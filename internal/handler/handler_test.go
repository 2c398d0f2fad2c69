package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/finbase/payment-service/internal/apperrors"
	"github.com/finbase/payment-service/internal/middleware"
	"github.com/finbase/payment-service/internal/models"
	"github.com/finbase/payment-service/internal/service"
	"github.com/finbase/payment-service/internal/token"
)

type memUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func (m *memUserStore) CreateUser(user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperrors.AlreadyExists("user already exists")
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memUserStore) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (m *memUserStore) FindUserByID(id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	copied := *u
	return &copied, nil
}

func (m *memUserStore) ListUsers() ([]models.User, error) {
	var users []models.User
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type memPaymentStore struct {
	payments []models.Payment
	nextID   int64
}

func (m *memPaymentStore) CreatePayment(payment *models.Payment) error {
	payment.ID = m.nextID
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	m.nextID++
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *memPaymentStore) FindPaymentByID(id int64) (*models.Payment, error) {
	for _, p := range m.payments {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("payment not found")
}

func (m *memPaymentStore) ListPayments(userID int64, filter models.PaymentFilter) ([]models.Payment, error) {
	var result []models.Payment
	for _, p := range m.payments {
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

type alwaysSuccess struct{}

func (alwaysSuccess) Decide() string { return models.StatusSuccess }

// testServer wires the handler behind the same router and middleware
// layout as cmd/api
func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := &memUserStore{users: make(map[int64]*models.User), nextID: 1}
	payments := &memPaymentStore{nextID: 1}
	authority := token.NewAuthority("test-secret", time.Hour)
	authSvc := service.NewAuthService(users, authority, logger)
	paymentSvc := service.NewPaymentService(users, payments, alwaysSuccess{}, logger)
	h := NewHandler(authSvc, paymentSvc, logger)

	r := mux.NewRouter()
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(authority))
	authRouter.HandleFunc("/me", h.Me).Methods("GET")
	authRouter.HandleFunc("/payments", h.CreatePayment).Methods("POST")
	authRouter.HandleFunc("/payments", h.ListPayments).Methods("GET")
	authRouter.HandleFunc("/payments/stats", h.PaymentStats).Methods("GET")
	authRouter.HandleFunc("/payments/{id:[0-9]+}", h.GetPayment).Methods("GET")

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url, bearer string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func registerUser(t *testing.T, serverURL, email string) service.AuthResponse {
	t.Helper()
	resp, raw := doJSON(t, "POST", serverURL+"/register", "", map[string]string{
		"username": "tester",
		"email":    email,
		"password": "password1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", resp.StatusCode, raw)
	}
	var auth service.AuthResponse
	if err := json.Unmarshal(raw, &auth); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	return auth
}

func TestRegisterLoginMe(t *testing.T) {
	server := testServer(t)

	auth := registerUser(t, server.URL, "alice@example.com")
	if auth.Token == "" {
		t.Fatal("register returned no token")
	}

	resp, raw := doJSON(t, "POST", server.URL+"/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, body %s", resp.StatusCode, raw)
	}
	var login service.AuthResponse
	if err := json.Unmarshal(raw, &login); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}
	if login.ID != auth.ID {
		t.Errorf("login ID = %d, want %d", login.ID, auth.ID)
	}
	if strings.Contains(string(raw), "password") {
		t.Error("login response leaks password material")
	}

	resp, raw = doJSON(t, "GET", server.URL+"/me", login.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, body %s", resp.StatusCode, raw)
	}
	var profile service.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		t.Fatalf("unmarshal profile: %v", err)
	}
	if profile.ID != auth.ID || profile.Email != "alice@example.com" {
		t.Errorf("profile = %+v, want alice's", profile)
	}
}

func TestRegisterValidation(t *testing.T) {
	server := testServer(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing username", map[string]string{"email": "a@b.c", "password": "password1"}},
		{"bad email", map[string]string{"username": "a", "email": "not-an-email", "password": "password1"}},
		{"short password", map[string]string{"username": "a", "email": "a@b.c", "password": "12345"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := doJSON(t, "POST", server.URL+"/register", "", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	server := testServer(t)

	registerUser(t, server.URL, "alice@example.com")
	resp, _ := doJSON(t, "POST", server.URL+"/register", "", map[string]string{
		"username": "other",
		"email":    "alice@example.com",
		"password": "password2",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	server := testServer(t)
	registerUser(t, server.URL, "alice@example.com")

	resp, _ := doJSON(t, "POST", server.URL+"/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	resp, _ = doJSON(t, "POST", server.URL+"/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown email status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestPaymentEndpointsRequireToken(t *testing.T) {
	server := testServer(t)

	for _, path := range []string{"/me", "/payments", "/payments/stats", "/payments/1"} {
		resp, _ := doJSON(t, "GET", server.URL+path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s without token status = %d, want %d", path, resp.StatusCode, http.StatusUnauthorized)
		}
	}
}

func TestCreatePaymentIgnoresPayloadOwner(t *testing.T) {
	server := testServer(t)
	auth := registerUser(t, server.URL, "alice@example.com")

	// A caller-supplied owner field must not affect ownership
	resp, raw := doJSON(t, "POST", server.URL+"/payments", auth.Token, map[string]any{
		"amount":   150,
		"receiver": "merchant-a",
		"method":   "card",
		"user_id":  999,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, raw)
	}
	var payment models.Payment
	if err := json.Unmarshal(raw, &payment); err != nil {
		t.Fatalf("unmarshal payment: %v", err)
	}
	if payment.UserID != auth.ID {
		t.Errorf("payment owner = %d, want authenticated user %d", payment.UserID, auth.ID)
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	server := testServer(t)
	auth := registerUser(t, server.URL, "alice@example.com")

	cases := []struct {
		name string
		body map[string]any
	}{
		{"zero amount", map[string]any{"amount": 0, "receiver": "a", "method": "card"}},
		{"negative amount", map[string]any{"amount": -5, "receiver": "a", "method": "card"}},
		{"missing receiver", map[string]any{"amount": 10, "method": "card"}},
		{"unknown method", map[string]any{"amount": 10, "receiver": "a", "method": "cheque"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := doJSON(t, "POST", server.URL+"/payments", auth.Token, tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestListPayments(t *testing.T) {
	server := testServer(t)
	auth := registerUser(t, server.URL, "alice@example.com")

	for _, body := range []map[string]any{
		{"amount": 100, "receiver": "a", "method": "card"},
		{"amount": 200, "receiver": "b", "method": "upi"},
	} {
		if resp, raw := doJSON(t, "POST", server.URL+"/payments", auth.Token, body); resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status = %d, body %s", resp.StatusCode, raw)
		}
	}

	resp, raw := doJSON(t, "GET", server.URL+"/payments?method=upi", auth.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, body %s", resp.StatusCode, raw)
	}
	var payments []models.Payment
	if err := json.Unmarshal(raw, &payments); err != nil {
		t.Fatalf("unmarshal payments: %v", err)
	}
	if len(payments) != 1 || payments[0].Method != "upi" {
		t.Errorf("filtered list = %+v, want the single upi payment", payments)
	}

	resp, _ = doJSON(t, "GET", server.URL+"/payments?status=bogus", auth.Token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bogus filter status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestGetPaymentCrossOwner(t *testing.T) {
	server := testServer(t)
	alice := registerUser(t, server.URL, "alice@example.com")
	bob := registerUser(t, server.URL, "bob@example.com")

	resp, raw := doJSON(t, "POST", server.URL+"/payments", alice.Token, map[string]any{
		"amount": 50, "receiver": "a", "method": "card",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, raw)
	}
	var payment models.Payment
	if err := json.Unmarshal(raw, &payment); err != nil {
		t.Fatalf("unmarshal payment: %v", err)
	}

	// Lookup by ID is not scoped to the caller
	resp, raw = doJSON(t, "GET", server.URL+"/payments/1", bob.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("cross-owner get status = %d, body %s", resp.StatusCode, raw)
	}

	resp, _ = doJSON(t, "GET", server.URL+"/payments/999", bob.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing payment status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestPaymentStatsEmpty(t *testing.T) {
	server := testServer(t)
	auth := registerUser(t, server.URL, "alice@example.com")

	resp, raw := doJSON(t, "GET", server.URL+"/payments/stats", auth.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d, body %s", resp.StatusCode, raw)
	}
	var report models.StatsReport
	if err := json.Unmarshal(raw, &report); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if report != (models.StatsReport{}) {
		t.Errorf("empty stats = %+v, want all zeros", report)
	}

	resp, _ = doJSON(t, "GET", server.URL+"/payments/stats?timeRange=2h", auth.Token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad timeRange status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
