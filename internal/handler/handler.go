package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/finbase/payment-service/internal/apperrors"
	"github.com/finbase/payment-service/internal/middleware"
	"github.com/finbase/payment-service/internal/models"
	"github.com/finbase/payment-service/internal/service"
)

// Handler exposes the auth and payment services over JSON
type Handler struct {
	auth     *service.AuthService
	payments *service.PaymentService
	log      *logrus.Logger
}

// NewHandler initializes a new handler
func NewHandler(auth *service.AuthService, payments *service.PaymentService, log *logrus.Logger) *Handler {
	return &Handler{auth: auth, payments: payments, log: log}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createPaymentRequest struct {
	Amount   float64 `json:"amount"`
	Receiver string  `json:"receiver"`
	Method   string  `json:"method"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}
	if req.Username == "" {
		h.respondError(w, apperrors.Validation("username is required"))
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		h.respondError(w, apperrors.Validation("a valid email is required"))
		return
	}
	if len(req.Password) < 6 {
		h.respondError(w, apperrors.Validation("password must be at least 6 characters"))
		return
	}

	resp, err := h.auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, resp)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		h.respondError(w, apperrors.Validation("email and password are required"))
		return
	}

	resp, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// Me returns the profile of the authenticated user, or null when no
// identity is attached
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.respondJSON(w, http.StatusOK, nil)
		return
	}

	profile, err := h.auth.Profile(userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, profile)
}

// CreatePayment creates a payment owned by the authenticated user.
// Ownership is taken from the verified identity, never from the body.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.respondError(w, apperrors.ErrUnauthorized)
		return
	}

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}
	if req.Amount <= 0 {
		h.respondError(w, apperrors.Validation("amount must be positive"))
		return
	}
	if req.Receiver == "" {
		h.respondError(w, apperrors.Validation("receiver is required"))
		return
	}
	if !models.ValidMethod(req.Method) {
		h.respondError(w, apperrors.Validation("method must be one of card, upi, bank_transfer"))
		return
	}

	payment, err := h.payments.Create(userID, req.Amount, req.Receiver, req.Method)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, payment)
}

// ListPayments returns the authenticated user's payments, most recent
// first, optionally filtered by status and method
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.respondError(w, apperrors.ErrUnauthorized)
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidStatus(status) {
		h.respondError(w, apperrors.Validation("unknown status %q", status))
		return
	}
	method := r.URL.Query().Get("method")
	if method != "" && !models.ValidMethod(method) {
		h.respondError(w, apperrors.Validation("unknown method %q", method))
		return
	}

	payments, err := h.payments.List(userID, status, method)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	h.respondJSON(w, http.StatusOK, payments)
}

// PaymentStats returns the aggregate report over the authenticated
// user's filtered payments
func (h *Handler) PaymentStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.respondError(w, apperrors.ErrUnauthorized)
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidStatus(status) {
		h.respondError(w, apperrors.Validation("unknown status %q", status))
		return
	}
	method := r.URL.Query().Get("method")
	if method != "" && !models.ValidMethod(method) {
		h.respondError(w, apperrors.Validation("unknown method %q", method))
		return
	}
	timeRange := r.URL.Query().Get("timeRange")
	if timeRange != "" && !models.ValidTimeRange(timeRange) {
		h.respondError(w, apperrors.Validation("unknown time range %q", timeRange))
		return
	}

	report, err := h.payments.Stats(userID, status, method, timeRange)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}

// GetPayment returns a single payment by ID. The lookup is not scoped
// to the caller: any authenticated user can fetch any payment.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, apperrors.Validation("invalid payment id"))
		return
	}

	payment, err := h.payments.Get(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, payment)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := apperrors.Status(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Errorf("Internal error: %v", err)
		message = "internal server error"
	}
	h.respondJSON(w, status, map[string]string{"message": message})
}
