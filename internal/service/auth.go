package service

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/finbase/payment-service/internal/apperrors"
	"github.com/finbase/payment-service/internal/models"
	"github.com/finbase/payment-service/internal/token"
)

// AuthResponse is returned on successful registration and login
type AuthResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// Profile holds the public fields of an account
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthService handles registration, login and self-lookup
type AuthService struct {
	users  UserStore
	tokens *token.Authority
	log    *logrus.Logger
}

// NewAuthService initializes a new auth service
func NewAuthService(users UserStore, tokens *token.Authority, log *logrus.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

// Register creates a new user with a hashed password and returns an
// auth token bound to the persisted user ID. The token is issued only
// after the insert assigns the ID.
func (s *AuthService) Register(username, email, password string) (*AuthResponse, error) {
	if _, err := s.users.FindUserByEmail(email); err == nil {
		return nil, apperrors.AlreadyExists("user already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}

	tokenString, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return &AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    tokenString,
	}, nil
}

// Login authenticates a user and returns a fresh auth token. The
// password hash never leaves this method.
func (s *AuthService) Login(email, password string) (*AuthResponse, error) {
	user, err := s.users.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.InvalidCredential("invalid password")
	}

	tokenString, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return &AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    tokenString,
	}, nil
}

// Profile returns the public profile for the given user ID
func (s *AuthService) Profile(userID int64) (*Profile, error) {
	user, err := s.users.FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}
