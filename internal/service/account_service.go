package service

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/repository"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

// AuthState is returned after login, registration and logout.
type AuthState struct {
	Authenticated bool     `json:"authenticated"`
	Roles         []string `json:"roles"`
	IsAdmin       bool     `json:"isAdmin"`
	CartCount     int      `json:"cartCount"`
}

// AccountService handles authentication, the profile and the address book.
// Tokens are kept on the session record, never returned to the browser.
type AccountService struct {
	auth      clients.AuthClient
	users     clients.UserClient
	addresses clients.AddressClient
	sessions  repository.SessionRepository
	counter   *CartCounter
	logger    *logging.Logger
}

func NewAccountService(auth clients.AuthClient, users clients.UserClient, addresses clients.AddressClient, sessions repository.SessionRepository, counter *CartCounter) *AccountService {
	return &AccountService{
		auth:      auth,
		users:     users,
		addresses: addresses,
		sessions:  sessions,
		counter:   counter,
		logger:    logging.New("account-service"),
	}
}

// Register creates an account and logs the session in with the new token.
func (s *AccountService) Register(ctx context.Context, req *models.RegisterRequest) (*AuthState, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		s.logger.Error("Registration failed", logging.Fields{
			"status_code": apperrors.StatusCode(err),
			"error":       err.Error(),
		})
		return nil, err
	}
	return s.signIn(ctx, resp.Token)
}

func (s *AccountService) Login(ctx context.Context, req *models.LoginRequest) (*AuthState, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		s.logger.Info("Login rejected", logging.Fields{
			"status_code": apperrors.StatusCode(err),
		})
		return nil, err
	}
	return s.signIn(ctx, resp.Token)
}

// Logout drops the token. The anonymous client id stays with the session.
func (s *AccountService) Logout(ctx context.Context) (*AuthState, error) {
	id := session.FromContext(ctx)
	if id == nil {
		return nil, apperrors.ErrUnauthorized
	}

	if err := s.sessions.UpdateToken(ctx, id.SessionID, ""); err != nil {
		return nil, fmt.Errorf("clear session token: %w", err)
	}
	id.Token = ""

	s.logger.Info("Session logged out", logging.Fields{"session_id": id.SessionID})
	return s.state(ctx), nil
}

// State reports the session's current login state.
func (s *AccountService) State(ctx context.Context) *AuthState {
	id := session.FromContext(ctx)
	roles := id.Roles()
	if roles == nil {
		roles = []string{}
	}
	return &AuthState{
		Authenticated: id.Authenticated(),
		Roles:         roles,
		IsAdmin:       id.HasRole(models.RoleAdmin),
		CartCount:     s.counter.Count(ctx),
	}
}

func (s *AccountService) signIn(ctx context.Context, token string) (*AuthState, error) {
	id := session.FromContext(ctx)
	if id == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if token == "" {
		return nil, fmt.Errorf("auth response carried no token")
	}

	if err := s.sessions.UpdateToken(ctx, id.SessionID, token); err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}
	id.Token = token

	s.logger.Info("Session logged in", logging.Fields{"session_id": id.SessionID})
	return s.state(ctx), nil
}

// state refreshes the cart badge, which now belongs to a different
// identity, and reports the login state.
func (s *AccountService) state(ctx context.Context) *AuthState {
	s.counter.Refresh(ctx)
	return s.State(ctx)
}

func (s *AccountService) Profile(ctx context.Context) (*models.User, error) {
	if err := requireLogin(ctx); err != nil {
		return nil, err
	}
	return s.users.GetProfile(ctx)
}

func (s *AccountService) UpdateProfile(ctx context.Context, req *models.UpdateUserRequest) (string, error) {
	if err := requireLogin(ctx); err != nil {
		return "", err
	}
	return s.users.UpdateProfile(ctx, req)
}

func (s *AccountService) ChangePassword(ctx context.Context, req *models.ChangePasswordRequest) (string, error) {
	if err := requireLogin(ctx); err != nil {
		return "", err
	}
	if err := validateStruct(req); err != nil {
		return "", err
	}
	return s.users.ChangePassword(ctx, req)
}

func (s *AccountService) DeletePersonalData(ctx context.Context) (string, error) {
	if err := requireLogin(ctx); err != nil {
		return "", err
	}
	return s.users.DeletePersonalData(ctx)
}

// DeleteAccount removes the account and logs the session out.
func (s *AccountService) DeleteAccount(ctx context.Context) (string, error) {
	if err := requireLogin(ctx); err != nil {
		return "", err
	}

	message, err := s.users.DeleteAccount(ctx)
	if err != nil {
		return "", err
	}

	if _, err := s.Logout(ctx); err != nil {
		s.logger.Error("Failed to log out deleted account", logging.Fields{"error": err.Error()})
	}
	return message, nil
}

func (s *AccountService) Addresses(ctx context.Context) ([]models.Address, error) {
	if err := requireLogin(ctx); err != nil {
		return nil, err
	}
	return s.addresses.ListAddresses(ctx)
}

func (s *AccountService) Address(ctx context.Context, id int64) (*models.Address, error) {
	if err := requireLogin(ctx); err != nil {
		return nil, err
	}
	return s.addresses.GetAddress(ctx, id)
}

func (s *AccountService) AddressesByType(ctx context.Context, t models.AddressType) ([]models.Address, error) {
	if err := requireLogin(ctx); err != nil {
		return nil, err
	}
	if !t.Valid() {
		return nil, apperrors.NewValidationError("type", fmt.Sprintf("unknown address type %q", t))
	}
	return s.addresses.ListByType(ctx, t)
}

func (s *AccountService) CreateAddress(ctx context.Context, req *models.AddressRequest) (string, error) {
	if err := requireLogin(ctx); err != nil {
		return "", err
	}
	if err := validateStruct(req); err != nil {
		return "", err
	}
	return s.addresses.CreateAddress(ctx, req)
}

func (s *AccountService) UpdateAddress(ctx context.Context, id int64, req *models.AddressRequest) (string, error) {
	if err := requireLogin(ctx); err != nil {
		return "", err
	}
	if err := validateStruct(req); err != nil {
		return "", err
	}
	return s.addresses.UpdateAddress(ctx, id, req)
}

func (s *AccountService) DeleteAddress(ctx context.Context, id int64) (string, error) {
	if err := requireLogin(ctx); err != nil {
		return "", err
	}
	return s.addresses.DeleteAddress(ctx, id)
}

func requireLogin(ctx context.Context) error {
	if !session.FromContext(ctx).Authenticated() {
		return apperrors.ErrUnauthorized
	}
	return nil
}
