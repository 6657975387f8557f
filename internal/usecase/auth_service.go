package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopclip/backend/internal/domain"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	// MaxUsers caps the number of accounts ever created
	MaxUsers   int
	BcryptCost int
}

// AuthService handles signup, login and session verification
type AuthService struct {
	users      domain.UserRepository
	tokens     domain.TokenIssuer
	maxUsers   int
	bcryptCost int
	now        func() time.Time

	// signupMu serialises the count-then-insert that assigns account numbers
	signupMu sync.Mutex
}

// NewAuthService creates a new auth service with dependencies
func NewAuthService(users domain.UserRepository, tokens domain.TokenIssuer, config AuthServiceConfig) *AuthService {
	maxUsers := config.MaxUsers
	if maxUsers <= 0 {
		maxUsers = 100
	}
	cost := config.BcryptCost
	if cost == 0 {
		cost = 12
	}

	return &AuthService{
		users:      users,
		tokens:     tokens,
		maxUsers:   maxUsers,
		bcryptCost: cost,
		now:        time.Now,
	}
}

// Signup creates an account and returns a session token for it
func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.AuthResponse, error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var details []string
	if name == "" || email == "" || req.Password == "" {
		details = append(details, "Nom, email et mot de passe sont requis")
	}
	if email != "" && !emailRegex.MatchString(email) {
		details = append(details, "Format d'email invalide")
	}
	if req.Password != "" && len(req.Password) < minPasswordLength {
		details = append(details, "Le mot de passe doit contenir au moins 6 caractères")
	}
	if len(details) > 0 {
		return nil, &domain.ValidationError{Details: details}
	}

	s.signupMu.Lock()
	defer s.signupMu.Unlock()

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count >= s.maxUsers {
		return nil, domain.ErrUserLimitReached
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		Website:       strings.TrimSpace(req.Website),
		AccountNumber: count + 1,
		IsActive:      true,
		Settings:      domain.DefaultUserSettings(),
		CreatedAt:     now,
		LastLogin:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	log.Info("account created", "email", user.Email, "account", user.AccountNumber, "max", s.maxUsers)
	return &domain.AuthResponse{Token: token, User: user.Public()}, nil
}

// Login checks credentials and returns a fresh session token
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, &domain.ValidationError{Details: []string{"Email et mot de passe requis"}}
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user.LastLogin = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	public := user.Public()
	public.LastLogin = &user.LastLogin
	public.Settings = &user.Settings
	return &domain.AuthResponse{Token: token, User: public}, nil
}

// Authenticate resolves a bearer token to an active user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return user, nil
}

// ChangePassword replaces the user's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	if req == nil || req.CurrentPassword == "" || req.NewPassword == "" {
		return &domain.ValidationError{Details: []string{"Mot de passe actuel et nouveau mot de passe requis"}}
	}
	if len(req.NewPassword) < minPasswordLength {
		return &domain.ValidationError{Details: []string{"Le nouveau mot de passe doit contenir au moins 6 caractères"}}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	log.Info("password changed", "email", user.Email)
	return nil
}
