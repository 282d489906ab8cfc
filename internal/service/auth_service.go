package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
	"github.com/spec-kit/service-desk/pkg/util/errorutil"
)

// AuthService handles credential checks and token issuance.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService wires the auth service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, bcryptCost int, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, logger: logger}
}

// LoginResult carries a signed token and its owner.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login verifies credentials and issues an access token. Lookup and compare
// failures collapse into one error so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, errorutil.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errorutil.NewUnauthorized("invalid credentials")
	}
	if !user.Active {
		return nil, errorutil.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, errorutil.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// RegisterUserInput carries the fields for account creation.
type RegisterUserInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department domain.Department
	DealerID   *string
}

// RegisterUser creates an account. Admin-gated at the handler.
func (s *AuthService) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	if input.Name == "" || input.Email == "" || len(input.Password) < 8 {
		return nil, errorutil.NewValidationError("name, email and a password of at least 8 characters are required", nil)
	}
	switch input.Role {
	case domain.RoleAdmin, domain.RoleEmployee, domain.RoleMarket, domain.RoleDealer:
	default:
		return nil, errorutil.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if input.Role == domain.RoleDealer && input.DealerID == nil {
		return nil, errorutil.NewValidationError("dealer accounts require a dealer_id", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Department:   input.Department,
		DealerID:     input.DealerID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errorutil.MapError(err)
	}
	return user, nil
}
