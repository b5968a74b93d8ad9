package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"github.com/wadjakorntonsri/trimlink/pkg/core/validation"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

var credentialMessages = validation.Messages{
	"email.required":    "Email is required",
	"email.email":       "Invalid email",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters",
}

// AccountService manages local and externally authenticated users.
type AccountService struct {
	repo          ports.UserRepository
	allowedEmails map[string]bool
	logger        *zap.Logger
	cost          int
}

func NewAccountService(repo ports.UserRepository, allowedEmails []string, logger *zap.Logger) *AccountService {
	allowed := make(map[string]bool, len(allowedEmails))
	for _, e := range allowedEmails {
		allowed[strings.ToLower(e)] = true
	}
	return &AccountService{repo: repo, allowedEmails: allowed, logger: logger.Named("accounts"), cost: bcrypt.DefaultCost}
}

// Allowed reports whether email may sign in. An empty allowlist admits everyone.
func (s *AccountService) Allowed(email string) bool {
	return len(s.allowedEmails) == 0 || s.allowedEmails[strings.ToLower(email)]
}

func (s *AccountService) SignUp(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if err := validation.Struct(credentials{Email: email, Password: password}, credentialMessages); err != nil {
		return nil, err
	}
	if !s.Allowed(email) {
		return nil, domain.NewError(domain.KindUnauthorized, "Access denied: your email is not in the allowlist", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, domain.NewError(domain.KindInsert, "Unable to create account", err)
	}

	user := &domain.User{ID: uuid.NewString(), Email: email, Name: name, PasswordHash: string(hash)}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewError(domain.KindConflict, "user with this email already exists", err)
		}
		s.logger.Error("create user failed", zap.Error(err))
		return nil, domain.NewError(domain.KindInsert, "Unable to create account", err)
	}
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	invalid := domain.NewError(domain.KindUnauthorized, "invalid email or password", nil)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.Error("get user failed", zap.Error(err))
		return nil, domain.NewError(domain.KindLoad, "Unable to sign in", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}
	if !s.Allowed(email) {
		return nil, domain.NewError(domain.KindUnauthorized, "Access denied: your email is not in the allowlist", nil)
	}
	return user, nil
}

// EnsureExternal returns the user for an email verified by an identity
// provider, creating it on first sign-in.
func (s *AccountService) EnsureExternal(ctx context.Context, email, name string) (*domain.User, error) {
	email = normalizeEmail(email)
	if !s.Allowed(email) {
		return nil, domain.NewError(domain.KindUnauthorized, "Access denied: your email is not in the allowlist", nil)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewError(domain.KindLoad, "Unable to sign in", err)
	}
	if user != nil {
		return user, nil
	}

	user = &domain.User{ID: uuid.NewString(), Email: email, Name: name}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race with a concurrent first sign-in.
			existing, gerr := s.repo.GetUserByEmail(ctx, email)
			if gerr != nil {
				return nil, domain.NewError(domain.KindLoad, "Unable to sign in", gerr)
			}
			if existing == nil {
				return nil, domain.NewError(domain.KindLoad, "Unable to sign in", err)
			}
			return existing, nil
		}
		return nil, domain.NewError(domain.KindInsert, "Unable to create account", err)
	}
	return user, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, domain.NewError(domain.KindLoad, "Unable to load account", err)
	}
	if user == nil {
		return nil, domain.NewError(domain.KindNotFound, "Account not found", nil)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ ports.AccountService = (*AccountService)(nil)
