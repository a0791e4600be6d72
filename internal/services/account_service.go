// Package services – AccountService
//
// AccountService registers and authenticates users. Passwords are stored as
// bcrypt hashes; successful register/login returns a signed bearer token.
// Unknown email and wrong password are indistinguishable to the caller.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/game-catalog-backend/internal/auth"
	"github.com/tbourn/game-catalog-backend/internal/domain"
	"github.com/tbourn/game-catalog-backend/internal/repo"
)

// Account field limits. Password length is counted in bytes because bcrypt
// only accepts up to auth.MaxPasswordBytes.
const (
	MinPasswordLen = 5
	MaxUsernameLen = 64
)

// TokenIssuer mints bearer tokens for authenticated accounts.
type TokenIssuer interface {
	Generate(userID, username string) (string, error)
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token   string
	Account *domain.Account
}

type registerInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required"`
}

// AccountService owns registration, login, and account lookup.
type AccountService struct {
	DB       *gorm.DB
	Tokens   TokenIssuer
	validate *validator.Validate
}

// NewAccountService wires an AccountService.
func NewAccountService(db *gorm.DB, tokens TokenIssuer) *AccountService {
	return &AccountService{DB: db, Tokens: tokens, validate: validator.New()}
}

// Register creates a new account and returns a token for it.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	ctx, span := otel.Tracer("services/AccountService").Start(ctx, "Register")
	defer span.End()

	in := registerInput{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
	}
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			switch verrs[0].Field() {
			case "Email":
				return nil, ErrInvalidEmail
			case "Username":
				return nil, ErrUsernameTooLong
			}
		}
		return nil, ErrMissingFields
	}
	if len(in.Password) < MinPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	taken, err := repo.AccountTaken(ctx, s.DB, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrAccountExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	acc, err := repo.CreateAccount(ctx, s.DB, in.Username, in.Email, hash)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrAccountExists
	}
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", acc.ID))
	return s.issue(acc)
}

// Login verifies credentials and returns a fresh token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := otel.Tracer("services/AccountService").Start(ctx, "Login")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	acc, err := repo.GetAccountByEmail(ctx, s.DB, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(acc.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(acc)
}

// Me returns the account behind a verified token subject.
func (s *AccountService) Me(ctx context.Context, userID string) (*domain.Account, error) {
	ctx, span := otel.Tracer("services/AccountService").Start(ctx, "Me",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	acc, err := repo.GetAccountByID(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	return acc, err
}

func (s *AccountService) issue(acc *domain.Account) (*AuthResult, error) {
	tok, err := s.Tokens.Generate(acc.ID, acc.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: tok, Account: acc}, nil
}
