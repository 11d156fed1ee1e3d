package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/yao-todolist/todo-api/internal/api/metrics"
	"github.com/yao-todolist/todo-api/internal/core/domain"
	"github.com/yao-todolist/todo-api/internal/core/ports"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// AuthOptions tunes an AuthService.
type AuthOptions struct {
	// BcryptCost defaults to DefaultBcryptCost when zero.
	BcryptCost int
	// UniformErrors collapses user-not-found and wrong-password into
	// domain.ErrInvalidCredentials.
	UniformErrors bool
	// Audit receives register and login events. Optional.
	Audit  ports.AuditRecorder
	Logger zerolog.Logger
}

// AuthService implements registration and login.
type AuthService struct {
	repo    ports.UserRepository
	issuer  ports.TokenIssuer
	audit   ports.AuditRecorder
	cost    int
	uniform bool
	log     zerolog.Logger
	now     func() time.Time
}

func NewAuthService(repo ports.UserRepository, issuer ports.TokenIssuer, opts AuthOptions) *AuthService {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	audit := opts.Audit
	if audit == nil {
		audit = noopRecorder{}
	}
	return &AuthService{
		repo:    repo,
		issuer:  issuer,
		audit:   audit,
		cost:    cost,
		uniform: opts.UniformErrors,
		log:     opts.Logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Register hashes the password and stores a new account. The plaintext is
// never handed to the repository.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		LoginTime:    s.now(),
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}

	metrics.UsersRegisteredTotal.Inc()
	s.log.Info().Int64("user_id", id).Str("name", name).Msg("user registered")
	s.audit.Record(domain.AuthEvent{
		Kind:      domain.EventRegistered,
		UserID:    id,
		Name:      name,
		Email:     email,
		Timestamp: user.LoginTime,
	})
	return id, nil
}

// Login verifies the password of the account matching name and email, then
// bumps its last-login time.
func (s *AuthService) Login(ctx context.Context, name, email, password string) (*ports.LoginResult, error) {
	user, err := s.repo.FindByNameAndEmail(ctx, name, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, s.reject(name, email, 0, domain.ErrUserNotFound)
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), bcryptInput(password)) != nil {
		return nil, s.reject(name, email, user.ID, domain.ErrWrongPassword)
	}

	now := s.now()
	if err := s.repo.UpdateLoginTime(ctx, user.ID, now); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: update login time: %w", err)
	}

	token, err := s.issuer.Issue(user.ID, user.Name)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.audit.Record(domain.AuthEvent{
		Kind:      domain.EventLoginSuccess,
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Timestamp: now,
	})

	return &ports.LoginResult{Token: token, UserName: user.Name, UserID: user.ID}, nil
}

func (s *AuthService) reject(name, email string, userID int64, cause error) error {
	reason := "user_not_found"
	if errors.Is(cause, domain.ErrWrongPassword) {
		reason = "wrong_password"
	}
	metrics.LoginsTotal.WithLabelValues(reason).Inc()
	s.log.Debug().Str("name", name).Str("reason", reason).Msg("login rejected")
	s.audit.Record(domain.AuthEvent{
		Kind:      domain.EventLoginFailure,
		UserID:    userID,
		Name:      name,
		Email:     email,
		Reason:    reason,
		Timestamp: s.now(),
	})

	if s.uniform {
		return domain.ErrInvalidCredentials
	}
	return cause
}

// bcryptMaxInput is the number of password bytes bcrypt reads.
const bcryptMaxInput = 72

// bcryptInput truncates the password to what bcrypt consumes, so longer
// passwords hash and verify instead of failing with ErrPasswordTooLong.
// Register and Login must both go through it.
func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxInput {
		b = b[:bcryptMaxInput]
	}
	return b
}

type noopRecorder struct{}

func (noopRecorder) Record(domain.AuthEvent) {}
