package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Pranav-7262/mern-recipe-app/internal/common"
	"github.com/Pranav-7262/mern-recipe-app/internal/common/security"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/model"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/repository"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/logging"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ErrUnknownSubject marks a valid token whose user record is gone.
var ErrUnknownSubject = fmt.Errorf("unknown token subject: %w", common.ErrUnauthorized)

// LoginLimiter throttles repeated failed logins for one account.
type LoginLimiter interface {
	Allow(ctx context.Context, account string) (bool, error)
	Fail(ctx context.Context, account string) error
	Reset(ctx context.Context, account string) error
}

// NoLoginLimit never throttles. Used when no Redis is configured.
type NoLoginLimit struct{}

func (NoLoginLimit) Allow(context.Context, string) (bool, error) { return true, nil }
func (NoLoginLimit) Fail(context.Context, string) error          { return nil }
func (NoLoginLimit) Reset(context.Context, string) error         { return nil }

type AuthService struct {
	userRepo repository.UserRepository
	hasher   *security.PasswordHasher
	tokens   *security.TokenIssuer
	limiter  LoginLimiter
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, hasher *security.PasswordHasher, tokens *security.TokenIssuer, limiter LoginLimiter) *AuthService {
	if limiter == nil {
		limiter = NoLoginLimit{}
	}
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		limiter:  limiter,
		now:      time.Now,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, common.ValidationError("Please fill all the fields")
	}
	if !emailPattern.MatchString(email) {
		return nil, common.ValidationError("Invalid email format")
	}
	if len(req.Password) > security.MaxPasswordBytes {
		return nil, common.ValidationError("Password must be at most %d bytes", security.MaxPasswordBytes)
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration; the unique index decides.
		if errors.Is(err, common.ErrConflict) {
			return nil, &common.ClientError{Kind: common.ErrConflict, Message: "User already exists"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logging.From(ctx).Info("user_registered", slog.String("user_id", user.ID))
	return &AuthResponse{ID: user.ID, Username: user.Username, Email: user.Email, Token: token}, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return &common.ClientError{Kind: common.ErrConflict, Message: "User already exists"}
	case !errors.Is(err, common.ErrNotFound):
		return fmt.Errorf("failed to look up email: %w", err)
	}

	_, err = s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return &common.ClientError{Kind: common.ErrConflict, Message: "Username already taken"}
	case !errors.Is(err, common.ErrNotFound):
		return fmt.Errorf("failed to look up username: %w", err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, common.ValidationError("Please fill all fields!")
	}
	lg := logging.From(ctx)

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		// Throttling is best effort; a limiter outage must not lock everyone out.
		lg.Warn("login_limiter_unavailable", slog.String("err", err.Error()))
		allowed = true
	}
	if !allowed {
		return nil, common.ErrTooManyRequests
	}

	// No stored password can be longer than bcrypt accepts.
	if len(req.Password) > security.MaxPasswordBytes {
		s.recordFailure(ctx, email)
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.recordFailure(ctx, email)
			return nil, common.ErrInvalidCredentials // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.HashedPassword) {
		s.recordFailure(ctx, email)
		return nil, common.ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		lg.Warn("login_limiter_reset_failed", slog.String("err", err.Error()))
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{ID: user.ID, Username: user.Username, Email: user.Email, Token: token}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	logging.From(ctx).Info("login_failed")
	if err := s.limiter.Fail(ctx, email); err != nil {
		logging.From(ctx).Warn("login_limiter_record_failed", slog.String("err", err.Error()))
	}
}

// Identify resolves a bearer token to its user. Token failures and unknown
// subjects wrap common.ErrUnauthorized; store failures are returned as is.
// The returned user never carries the password hash.
func (s *AuthService) Identify(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("token subject %s no longer exists: %w", userID, ErrUnknownSubject)
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user.Public(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
