package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yamdb/internal/apperr"
	"yamdb/internal/config"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/notify"
	"yamdb/internal/policy"
	"yamdb/internal/validators"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "yamdb"

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Cooldown limits how many new accounts one client address can open per
// window. Code resends for an existing account never consult it.
type Cooldown interface {
	Allow(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type AuthService interface {
	Register(ctx context.Context, username, email, clientIP string) (*dto.SignupResponse, error)
	IssueToken(ctx context.Context, username, code string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	// Authenticate resolves a bearer token to the current state of its user.
	Authenticate(ctx context.Context, tokenString string) (policy.Actor, error)
	EnsureSuperuser(ctx context.Context, username, email string) (*models.User, error)
}

type authService struct {
	userRepo       repository.UserRepository
	mailer         notify.Mailer
	cooldown       Cooldown
	metrics        *metrics.Metrics
	logger         *slog.Logger
	jwtSecret      []byte
	accessTokenTTL time.Duration
	now            func() time.Time
	generateCode   func() (string, error)
}

func NewAuthService(
	userRepo repository.UserRepository,
	mailer notify.Mailer,
	cooldown Cooldown,
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.Metrics,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		mailer:         mailer,
		cooldown:       cooldown,
		metrics:        m,
		logger:         logger,
		jwtSecret:      []byte(cfg.JWTSecret),
		accessTokenTTL: cfg.AccessTokenTTL,
		now:            time.Now,
		generateCode:   auth.GenerateCode,
	}
}

// Register creates the account or, for a known (username, email) pair,
// replaces its code. The code is emailed inside the transaction so a failed
// send leaves nothing behind. Only account creation is throttled per client.
func (s *authService) Register(ctx context.Context, username, email, clientIP string) (*dto.SignupResponse, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validators.ValidateUsername(username); err != nil {
		s.metrics.Signup("invalid")
		return nil, err
	}
	if err := validators.ValidateEmail(email); err != nil {
		s.metrics.Signup("invalid")
		return nil, err
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, fmt.Errorf("generate confirmation code: %w", err)
	}
	hashed, err := auth.HashCode(code)
	if err != nil {
		return nil, fmt.Errorf("hash confirmation code: %w", err)
	}

	var resend, claimed bool
	err = s.userRepo.Transaction(ctx, func(repo repository.UserRepository) error {
		user, err := resolveSignup(ctx, repo, username, email)
		if err != nil {
			return err
		}
		resend = user.ID != ""
		if !resend {
			if claimed, err = s.claimSignup(ctx, clientIP); err != nil {
				return err
			}
		}
		user.ConfirmationCode = hashed

		if resend {
			err = repo.Update(ctx, user)
		} else {
			err = repo.Create(ctx, user)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Conflict("username", "username or email is already registered")
		}
		if err != nil {
			return err
		}

		return s.sendCode(ctx, user, code)
	})
	if err != nil {
		if claimed {
			s.releaseSignup(ctx, clientIP)
		}
		s.metrics.Signup(signupOutcome(err))
		return nil, err
	}

	if resend {
		s.metrics.Signup("resent")
	} else {
		s.metrics.Signup("created")
	}
	s.logger.Info("confirmation code issued",
		slog.String("username", username),
		slog.Bool("resend", resend),
	)
	return &dto.SignupResponse{Username: username, Email: email}, nil
}

// resolveSignup returns the existing account for the exact pair, a new unsaved
// user when both are free, or a conflict naming the taken field.
func resolveSignup(ctx context.Context, repo repository.UserRepository, username, email string) (*models.User, error) {
	byName, err := repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	byEmail, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	switch {
	case byName == nil && byEmail == nil:
		return &models.User{Username: username, Email: email, Role: policy.RoleUser}, nil
	case byName != nil && byEmail != nil && byName.ID == byEmail.ID:
		return byName, nil
	case byEmail != nil:
		return nil, apperr.Conflict("email", "email is already registered with another username")
	default:
		return nil, apperr.Conflict("username", "username is already registered with another email")
	}
}

// claimSignup takes the client's account-creation slot. It reports whether a
// slot was taken so a failed signup can hand it back.
func (s *authService) claimSignup(ctx context.Context, clientIP string) (bool, error) {
	if s.cooldown == nil || clientIP == "" {
		return false, nil
	}
	ok, err := s.cooldown.Allow(ctx, clientIP)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, apperr.Throttled("an account was created from this address recently, try again later")
	}
	return true, nil
}

func (s *authService) releaseSignup(ctx context.Context, clientIP string) {
	if err := s.cooldown.Release(ctx, clientIP); err != nil {
		s.logger.Warn("cooldown release failed", slog.String("error", err.Error()))
	}
}

func (s *authService) sendCode(ctx context.Context, user *models.User, code string) error {
	if err := s.mailer.Send(ctx, notify.ConfirmationMessage(user.Email, user.Username, code)); err != nil {
		s.metrics.Email("failed")
		return apperr.Wrap(apperr.KindInternal, err, "could not send the confirmation email")
	}
	s.metrics.Email("ok")
	return nil
}

func signupOutcome(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindConflict:
		return "conflict"
	case apperr.KindThrottled:
		return "throttled"
	default:
		return "error"
	}
}

// IssueToken exchanges the last emailed code for an access token.
func (s *authService) IssueToken(ctx context.Context, username, code string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apperr.Validation("username", "this field is required")
	}
	if code == "" {
		return "", apperr.Validation("confirmation_code", "this field is required")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.metrics.Token("unknown_user")
		return "", notFound(err, "username", "user not found")
	}

	if !auth.VerifyCode(user.ConfirmationCode, code) {
		s.metrics.Token("invalid_code")
		s.logger.Info("token rejected", slog.String("username", username), slog.String("reason", "code mismatch"))
		return "", apperr.InvalidCredentials("confirmation_code", "invalid confirmation code")
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	s.metrics.Token("issued")
	s.logger.Info("token issued", slog.String("username", username))
	return token, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (policy.Actor, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return policy.Anonymous(), apperr.Wrap(apperr.KindAuthentication, err, err.Error())
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return policy.Anonymous(), apperr.Authentication("user no longer exists")
		}
		return policy.Anonymous(), err
	}
	return user.Actor(), nil
}

// EnsureSuperuser creates or promotes the bootstrap administrator. Reserved
// names are allowed here since signup is the only place they are blocked.
func (s *authService) EnsureSuperuser(ctx context.Context, username, email string) (*models.User, error) {
	if err := validators.ValidateUsername(username); err != nil && !validators.IsReservedUsername(username) {
		return nil, err
	}
	if err := validators.ValidateEmail(email); err != nil {
		return nil, err
	}

	var result *models.User
	err := s.userRepo.Transaction(ctx, func(repo repository.UserRepository) error {
		user, err := repo.FindByUsername(ctx, username)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			user = &models.User{Username: username, Email: email}
		case err != nil:
			return err
		}

		user.Email = email
		user.Role = policy.RoleAdmin
		user.IsSuperuser = true

		if user.ID == "" {
			err = repo.Create(ctx, user)
		} else {
			err = repo.Update(ctx, user)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Conflict("email", "email is already registered with another username")
		}
		result = user
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("superuser ready", slog.String("username", username))
	return result, nil
}
