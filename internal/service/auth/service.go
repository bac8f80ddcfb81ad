package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/pkg/config"
)

const minPasswordLength = 8

type Service struct {
	userRepo   ports.UserRepository
	cache      ports.Cache
	jwt        *JWTService
	sessionTTL time.Duration
	log        *zap.Logger
	now        func() time.Time
}

var _ ports.AuthService = (*Service)(nil)

func NewService(userRepo ports.UserRepository, cache ports.Cache, cfg config.JWTConfig, sessionTTL time.Duration, log *zap.Logger) *Service {
	return &Service{
		userRepo:   userRepo,
		cache:      cache,
		jwt:        NewJWTService(cfg, cache, log),
		sessionTTL: sessionTTL,
		log:        log,
		now:        time.Now,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*ports.TokenPair, *domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		s.log.Error("failed to look up user", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		telemetry.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		telemetry.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		s.log.Info("login rejected", zap.String("user_id", user.ID))
		return nil, nil, domain.ErrInvalidCredentials
	}
	if user.Status != domain.UserStatusActive {
		telemetry.LoginAttemptsTotal.WithLabelValues("inactive").Inc()
		return nil, nil, domain.ErrInactiveUser
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	user.LastLogin = &now
	if _, err := s.userRepo.Update(ctx, user); err != nil {
		s.log.Warn("failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	telemetry.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	public := user.Public()
	return pair, &public, nil
}

// RefreshToken rotates the pair: the presented refresh token is revoked.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.jwt.ValidateToken(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.activeUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	if err := s.jwt.RevokeToken(ctx, claims); err != nil {
		s.log.Warn("refresh token not revoked", zap.String("user_id", user.ID), zap.Error(err))
	}
	return pair, nil
}

// ValidateToken resolves an access token to its user, serving the user from the
// session cache when possible.
func (s *Service) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.ValidateToken(ctx, token, TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	if cached, err := s.cache.Get(ctx, sessionKey(claims.Subject)); err == nil {
		var user domain.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, nil
		}
		s.log.Warn("discarding unreadable session", zap.String("user_id", claims.Subject))
	}

	user, err := s.activeUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	public := user.Public()
	if data, err := json.Marshal(public); err == nil {
		if err := s.cache.Set(ctx, sessionKey(user.ID), string(data), s.sessionTTL); err != nil {
			s.log.Debug("session not cached", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return &public, nil
}

func (s *Service) IssueSetupToken(ctx context.Context, user *domain.User) (string, error) {
	if user == nil {
		return "", fmt.Errorf("%w: user is required", domain.ErrValidation)
	}
	return s.jwt.GenerateSetupToken(user)
}

// SetPassword consumes a setup token. A pending account becomes active.
func (s *Service) SetPassword(ctx context.Context, setupToken, password string) error {
	claims, err := s.jwt.ValidateToken(ctx, setupToken, TokenTypeSetup)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return domain.ErrInvalidCredentials
	}
	if claims.Stamp != passwordStamp(user.PasswordHash) {
		return fmt.Errorf("%w: setup token already used", domain.ErrInvalidCredentials)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if user.Status == domain.UserStatusPending {
		user.Status = domain.UserStatusActive
	}
	user.UpdatedAt = s.now()

	found, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}
	if !found {
		return domain.ErrInvalidCredentials
	}
	if err := s.jwt.RevokeToken(ctx, claims); err != nil {
		s.log.Warn("setup token not revoked", zap.String("user_id", user.ID), zap.Error(err))
	}
	s.Invalidate(ctx, user.ID)

	s.log.Info("password set from setup link", zap.String("user_id", user.ID))
	return nil
}

func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwt.ValidateToken(ctx, accessToken, TokenTypeAccess)
	if err != nil {
		return err
	}
	s.Invalidate(ctx, claims.Subject)
	return s.jwt.RevokeToken(ctx, claims)
}

func (s *Service) HashPassword(password string) (string, error) {
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Invalidate drops the cached session so the next request reloads the user.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, sessionKey(userID)); err != nil {
		s.log.Debug("session not invalidated", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *Service) activeUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status != domain.UserStatusActive {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}

func (s *Service) issuePair(user *domain.User) (*ports.TokenPair, error) {
	access, expires, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expires}, nil
}

func sessionKey(userID string) string {
	return "user_session:" + userID
}
