package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/pkg/config"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeSetup   = "setup"
)

// Claims represents the custom JWT claims used by the application.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	Type string `json:"type"`
	// Stamp fingerprints the password hash a setup token was issued against,
	// so the token stops working once a password is set.
	Stamp string `json:"stamp,omitempty"`
}

// JWTService handles generation, validation, and revocation of JWT tokens.
type JWTService struct {
	secret          []byte
	issuer          string
	accessDuration  time.Duration
	refreshDuration time.Duration
	setupDuration   time.Duration
	cache           ports.Cache
	log             *zap.Logger
}

func NewJWTService(cfg config.JWTConfig, cache ports.Cache, log *zap.Logger) *JWTService {
	log.Info("JWT service initialized",
		zap.Duration("access_duration", cfg.AccessTokenDuration),
		zap.Duration("refresh_duration", cfg.RefreshTokenDuration),
		zap.Duration("setup_duration", cfg.SetupTokenDuration),
	)

	return &JWTService{
		secret:          []byte(cfg.Secret),
		issuer:          cfg.Issuer,
		accessDuration:  cfg.AccessTokenDuration,
		refreshDuration: cfg.RefreshTokenDuration,
		setupDuration:   cfg.SetupTokenDuration,
		cache:           cache,
		log:             log,
	}
}

func (s *JWTService) sign(user *domain.User, typ string, ttl time.Duration, stamp string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Type:  typ,
		Stamp: stamp,
	}
	if typ == TokenTypeAccess {
		claims.Role = string(user.Role)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.log.Error("failed to sign token",
			zap.String("user_id", user.ID),
			zap.String("type", typ),
			zap.Error(err),
		)
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, expires, nil
}

func (s *JWTService) GenerateAccessToken(user *domain.User) (string, time.Time, error) {
	return s.sign(user, TokenTypeAccess, s.accessDuration, "")
}

func (s *JWTService) GenerateRefreshToken(user *domain.User) (string, error) {
	token, _, err := s.sign(user, TokenTypeRefresh, s.refreshDuration, "")
	return token, err
}

func (s *JWTService) GenerateSetupToken(user *domain.User) (string, error) {
	token, _, err := s.sign(user, TokenTypeSetup, s.setupDuration, passwordStamp(user.PasswordHash))
	return token, err
}

// ValidateToken parses a token and checks its type and revocation status.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString, wantType string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", domain.ErrInvalidCredentials)
	}
	if claims.Type != wantType {
		return nil, fmt.Errorf("%w: expected %s token, got %s", domain.ErrInvalidCredentials, wantType, claims.Type)
	}
	if s.IsTokenRevoked(ctx, claims.ID) {
		return nil, fmt.Errorf("%w: token revoked", domain.ErrInvalidCredentials)
	}
	return claims, nil
}

// RevokeToken blacklists the token id until it would have expired anyway.
func (s *JWTService) RevokeToken(ctx context.Context, claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, revokedKey(claims.ID), "revoked", ttl); err != nil {
		s.log.Error("failed to revoke token", zap.String("token_id", claims.ID), zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.log.Info("token revoked", zap.String("token_id", claims.ID), zap.String("type", claims.Type))
	return nil
}

// IsTokenRevoked treats cache errors as "not revoked".
func (s *JWTService) IsTokenRevoked(ctx context.Context, tokenID string) bool {
	val, err := s.cache.Get(ctx, revokedKey(tokenID))
	if err != nil {
		return false
	}
	return val == "revoked"
}

func revokedKey(id string) string {
	return "revoked_token:" + id
}

func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
