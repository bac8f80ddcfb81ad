package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/mocks"
	"github.com/seu-repo/imob-crm/pkg/config"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

var testJWT = config.JWTConfig{
	Secret:               "test-secret-key",
	Issuer:               "imob-crm-test",
	AccessTokenDuration:  15 * time.Minute,
	RefreshTokenDuration: time.Hour,
	SetupTokenDuration:   time.Hour,
}

// userRepo backs a MockUserRepository with a map and counts lookups by id.
func userRepo(users ...domain.User) (*mocks.MockUserRepository, map[string]*domain.User, *int) {
	byID := make(map[string]*domain.User)
	for i := range users {
		u := users[i].Clone()
		byID[u.ID] = &u
	}
	lookups := 0
	repo := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			lookups++
			if u, ok := byID[id]; ok {
				out := u.Clone()
				return &out, nil
			}
			return nil, nil
		},
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			for _, u := range byID {
				if domain.NormalizeEmail(u.Email) == email {
					out := u.Clone()
					return &out, nil
				}
			}
			return nil, nil
		},
		UpdateFunc: func(ctx context.Context, user *domain.User) (bool, error) {
			if _, ok := byID[user.ID]; !ok {
				return false, nil
			}
			u := user.Clone()
			byID[u.ID] = &u
			return true, nil
		},
	}
	return repo, byID, &lookups
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func activeUser(t *testing.T) domain.User {
	return domain.User{
		ID:           "U001",
		Name:         "Marie Dupont",
		Email:        "marie@agence.fr",
		Role:         domain.RoleAgent,
		Status:       domain.UserStatusActive,
		Permissions:  []domain.Permission{domain.PermViewLeads},
		PasswordHash: hashed(t, "password123"),
	}
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo, stored, _ := userRepo(activeUser(t))
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())

	// Act
	pair, user, err := service.Login(ctx, "  Marie@Agence.FR ", "password123")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected both tokens")
	}
	if user.PasswordHash != "" {
		t.Error("expected password hash to be stripped")
	}
	if stored["U001"].LastLogin == nil {
		t.Error("expected last login to be recorded")
	}
}

func TestLogin_InvalidPassword(t *testing.T) {
	repo, _, _ := userRepo(activeUser(t))
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())

	_, _, err := service.Login(context.Background(), "marie@agence.fr", "wrong-password")

	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo, _, _ := userRepo()
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())

	_, _, err := service.Login(context.Background(), "nobody@agence.fr", "password123")

	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	u := activeUser(t)
	u.Status = domain.UserStatusInactive
	repo, _, _ := userRepo(u)
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())

	_, _, err := service.Login(context.Background(), "marie@agence.fr", "password123")

	if !errors.Is(err, domain.ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}
}

func TestLogin_PendingUserWithoutPassword(t *testing.T) {
	u := activeUser(t)
	u.Status = domain.UserStatusPending
	u.PasswordHash = ""
	repo, _, _ := userRepo(u)
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())

	_, _, err := service.Login(context.Background(), "marie@agence.fr", "")

	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateToken_CachesSession(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo, _, lookups := userRepo(activeUser(t))
	cache := mocks.NewMockCache()
	service := NewService(repo, cache, testJWT, time.Minute, newTestLogger())
	pair, _, err := service.Login(ctx, "marie@agence.fr", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Act
	first, err := service.ValidateToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	second, err := service.ValidateToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	// Assert
	if *lookups != 1 {
		t.Errorf("expected one repository lookup, got %d", *lookups)
	}
	if first.ID != "U001" || second.ID != "U001" {
		t.Errorf("unexpected users %q %q", first.ID, second.ID)
	}
	if !cache.Has("user_session:U001") {
		t.Error("expected session to be cached")
	}

	service.Invalidate(ctx, "U001")
	if cache.Has("user_session:U001") {
		t.Error("expected session to be invalidated")
	}
}

func TestValidateToken_RejectsOtherTokenTypes(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := userRepo(activeUser(t))
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())
	pair, _, _ := service.Login(ctx, "marie@agence.fr", "password123")

	_, err := service.ValidateToken(ctx, pair.RefreshToken)

	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	ctx := context.Background()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "U001",
			Issuer:    testJWT.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Type: TokenTypeAccess,
	}
	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	repo, _, _ := userRepo(activeUser(t))
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())

	_, err := service.ValidateToken(ctx, forged)

	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshToken_Rotates(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo, _, _ := userRepo(activeUser(t))
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())
	pair, _, _ := service.Login(ctx, "marie@agence.fr", "password123")

	// Act
	next, err := service.RefreshToken(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	_, reuseErr := service.RefreshToken(ctx, pair.RefreshToken)

	// Assert
	if next.AccessToken == "" {
		t.Error("expected a new access token")
	}
	if !errors.Is(reuseErr, domain.ErrInvalidCredentials) {
		t.Errorf("expected reused refresh token to be rejected, got %v", reuseErr)
	}
}

func TestRefreshToken_InactiveUser(t *testing.T) {
	ctx := context.Background()
	repo, stored, _ := userRepo(activeUser(t))
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())
	pair, _, _ := service.Login(ctx, "marie@agence.fr", "password123")
	stored["U001"].Status = domain.UserStatusInactive

	_, err := service.RefreshToken(ctx, pair.RefreshToken)

	if !errors.Is(err, domain.ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := userRepo(activeUser(t))
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())
	pair, _, _ := service.Login(ctx, "marie@agence.fr", "password123")

	if err := service.Logout(ctx, pair.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err := service.ValidateToken(ctx, pair.AccessToken)

	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestSetPassword_ActivatesPendingUser(t *testing.T) {
	// Arrange
	ctx := context.Background()
	pending := domain.User{
		ID:     "U002",
		Name:   "Paul Martin",
		Email:  "paul@agence.fr",
		Role:   domain.RoleIntern,
		Status: domain.UserStatusPending,
	}
	repo, stored, _ := userRepo(pending)
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())
	token, err := service.IssueSetupToken(ctx, &pending)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Act
	err = service.SetPassword(ctx, token, "nouveau-mdp-42")

	// Assert
	if err != nil {
		t.Fatalf("set password: %v", err)
	}
	if stored["U002"].Status != domain.UserStatusActive {
		t.Errorf("expected Active, got %q", stored["U002"].Status)
	}
	if _, _, err := service.Login(ctx, "paul@agence.fr", "nouveau-mdp-42"); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}
	if err := service.SetPassword(ctx, token, "encore-un-autre"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected setup token to be single use, got %v", err)
	}
}

func TestSetPassword_StaleTokenAfterPasswordChange(t *testing.T) {
	ctx := context.Background()
	u := activeUser(t)
	repo, stored, _ := userRepo(u)
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())
	token, _ := service.IssueSetupToken(ctx, &u)
	stored["U001"].PasswordHash = hashed(t, "changed-elsewhere")

	err := service.SetPassword(ctx, token, "nouveau-mdp-42")

	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	repo, _, _ := userRepo()
	service := NewService(repo, mocks.NewMockCache(), testJWT, time.Minute, newTestLogger())

	_, err := service.HashPassword("court")

	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
