package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

// MockAuthService is a mock implementation of AuthService interface
type MockAuthService struct {
	LoginFunc           func(ctx context.Context, email, password string) (*ports.TokenPair, *domain.User, error)
	RefreshTokenFunc    func(ctx context.Context, refreshToken string) (*ports.TokenPair, error)
	ValidateTokenFunc   func(ctx context.Context, token string) (*domain.User, error)
	IssueSetupTokenFunc func(ctx context.Context, user *domain.User) (string, error)
	SetPasswordFunc     func(ctx context.Context, setupToken, password string) error
	LogoutFunc          func(ctx context.Context, accessToken string) error
	HashPasswordFunc    func(password string) (string, error)

	mu          sync.Mutex
	Invalidated []string
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, *domain.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) IssueSetupToken(ctx context.Context, user *domain.User) (string, error) {
	if m.IssueSetupTokenFunc != nil {
		return m.IssueSetupTokenFunc(ctx, user)
	}
	return "setup-token-" + user.ID, nil
}

func (m *MockAuthService) SetPassword(ctx context.Context, setupToken, password string) error {
	if m.SetPasswordFunc != nil {
		return m.SetPasswordFunc(ctx, setupToken, password)
	}
	return nil
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, accessToken)
	}
	return nil
}

// HashPassword defaults to a reversible marker so tests can assert on it.
func (m *MockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *MockAuthService) Invalidate(ctx context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidated = append(m.Invalidated, userID)
}

// SentEmail is one message captured by MockEmailService.
type SentEmail struct {
	To       string
	Template string
	Data     map[string]interface{}
}

// MockEmailService records e-mails instead of sending them.
type MockEmailService struct {
	mu      sync.Mutex
	Sent    []SentEmail
	ErrFunc func(to, template string) error
}

func (m *MockEmailService) record(to, template string, data map[string]interface{}) error {
	if m.ErrFunc != nil {
		if err := m.ErrFunc(to, template); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentEmail{To: to, Template: template, Data: data})
	return nil
}

func (m *MockEmailService) Send(ctx context.Context, to, subject, body string) error {
	return m.record(to, "text", map[string]interface{}{"Subject": subject, "Body": body})
}

func (m *MockEmailService) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	return m.record(to, "html", map[string]interface{}{"Subject": subject, "Body": htmlBody})
}

func (m *MockEmailService) SendTemplate(ctx context.Context, to, templateName string, data map[string]interface{}) error {
	return m.record(to, templateName, data)
}

func (m *MockEmailService) SendWelcome(ctx context.Context, user *domain.User) error {
	return m.record(user.Email, "welcome", map[string]interface{}{"Name": user.Name})
}

func (m *MockEmailService) SendInvitation(ctx context.Context, user *domain.User, setupURL string) error {
	return m.record(user.Email, "invitation", map[string]interface{}{"Name": user.Name, "SetupURL": setupURL})
}

func (m *MockEmailService) SendPasswordChanged(ctx context.Context, user *domain.User) error {
	return m.record(user.Email, "password_changed", map[string]interface{}{"Name": user.Name})
}

func (m *MockEmailService) SendRoleChanged(ctx context.Context, user *domain.User) error {
	return m.record(user.Email, "role_changed", map[string]interface{}{"Name": user.Name, "Role": string(user.Role)})
}

func (m *MockEmailService) SendAccountClosed(ctx context.Context, name, email string) error {
	return m.record(email, "account_closed", map[string]interface{}{"Name": name})
}

func (m *MockEmailService) SendLeadConverted(ctx context.Context, to string, client *domain.Client) error {
	return m.record(to, "lead_converted", map[string]interface{}{"ClientID": client.ID, "ClientName": client.Name})
}

// Templates returns the template names sent so far, in order.
func (m *MockEmailService) Templates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Sent))
	for i, s := range m.Sent {
		out[i] = s.Template
	}
	return out
}
