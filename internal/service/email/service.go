package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/pkg/config"
)

// Provider defines the interface for email providers
type Provider interface {
	Send(ctx context.Context, to, subject, body string, isHTML bool) error
}

// Config holds email service configuration
type Config struct {
	config.EmailConfig

	AppName string
	// BaseURL is the admin SPA root used for links in e-mails.
	BaseURL string
	// InvitationTTL is shown in invitation e-mails; it matches the setup token lifetime.
	InvitationTTL time.Duration
}

// DefaultConfig returns a default configuration for development
func DefaultConfig() *Config {
	return &Config{
		EmailConfig: config.EmailConfig{
			Provider: "log",
			From:     "noreply@imob-crm.fr",
			FromName: "Imob CRM",
			SMTPHost: "localhost",
			SMTPPort: 1025,
		},
		AppName:       "Imob CRM",
		BaseURL:       "http://localhost:5173",
		InvitationTTL: 72 * time.Hour,
	}
}

// Service implements the EmailService interface
type Service struct {
	config    *Config
	provider  Provider
	breaker   *gobreaker.CircuitBreaker
	templates map[string]*template.Template
	log       *zap.Logger
}

var _ ports.EmailService = (*Service)(nil)

// NewService picks the provider from config. breakers may be nil, in which case
// the provider is called directly.
func NewService(cfg *Config, breakers *circuitbreaker.Manager, log *zap.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var provider Provider
	switch cfg.Provider {
	case "sendgrid":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("SendGrid API key is required")
		}
		provider = NewSendGridProvider(cfg.APIKey, cfg.From, cfg.FromName)
	case "smtp":
		provider = NewSMTPProvider(cfg.EmailConfig)
	case "log", "":
		provider = NewLogProvider(log)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}

	s := newService(cfg, provider, log)
	if breakers != nil {
		s.breaker = breakers.Get("email")
	}

	log.Info("Email service initialized", zap.String("provider", cfg.Provider))
	return s, nil
}

func newService(cfg *Config, provider Provider, log *zap.Logger) *Service {
	s := &Service{
		config:    cfg,
		provider:  provider,
		templates: make(map[string]*template.Template, len(templateBodies)),
		log:       log,
	}
	s.loadTemplates()
	return s
}

func (s *Service) loadTemplates() {
	for name, body := range templateBodies {
		t := template.Must(template.New(name).Parse(layoutTemplate))
		template.Must(t.New("content").Parse(body))
		s.templates[name] = t
	}
}

func (s *Service) deliver(ctx context.Context, to, subject, body string, isHTML bool) error {
	send := func() error { return s.provider.Send(ctx, to, subject, body, isHTML) }

	var err error
	if s.breaker != nil {
		err = circuitbreaker.Execute(s.breaker, send)
	} else {
		err = send()
	}
	if err != nil {
		telemetry.NotificationsSentTotal.WithLabelValues("email", "error").Inc()
		s.log.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}
	telemetry.NotificationsSentTotal.WithLabelValues("email", "sent").Inc()
	return nil
}

// Send sends a plain-text email
func (s *Service) Send(ctx context.Context, to, subject, body string) error {
	s.log.Info("Sending email",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return s.deliver(ctx, to, subject, body, false)
}

// SendHTML sends an HTML email
func (s *Service) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	s.log.Info("Sending HTML email",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return s.deliver(ctx, to, subject, htmlBody, true)
}

// SendTemplate renders a named template. data["Subject"] sets the subject line.
func (s *Service) SendTemplate(ctx context.Context, to, templateName string, data map[string]interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	data["BaseURL"] = s.config.BaseURL
	data["AppName"] = s.config.AppName

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject, ok := data["Subject"].(string)
	if !ok {
		subject = "Notification " + s.config.AppName
	}

	return s.SendHTML(ctx, to, subject, buf.String())
}

func (s *Service) SendWelcome(ctx context.Context, user *domain.User) error {
	return s.SendTemplate(ctx, user.Email, TemplateWelcome, map[string]interface{}{
		"Subject": "Bienvenue sur " + s.config.AppName,
		"Name":    user.Name,
		"Email":   user.Email,
		"Role":    string(user.Role),
	})
}

func (s *Service) SendInvitation(ctx context.Context, user *domain.User, setupURL string) error {
	return s.SendTemplate(ctx, user.Email, TemplateInvitation, map[string]interface{}{
		"Subject":   "Activez votre compte " + s.config.AppName,
		"Name":      user.Name,
		"Role":      string(user.Role),
		"SetupURL":  setupURL,
		"ExpiresIn": fmt.Sprintf("%d heures", int(s.config.InvitationTTL.Hours())),
	})
}

func (s *Service) SendPasswordChanged(ctx context.Context, user *domain.User) error {
	return s.SendTemplate(ctx, user.Email, TemplatePasswordChanged, map[string]interface{}{
		"Subject": "Votre mot de passe a été modifié",
		"Name":    user.Name,
	})
}

func (s *Service) SendRoleChanged(ctx context.Context, user *domain.User) error {
	return s.SendTemplate(ctx, user.Email, TemplateRoleChanged, map[string]interface{}{
		"Subject":     "Votre rôle a changé",
		"Name":        user.Name,
		"Role":        string(user.Role),
		"Permissions": user.Permissions,
	})
}

func (s *Service) SendAccountClosed(ctx context.Context, name, email string) error {
	return s.SendTemplate(ctx, email, TemplateAccountClosed, map[string]interface{}{
		"Subject": "Votre compte a été supprimé",
		"Name":    name,
	})
}

func (s *Service) SendLeadConverted(ctx context.Context, to string, client *domain.Client) error {
	return s.SendTemplate(ctx, to, TemplateLeadConverted, map[string]interface{}{
		"Subject":    fmt.Sprintf("%s est maintenant client", client.Name),
		"ClientID":   client.ID,
		"ClientName": client.Name,
		"ClientType": string(client.ClientType),
		"Budget":     client.Budget,
	})
}
