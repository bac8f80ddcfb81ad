// Package notification turns queued domain events into e-mails and live
// websocket pushes.
package notification

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/internal/service/events"
)

const handleTimeout = 30 * time.Second

// Broadcaster pushes raw event JSON to the live sessions holding need.
type Broadcaster interface {
	Broadcast(message []byte, need domain.Permission)
}

type Dispatcher struct {
	queue     ports.MessageQueue
	subject   string
	users     ports.UserRepository
	clients   ports.ClientRepository
	auth      ports.AuthService
	email     ports.EmailService
	hub       Broadcaster
	publicURL string
	log       *zap.Logger
}

func NewDispatcher(
	queue ports.MessageQueue,
	subject string,
	users ports.UserRepository,
	clients ports.ClientRepository,
	auth ports.AuthService,
	email ports.EmailService,
	hub Broadcaster,
	publicURL string,
	log *zap.Logger,
) *Dispatcher {
	if subject == "" {
		subject = events.DefaultSubject
	}
	return &Dispatcher{
		queue:     queue,
		subject:   subject,
		users:     users,
		clients:   clients,
		auth:      auth,
		email:     email,
		hub:       hub,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}
}

func (d *Dispatcher) Start() error {
	if err := d.queue.Subscribe(d.subject, d.handle); err != nil {
		return fmt.Errorf("subscribe %s: %w", d.subject, err)
	}
	d.log.Info("Notification dispatcher started", zap.String("subject", d.subject))
	return nil
}

func (d *Dispatcher) handle(data []byte) error {
	event, err := events.Decode(data)
	if err != nil {
		d.log.Warn("Discarding malformed event", zap.Error(err))
		return nil
	}

	if d.hub != nil {
		d.hub.Broadcast(data, event.Type.ViewPermission())
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := d.notify(ctx, event); err != nil {
		d.log.Error("Notification failed",
			zap.String("type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (d *Dispatcher) notify(ctx context.Context, event domain.Event) error {
	switch event.Type {
	case domain.EventUserCreated:
		return d.onUserCreated(ctx, event)

	case domain.EventUserPasswordReset:
		if event.Payload["notify"] != "true" {
			return nil
		}
		u, err := d.user(ctx, event.SubjectID)
		if err != nil || u == nil {
			return err
		}
		return d.email.SendPasswordChanged(ctx, u)

	case domain.EventUserRoleChanged:
		u, err := d.user(ctx, event.SubjectID)
		if err != nil || u == nil {
			return err
		}
		return d.email.SendRoleChanged(ctx, u)

	case domain.EventUserDeleted:
		// The record is gone; the payload carries what the message needs.
		if event.Payload["email"] == "" {
			return nil
		}
		return d.email.SendAccountClosed(ctx, event.Payload["name"], event.Payload["email"])

	case domain.EventLeadConverted:
		to := event.Payload["assignedTo"]
		if !strings.Contains(to, "@") {
			return nil
		}
		client, err := d.clients.FindByID(ctx, event.SubjectID)
		if err != nil {
			return fmt.Errorf("load client %s: %w", event.SubjectID, err)
		}
		if client == nil {
			return nil
		}
		return d.email.SendLeadConverted(ctx, to, client)
	}
	return nil
}

func (d *Dispatcher) onUserCreated(ctx context.Context, event domain.Event) error {
	u, err := d.user(ctx, event.SubjectID)
	if err != nil || u == nil {
		return err
	}

	if u.Status != domain.UserStatusPending {
		return d.email.SendWelcome(ctx, u)
	}

	token, err := d.auth.IssueSetupToken(ctx, u)
	if err != nil {
		return fmt.Errorf("issue setup token: %w", err)
	}
	return d.email.SendInvitation(ctx, u, d.setupURL(token))
}

func (d *Dispatcher) setupURL(token string) string {
	return d.publicURL + "/setup-password?token=" + url.QueryEscape(token)
}

// user returns nil, nil when the user was deleted before the event was handled.
func (d *Dispatcher) user(ctx context.Context, id string) (*domain.User, error) {
	u, err := d.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	if u == nil {
		d.log.Debug("User gone before notification", zap.String("user_id", id))
	}
	return u, nil
}
