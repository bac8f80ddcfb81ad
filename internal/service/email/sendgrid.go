package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendgridCategory tags every CRM message so agency mail can be filtered in
// the SendGrid activity feed.
const sendgridCategory = "imob-crm"

type SendGridProvider struct {
	from   *mail.Email
	client *sendgrid.Client
}

func NewSendGridProvider(apiKey, fromEmail, fromName string) *SendGridProvider {
	return &SendGridProvider{
		from:   mail.NewEmail(fromName, fromEmail),
		client: sendgrid.NewSendClient(apiKey),
	}
}

func (p *SendGridProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	response, err := p.client.SendWithContext(ctx, p.buildMessage(to, subject, body, isHTML))
	if err != nil {
		return fmt.Errorf("sendgrid error: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (p *SendGridProvider) buildMessage(to, subject, body string, isHTML bool) *mail.SGMailV3 {
	contentType := "text/plain"
	if isHTML {
		contentType = "text/html"
	}

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail("", to))

	message := mail.NewV3Mail()
	message.SetFrom(p.from)
	message.Subject = subject
	message.AddPersonalizations(personalization)
	message.AddContent(mail.NewContent(contentType, body))
	message.AddCategories(sendgridCategory)
	return message
}
