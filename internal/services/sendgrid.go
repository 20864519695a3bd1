package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridMailEndpoint = "/v3/mail/send"

// SendGridConfig holds the SendGrid credentials and dynamic template ids.
// Host defaults to the public SendGrid API.
type SendGridConfig struct {
	APIKey           string
	Host             string
	From             string
	InviteTemplate   string
	ReminderTemplate string
}

// SendGridNotifier sends template emails through the SendGrid v3 API.
type SendGridNotifier struct {
	cfg SendGridConfig
}

func NewSendGridNotifier(cfg SendGridConfig) *SendGridNotifier {
	return &SendGridNotifier{cfg: cfg}
}

func (n *SendGridNotifier) SendInvite(ctx context.Context, email, eventName string) error {
	return n.send(ctx, email, n.cfg.InviteTemplate, map[string]interface{}{
		"eventName": eventName,
	})
}

func (n *SendGridNotifier) SendReminder(ctx context.Context, email, eventName string, items []string) error {
	return n.send(ctx, email, n.cfg.ReminderTemplate, map[string]interface{}{
		"eventName": eventName,
		"items":     strings.Join(items, ", "),
	})
}

func (n *SendGridNotifier) send(ctx context.Context, email, templateID string, data map[string]interface{}) error {
	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail("", email))
	for key, value := range data {
		personalization.SetDynamicTemplateData(key, value)
	}

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail("", n.cfg.From))
	message.SetTemplateID(templateID)
	message.AddPersonalizations(personalization)

	// one request per message: sendgrid.Client writes the body into itself
	request := sendgrid.GetRequest(n.cfg.APIKey, sendGridMailEndpoint, n.cfg.Host)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	return nil
}
