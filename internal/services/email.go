package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"lavishtravels/internal/config"
	"lavishtravels/internal/logger"
)

const sendGridMailSendPath = "/v3/mail/send"

// Message is one outbound HTML email. The sender address comes from configuration.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Receipt is the provider's answer to a send request.
type Receipt struct {
	StatusCode int
	Body       string
}

// Mailer hands a message to the email provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) (*Receipt, error)
}

// EmailService sends emails through the SendGrid v3 mail send API
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	logger.Named("email").Info("email service initialized",
		logger.String("from", cfg.FromEmail),
		logger.String("base_url", cfg.BaseURL),
	)
	return &EmailService{cfg: cfg}
}

// Send submits msg to SendGrid. A nil error only means the request completed;
// callers decide acceptance from Receipt.StatusCode.
func (s *EmailService) Send(ctx context.Context, msg Message) (*Receipt, error) {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", msg.To))
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", msg.HTMLBody))

	client := sendgrid.NewSendClient(s.cfg.APIKey)
	client.Request.BaseURL = strings.TrimRight(s.cfg.BaseURL, "/") + sendGridMailSendPath

	resp, err := client.SendWithContext(ctx, m)
	if resp != nil {
		receipt := &Receipt{StatusCode: resp.StatusCode, Body: resp.Body}
		if err != nil {
			return receipt, fmt.Errorf("sendgrid send: %w", err)
		}
		return receipt, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sendgrid send: %w", err)
	}
	return nil, fmt.Errorf("sendgrid send: empty response")
}
