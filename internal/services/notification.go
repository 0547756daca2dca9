package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lavishtravels/internal/config"
	"lavishtravels/internal/domain"
	"lavishtravels/internal/logger"
	"lavishtravels/internal/metrics"
	"lavishtravels/internal/templates"
	apperrors "lavishtravels/pkg/errors"
)

// Placeholder phrases used when optional fields were left empty.
const (
	PhoneNotProvided    = "Not provided"
	QuestionNotProvided = "No specific question provided"
)

const userConfirmationSubject = "Thank you for your inquiry - Lavish Travels & Tours"

// DeliveryKind names one of the two notifications sent per inquiry.
type DeliveryKind string

const (
	SupportNotice    DeliveryKind = "support_notice"
	UserConfirmation DeliveryKind = "user_confirmation"
)

// Delivery is the outcome of one notification. Sent is true only when the
// provider accepted the message; otherwise Err says why.
type Delivery struct {
	Kind       DeliveryKind
	Recipient  string
	Sent       bool
	StatusCode int
	Err        error
}

// TemplateLoader returns template content by name. It never fails.
type TemplateLoader interface {
	Load(name string) string
}

// NotificationService renders and sends the support notice and user confirmation
type NotificationService struct {
	mailer       Mailer
	templates    TemplateLoader
	supportEmail string
	timeout      time.Duration
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg *config.EmailConfig, mailer Mailer, loader TemplateLoader) *NotificationService {
	return &NotificationService{
		mailer:       mailer,
		templates:    loader,
		supportEmail: cfg.SupportEmail,
		timeout:      cfg.SendTimeout(),
	}
}

// SendSupportNotice tells the support mailbox about a new inquiry
func (s *NotificationService) SendSupportNotice(ctx context.Context, inq domain.Inquiry, corr domain.Correlation) Delivery {
	phone := inq.Phone
	if phone == "" {
		phone = PhoneNotProvided
	}
	question := inq.Question
	if question == "" {
		question = QuestionNotProvided
	}

	values := map[string]string{
		"{{USER_NAME}}":     inq.Name,
		"{{USER_EMAIL}}":    inq.Email,
		"{{USER_PHONE}}":    phone,
		"{{INQUIRY_TYPE}}":  inq.InquiryType,
		"{{USER_QUESTION}}": question,
		"{{TIMESTAMP}}":     corr.Timestamp,
		"{{INQUIRY_ID}}":    corr.InquiryID,
	}
	subject := fmt.Sprintf("New Inquiry: %s - %s", inq.InquiryType, inq.Name)

	return s.deliver(ctx, SupportNotice, s.supportEmail, subject, templates.SupportEmail, values, corr)
}

// SendUserConfirmation confirms receipt to the person who submitted the inquiry
func (s *NotificationService) SendUserConfirmation(ctx context.Context, inq domain.Inquiry, corr domain.Correlation) Delivery {
	values := map[string]string{
		"{{USER_NAME}}":    inq.Name,
		"{{USER_EMAIL}}":   inq.Email,
		"{{INQUIRY_TYPE}}": inq.InquiryType,
		"{{TIMESTAMP}}":    corr.Timestamp,
		"{{INQUIRY_ID}}":   corr.InquiryID,
	}

	return s.deliver(ctx, UserConfirmation, inq.Email, userConfirmationSubject, templates.UserConfirmationEmail, values, corr)
}

func (s *NotificationService) deliver(ctx context.Context, kind DeliveryKind, to, subject, templateName string, values map[string]string, corr domain.Correlation) (d Delivery) {
	d = Delivery{Kind: kind, Recipient: to}
	log := logger.From(ctx).With(
		logger.Component("notification"),
		logger.String("kind", string(kind)),
		logger.InquiryID(corr.InquiryID),
	)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.Sent = false
			d.Err = apperrors.Wrap(apperrors.ErrCodeInternalError, "panic while sending email", fmt.Errorf("%v", r))
			log.Error("email send panicked", logger.Err(d.Err))
		}
		metrics.RecordEmailSend(string(kind), d.Sent, time.Since(start))
	}()

	body := templates.Render(s.templates.Load(templateName), values)

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log.Info("sending email", logger.Email(to))
	receipt, err := s.mailer.Send(sendCtx, Message{
		To:       to,
		Subject:  cleanSubject(subject),
		HTMLBody: body,
	})
	if receipt != nil {
		d.StatusCode = receipt.StatusCode
	}

	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(sendCtx.Err(), context.DeadlineExceeded)):
		d.Err = apperrors.Wrap(apperrors.ErrCodeProviderTimeout, "email provider call timed out", err)
	case err != nil && d.StatusCode != 0:
		d.Err = apperrors.Wrap(apperrors.ErrCodeProviderRejected, fmt.Sprintf("email provider returned status %d", d.StatusCode), err)
	case err != nil:
		d.Err = apperrors.Wrap(apperrors.ErrCodeProviderUnavailable, "email provider request failed", err)
	case d.StatusCode != http.StatusAccepted:
		d.Err = apperrors.New(apperrors.ErrCodeProviderRejected, fmt.Sprintf("email provider returned status %d", d.StatusCode))
	default:
		d.Sent = true
	}

	if d.Err != nil {
		fields := []logger.Field{logger.Err(d.Err), logger.Int("status_code", d.StatusCode)}
		if receipt != nil && receipt.Body != "" {
			fields = append(fields, logger.String("provider_body", receipt.Body))
		}
		log.Error("email send failed", fields...)
		return d
	}

	log.Info("email sent", logger.Int("status_code", d.StatusCode))
	return d
}

var subjectNewlines = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func cleanSubject(s string) string {
	return strings.TrimSpace(subjectNewlines.Replace(s))
}
