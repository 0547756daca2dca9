package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	goa "goa.design/goa/v3/pkg"
	"golang.org/x/sync/errgroup"

	"lavishtravels/internal/domain"
	"lavishtravels/internal/logger"
	"lavishtravels/internal/metrics"
	"lavishtravels/internal/util"
	apperrors "lavishtravels/pkg/errors"
)

// Field length limits
const (
	maxNameLength        = 100
	maxPhoneLength       = 20
	maxQuestionLength    = 1000
	maxInquiryTypeLength = 100
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// SubmitPayload is the inquiry form body. Pointers distinguish absent fields.
type SubmitPayload struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone,omitempty"`
	Question    *string `json:"question,omitempty"`
	InquiryType *string `json:"inquiry_type,omitempty"`
}

// SubmitResult is returned when both notifications were accepted.
type SubmitResult struct {
	Message   string `json:"message"`
	Success   bool   `json:"success"`
	InquiryID string `json:"inquiry_id"`
}

// Notifier sends the two notifications of an inquiry.
type Notifier interface {
	SendSupportNotice(ctx context.Context, inq domain.Inquiry, corr domain.Correlation) Delivery
	SendUserConfirmation(ctx context.Context, inq domain.Inquiry, corr domain.Correlation) Delivery
}

// InquiryService implements the inquiry submission flow
type InquiryService struct {
	notifier Notifier
	now      func() time.Time
}

// NewInquiryService creates a new inquiry service
func NewInquiryService(notifier Notifier) *InquiryService {
	return &InquiryService{
		notifier: notifier,
		now:      time.Now,
	}
}

// Submit validates the payload, sends the support notice and the user
// confirmation, and succeeds only when both were accepted. A partial delivery
// is reported as a failure and nothing is retried or rolled back.
func (s *InquiryService) Submit(ctx context.Context, p *SubmitPayload) (res *SubmitResult, err error) {
	log := logger.From(ctx).With(logger.Component("inquiry"))

	defer func() {
		if r := recover(); r != nil {
			log.Error("inquiry processing panicked", zap.Any("panic", r), zap.Stack("stack"))
			metrics.RecordInquiry("internal_error")
			res, err = nil, MakeInternal(errors.New(internalErrorMessage))
		}
	}()

	if p == nil {
		metrics.RecordInquiry("invalid")
		return nil, BadRequest("request body is required")
	}

	inq, verr := NormalizeSubmitPayload(p)
	if verr != nil {
		log.Info("inquiry rejected: validation error", logger.Err(verr))
		metrics.RecordInquiry("invalid")
		return nil, MakeBadRequest(verr)
	}

	corr := util.NewCorrelation(s.now())
	log = log.With(logger.InquiryID(corr.InquiryID))
	log.Info("processing inquiry",
		logger.Email(inq.Email),
		logger.String("inquiry_type", inq.InquiryType),
	)

	var support, confirmation Delivery
	var g errgroup.Group
	g.Go(func() error {
		support = s.dispatch(ctx, SupportNotice, func() Delivery {
			return s.notifier.SendSupportNotice(ctx, inq, corr)
		})
		return support.Err
	})
	g.Go(func() error {
		confirmation = s.dispatch(ctx, UserConfirmation, func() Delivery {
			return s.notifier.SendUserConfirmation(ctx, inq, corr)
		})
		return confirmation.Err
	})
	sendErr := g.Wait()

	if support.Sent && confirmation.Sent {
		log.Info("emails sent successfully")
		metrics.RecordInquiry("success")
		return &SubmitResult{
			Message:   successMessage,
			Success:   true,
			InquiryID: corr.InquiryID,
		}, nil
	}

	log.Error("failed to send emails",
		logger.Bool("support_sent", support.Sent),
		logger.Bool("confirmation_sent", confirmation.Sent),
		logger.Err(sendErr),
	)
	metrics.RecordInquiry("delivery_failed")
	return nil, MakeDeliveryFailed(errors.New(deliveryFailedMessage))
}

// dispatch runs one send and turns a panic into a failed Delivery.
func (s *InquiryService) dispatch(ctx context.Context, kind DeliveryKind, send func() Delivery) (d Delivery) {
	defer func() {
		if r := recover(); r != nil {
			d = Delivery{
				Kind: kind,
				Err:  apperrors.Wrap(apperrors.ErrCodeInternalError, "panic while sending email", fmt.Errorf("%v", r)),
			}
			logger.From(ctx).Error("notification panicked",
				logger.Component("inquiry"),
				logger.String("kind", string(kind)),
				zap.Any("panic", r),
			)
		}
	}()
	d = send()
	if !d.Sent && d.Err == nil {
		d.Err = apperrors.New(apperrors.ErrCodeInternalError, fmt.Sprintf("%s was not sent", kind))
	}
	return d
}

// NormalizeSubmitPayload trims the payload, validates it and returns the
// inquiry it describes. Blank name or email count as missing; a blank
// inquiry type falls back to domain.DefaultInquiryType.
func NormalizeSubmitPayload(p *SubmitPayload) (domain.Inquiry, error) {
	inq := domain.Inquiry{
		Name:        trimmed(p.Name),
		Email:       trimmed(p.Email),
		Phone:       trimmed(p.Phone),
		Question:    trimmed(p.Question),
		InquiryType: trimmed(p.InquiryType),
	}
	if inq.InquiryType == "" {
		inq.InquiryType = domain.DefaultInquiryType
	}
	if err := ValidateInquiry(inq); err != nil {
		return domain.Inquiry{}, err
	}
	return inq, nil
}

// ValidateInquiry runs the validations defined on Inquiry
func ValidateInquiry(inq domain.Inquiry) (err error) {
	if inq.Name == "" {
		err = goa.MergeErrors(err, goa.MissingFieldError("name", "body"))
	}
	if inq.Email == "" {
		err = goa.MergeErrors(err, goa.MissingFieldError("email", "body"))
	}
	if n := utf8.RuneCountInString(inq.Name); n > maxNameLength {
		err = goa.MergeErrors(err, goa.InvalidLengthError("body.name", inq.Name, n, maxNameLength, false))
	}
	if inq.Email != "" {
		if ferr := goa.ValidateFormat("body.email", inq.Email, goa.FormatEmail); ferr != nil {
			err = goa.MergeErrors(err, ferr)
		} else if !emailRegex.MatchString(inq.Email) {
			err = goa.MergeErrors(err, goa.InvalidFormatError("body.email", inq.Email, goa.FormatEmail, errors.New("invalid email address")))
		}
	}
	if n := utf8.RuneCountInString(inq.Phone); n > maxPhoneLength {
		err = goa.MergeErrors(err, goa.InvalidLengthError("body.phone", inq.Phone, n, maxPhoneLength, false))
	}
	if n := utf8.RuneCountInString(inq.Question); n > maxQuestionLength {
		err = goa.MergeErrors(err, goa.InvalidLengthError("body.question", inq.Question, n, maxQuestionLength, false))
	}
	if n := utf8.RuneCountInString(inq.InquiryType); n > maxInquiryTypeLength {
		err = goa.MergeErrors(err, goa.InvalidLengthError("body.inquiry_type", inq.InquiryType, n, maxInquiryTypeLength, false))
	}
	return err
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
