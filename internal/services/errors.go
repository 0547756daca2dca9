package services

import (
	"errors"
	"net/http"

	goa "goa.design/goa/v3/pkg"
)

// Service error names shared by the HTTP and serverless transports.
const (
	ErrNameBadRequest     = "bad_request"
	ErrNameDeliveryFailed = "delivery_failed"
	ErrNameInternal       = "internal"
)

// Client-facing messages. Causes are logged, never returned.
const (
	invalidSubmissionMessage = "Invalid inquiry submission"
	deliveryFailedMessage    = "Failed to send email. Please try again later."
	internalErrorMessage     = "Internal server error. Please try again later."
	successMessage           = "Inquiry submitted successfully. You will receive a confirmation email shortly."
)

// ErrorResult is the JSON body returned for every non-2xx outcome.
type ErrorResult struct {
	Error  string  `json:"error"`
	Detail *string `json:"detail,omitempty"`
}

// MakeBadRequest builds a bad_request service error from a validation error
func MakeBadRequest(err error) *goa.ServiceError {
	return goa.NewServiceError(err, ErrNameBadRequest, false, false, false)
}

// MakeDeliveryFailed builds a delivery_failed service error
func MakeDeliveryFailed(err error) *goa.ServiceError {
	return goa.NewServiceError(err, ErrNameDeliveryFailed, false, true, true)
}

// MakeInternal builds an internal service error
func MakeInternal(err error) *goa.ServiceError {
	return goa.NewServiceError(err, ErrNameInternal, false, false, true)
}

// BadRequest creates a bad_request error with the given message
func BadRequest(message string) *goa.ServiceError {
	return MakeBadRequest(errors.New(message))
}

// ErrorResponse maps an error returned by InquiryService to a status code and body.
// Anything that is not a known service error is reported as an internal error.
func ErrorResponse(err error) (int, *ErrorResult) {
	var serr *goa.ServiceError
	if !errors.As(err, &serr) {
		return http.StatusInternalServerError, &ErrorResult{Error: internalErrorMessage}
	}
	switch serr.Name {
	case ErrNameBadRequest:
		detail := serr.Message
		return http.StatusBadRequest, &ErrorResult{Error: invalidSubmissionMessage, Detail: &detail}
	case ErrNameDeliveryFailed:
		return http.StatusInternalServerError, &ErrorResult{Error: deliveryFailedMessage}
	default:
		return http.StatusInternalServerError, &ErrorResult{Error: internalErrorMessage}
	}
}
