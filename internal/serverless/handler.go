// Package serverless adapts the inquiry service to AWS Lambda invocations.
package serverless

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
	goa "goa.design/goa/v3/pkg"

	"lavishtravels/internal/logger"
	"lavishtravels/internal/services"
)

const configErrorMessage = "Email service configuration error"

// InquirySubmitter handles one inquiry submission.
type InquirySubmitter interface {
	Submit(ctx context.Context, p *services.SubmitPayload) (*services.SubmitResult, error)
}

// Handler answers API Gateway proxy events and direct invocations.
type Handler struct {
	inquiry InquirySubmitter
	initErr error
}

// NewHandler creates a handler backed by inquiry.
func NewHandler(inquiry InquirySubmitter) *Handler {
	return &Handler{inquiry: inquiry}
}

// NewUnconfiguredHandler creates a handler that fails every submission because
// the service could not be configured at start-up.
func NewUnconfiguredHandler(err error) *Handler {
	return &Handler{initErr: err}
}

// event covers the fields read from API Gateway v1 and v2 proxy events.
type event struct {
	HTTPMethod     string          `json:"httpMethod"`
	Body           json.RawMessage `json:"body"`
	IsBase64       bool            `json:"isBase64Encoded"`
	RequestContext struct {
		RequestID string `json:"requestId"`
		HTTP      struct {
			Method string `json:"method"`
		} `json:"http"`
	} `json:"requestContext"`
}

func (e *event) method() string {
	if e.HTTPMethod != "" {
		return strings.ToUpper(e.HTTPMethod)
	}
	return strings.ToUpper(e.RequestContext.HTTP.Method)
}

// Handle processes one invocation. It never returns an error: every outcome
// is expressed as an HTTP response.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (resp events.APIGatewayProxyResponse, err error) {
	log := logger.Named("lambda")

	defer func() {
		if r := recover(); r != nil {
			log.Error("invocation panicked", zap.Any("panic", r), zap.Stack("stack"))
			status, body := services.ErrorResponse(services.MakeInternal(errors.New("panic")))
			resp, err = respond(status, body), nil
		}
	}()

	var ev event
	if jerr := json.Unmarshal(raw, &ev); jerr != nil {
		return h.fail(ctx, services.MakeBadRequest(goa.DecodePayloadError(jerr.Error()))), nil
	}
	if id := ev.RequestContext.RequestID; id != "" {
		log = log.With(logger.RequestID(id))
	}
	ctx = logger.ToContext(ctx, log)

	if ev.method() == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: corsHeaders()}, nil
	}

	if h.initErr != nil {
		log.Error("service not configured", logger.Err(h.initErr))
		return respond(http.StatusInternalServerError, &services.ErrorResult{Error: configErrorMessage}), nil
	}

	payload, perr := extractPayload(&ev, raw)
	if perr != nil {
		return h.fail(ctx, services.MakeBadRequest(goa.DecodePayloadError(perr.Error()))), nil
	}

	res, serr := h.inquiry.Submit(ctx, payload)
	if serr != nil {
		return h.fail(ctx, serr), nil
	}
	return respond(http.StatusOK, res), nil
}

func (h *Handler) fail(ctx context.Context, err error) events.APIGatewayProxyResponse {
	status, body := services.ErrorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.From(ctx).Error("invocation failed", logger.Err(err))
	}
	return respond(status, body)
}

// extractPayload finds the form payload: a proxy body given as a JSON string
// (optionally base64 encoded) or as an embedded object, or the event itself
// for direct invocations.
func extractPayload(ev *event, raw json.RawMessage) (*services.SubmitPayload, error) {
	body := bytes.TrimSpace(ev.Body)
	isProxy := ev.method() != ""

	switch {
	case len(body) == 0 || bytes.Equal(body, []byte("null")):
		if isProxy {
			return nil, nil
		}
		body = raw
	case body[0] == '"':
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, err
		}
		if ev.IsBase64 {
			decoded, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, err
			}
			s = string(decoded)
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		body = []byte(s)
	}

	var p services.SubmitPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
	}
}

func respond(status int, v any) events.APIGatewayProxyResponse {
	headers := corsHeaders()
	headers["Content-Type"] = "application/json"

	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error. Please try again later."}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}
