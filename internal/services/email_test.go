package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavishtravels/internal/config"
)

type capturedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

func fakeSendGrid(t *testing.T, status int, body string) (*httptest.Server, <-chan capturedRequest) {
	t.Helper()
	captured := make(chan capturedRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var decoded map[string]any
		assert.NoError(t, json.Unmarshal(raw, &decoded))
		captured <- capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   decoded,
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func emailConfig(baseURL string) *config.EmailConfig {
	return &config.EmailConfig{
		APIKey:         "SG.test-key",
		BaseURL:        baseURL,
		FromEmail:      "noreply@lavishtravelsandtours.online",
		FromName:       "Lavish Travels & Tours",
		SupportEmail:   supportAddr,
		TimeoutSeconds: 5,
	}
}

func TestEmailService_Send(t *testing.T) {
	srv, captured := fakeSendGrid(t, http.StatusAccepted, "")
	svc := NewEmailService(emailConfig(srv.URL + "/"))

	receipt, err := svc.Send(context.Background(), Message{
		To:       "john@example.com",
		Subject:  "Thank you for your inquiry - Lavish Travels & Tours",
		HTMLBody: "<p>Hello</p>",
	})

	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, http.StatusAccepted, receipt.StatusCode)

	req := <-captured
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v3/mail/send", req.Path)
	assert.Equal(t, "Bearer SG.test-key", req.Auth)
	assert.Equal(t, "Thank you for your inquiry - Lavish Travels & Tours", req.Body["subject"])

	from := req.Body["from"].(map[string]any)
	assert.Equal(t, "noreply@lavishtravelsandtours.online", from["email"])
	assert.Equal(t, "Lavish Travels & Tours", from["name"])

	personalizations := req.Body["personalizations"].([]any)
	require.Len(t, personalizations, 1)
	to := personalizations[0].(map[string]any)["to"].([]any)
	require.Len(t, to, 1)
	assert.Equal(t, "john@example.com", to[0].(map[string]any)["email"])

	content := req.Body["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "text/html", content[0].(map[string]any)["type"])
	assert.Equal(t, "<p>Hello</p>", content[0].(map[string]any)["value"])
}

func TestEmailService_SendRejected(t *testing.T) {
	srv, _ := fakeSendGrid(t, http.StatusBadRequest, `{"errors":[{"message":"invalid from"}]}`)
	svc := NewEmailService(emailConfig(srv.URL))

	receipt, err := svc.Send(context.Background(), Message{To: "john@example.com", Subject: "s", HTMLBody: "b"})

	// Depending on the client version a 4xx may or may not surface as an error,
	// but the receipt must carry the status either way.
	if receipt == nil {
		require.Error(t, err)
		return
	}
	assert.Equal(t, http.StatusBadRequest, receipt.StatusCode)
	assert.Contains(t, receipt.Body, "invalid from")
}

func TestEmailService_SendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	receipt, err := NewEmailService(emailConfig(url)).Send(context.Background(), Message{To: "john@example.com", Subject: "s", HTMLBody: "b"})

	require.Error(t, err)
	assert.Nil(t, receipt)
}

// A rejected send surfaces as an unsent delivery through the notification service.
func TestEmailService_RejectionFailsDelivery(t *testing.T) {
	srv, _ := fakeSendGrid(t, http.StatusUnauthorized, `{"errors":[{"message":"bad key"}]}`)
	cfg := emailConfig(srv.URL)
	notifications := NewNotificationService(cfg, NewEmailService(cfg), staticTemplates("<p>{{USER_NAME}}</p>"))

	d := notifications.SendUserConfirmation(context.Background(), johnDoe(), testCorrelation())

	assert.False(t, d.Sent)
	assert.Error(t, d.Err)
}

type staticTemplates string

func (s staticTemplates) Load(string) string { return string(s) }
