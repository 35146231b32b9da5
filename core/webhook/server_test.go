package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisoko/sokobot/core/config"
)

type recordedMessage struct {
	Phone string
	Text  string
}

type fakeDispatcher struct {
	messages []recordedMessage
}

func (f *fakeDispatcher) HandleMessage(_ context.Context, fromPhone, text string) error {
	f.messages = append(f.messages, recordedMessage{Phone: fromPhone, Text: text})
	return nil
}

func newTestServer(appSecret string) (*Server, *fakeDispatcher) {
	cfg := &config.Config{
		WhatsApp: config.WhatsAppConfig{
			AccessToken:   "token",
			PhoneNumberID: "12345",
			VerifyToken:   "verify-me",
			AppSecret:     appSecret,
		},
		HTTP: config.HTTPConfig{Listen: "127.0.0.1", Port: 0},
	}
	dispatcher := &fakeDispatcher{}
	return NewServer(cfg, dispatcher), dispatcher
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer("")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestVerifyHandshake(t *testing.T) {
	srv, _ := newTestServer("")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=challenge-42", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "challenge-42", rec.Body.String())
}

func TestVerifyHandshakeRejected(t *testing.T) {
	srv, _ := newTestServer("")

	cases := []string{
		"/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=c",
		"/webhook/whatsapp?hub.mode=unsubscribe&hub.verify_token=verify-me&hub.challenge=c",
		"/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=verify-me",
	}
	for _, url := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, url)
	}
}

const deliveryBody = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "changes": [{
      "field": "messages",
      "value": {
        "messages": [
          {"id": "wamid.X1", "from": "254700000001", "type": "text", "text": {"body": "HELP"}},
          {"id": "wamid.X2", "from": "254700000002", "type": "text", "text": {"body": "LISTINGS"}}
        ]
      }
    }]
  }]
}`

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestDeliveryDispatchesMessages(t *testing.T) {
	srv, dispatcher := newTestServer("app-secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(deliveryBody))
	req.Header.Set("X-Hub-Signature-256", sign("app-secret", deliveryBody))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EVENT_RECEIVED", rec.Body.String())
	require.Len(t, dispatcher.messages, 2)
	assert.Equal(t, recordedMessage{Phone: "254700000001", Text: "HELP"}, dispatcher.messages[0])
	assert.Equal(t, recordedMessage{Phone: "254700000002", Text: "LISTINGS"}, dispatcher.messages[1])
}

func TestDeliveryRejectsBadSignature(t *testing.T) {
	srv, dispatcher := newTestServer("app-secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(deliveryBody))
	req.Header.Set("X-Hub-Signature-256", sign("wrong-secret", deliveryBody))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, dispatcher.messages)
}

func TestDeliveryRejectsInvalidJSON(t *testing.T) {
	srv, dispatcher := newTestServer("")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader("{broken"))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, dispatcher.messages)
}
