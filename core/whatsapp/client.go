package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/agrisoko/sokobot/core/logger"
)

const sendTimeout = 20 * time.Second

// Options configures the outbound Cloud API client.
type Options struct {
	AccessToken   string
	PhoneNumberID string
	GraphBaseURL  string
	// HTTPClient overrides the default retrying client, mainly for tests.
	HTTPClient *http.Client
}

// Client sends messages through the WhatsApp Cloud API.
type Client struct {
	http          *http.Client
	token         string
	phoneNumberID string
	graphBase     string
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = BuildHTTPClient()
	}
	return &Client{
		http:          httpClient,
		token:         opts.AccessToken,
		phoneNumberID: opts.PhoneNumberID,
		graphBase:     strings.TrimRight(opts.GraphBaseURL, "/"),
	}
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText delivers a single text message to one recipient.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	payload := textPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "whatsapp: encode payload")
	}

	url := fmt.Sprintf("%s/%s/messages", c.graphBase, c.phoneNumberID)
	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "whatsapp: build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		redacted := c.redact(err.Error())
		logger.Error(ctx, "wa", "send.fail",
			slog.String("to", to),
			slog.String("error", redacted),
			slog.Int64("duration_ms", int64(logger.RoundMS(time.Since(start))/time.Millisecond)),
		)
		return errors.New("whatsapp: send text: " + redacted)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		limited := io.LimitReader(resp.Body, 4096)
		var ae apiError
		msg := resp.Status
		if decodeErr := json.NewDecoder(limited).Decode(&ae); decodeErr == nil && ae.Error.Message != "" {
			msg = fmt.Sprintf("%s (%s, code %d)", ae.Error.Message, ae.Error.Type, ae.Error.Code)
		}
		logger.Error(ctx, "wa", "send.fail",
			slog.String("to", to),
			slog.Int("status", resp.StatusCode),
			slog.String("error", c.redact(msg)),
		)
		return errors.Errorf("whatsapp: send text: status %d: %s", resp.StatusCode, c.redact(msg))
	}

	logger.Debug(ctx, "wa", "send.success",
		slog.String("to", to),
		slog.Int64("duration_ms", int64(logger.RoundMS(time.Since(start))/time.Millisecond)),
	)
	return nil
}

// BroadcastText sends the same body to each recipient sequentially.
// Individual failures are logged and skipped so one bad number does not
// block the rest of the fan-out.
func (c *Client) BroadcastText(ctx context.Context, recipients []string, body string) {
	for _, to := range recipients {
		if err := c.SendText(ctx, to, body); err != nil {
			logger.Warn(ctx, "wa", "broadcast.skip",
				slog.String("to", to),
				slog.String("error", c.redact(err.Error())),
			)
		}
	}
}

// redact keeps the access token out of logs and returned errors.
func (c *Client) redact(msg string) string {
	if c.token == "" {
		return msg
	}
	return strings.ReplaceAll(msg, c.token, "<redacted>")
}
