package whatsapp

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// WebhookPayload mirrors the Cloud API webhook envelope. Only the fields
// the bot consumes are declared.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
	Statuses         []Status  `json:"statuses"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type Message struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Button      *Button      `json:"button,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

type Button struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

type Interactive struct {
	Type        string `json:"type"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
	ListReply   *Reply `json:"list_reply,omitempty"`
}

type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Status entries report delivery state transitions; the bot ignores them
// but parses enough to tell them apart from messages.
type Status struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Inbound is a user message reduced to what the command router needs.
type Inbound struct {
	MessageID string
	From      string
	Text      string
}

// ParsePayload decodes a webhook delivery body.
func ParsePayload(body []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "whatsapp: decode webhook payload")
	}
	return &payload, nil
}

// ExtractMessages flattens a webhook delivery into inbound user messages.
// Text bodies, quick-reply button texts, and interactive reply titles all
// map to plain text; anything else (media, reactions, statuses) is skipped.
func ExtractMessages(payload *WebhookPayload) []Inbound {
	var out []Inbound
	if payload == nil {
		return out
	}
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, msg := range change.Value.Messages {
				text, ok := messageText(msg)
				if !ok {
					continue
				}
				out = append(out, Inbound{
					MessageID: msg.ID,
					From:      msg.From,
					Text:      text,
				})
			}
		}
	}
	return out
}

func messageText(msg Message) (string, bool) {
	switch {
	case msg.Text != nil:
		return msg.Text.Body, true
	case msg.Button != nil:
		return msg.Button.Text, true
	case msg.Interactive != nil:
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.Title, true
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.Title, true
		}
	}
	return "", false
}
