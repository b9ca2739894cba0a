package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one rendered email.
type Message struct {
	To      string  `json:"to"`
	Subject string  `json:"subject"`
	HTML    string  `json:"html"`
	Order   Payload `json:"order"`
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// NewConfirmation renders the confirmation message for p.
func NewConfirmation(p Payload) (Message, error) {
	html, err := Render(p)
	if err != nil {
		return Message{}, err
	}
	return Message{To: p.CustomerEmail, Subject: Subject(p), HTML: html, Order: p}, nil
}

// FunctionSender posts messages to a hosted email function.
type FunctionSender struct {
	URL    string
	APIKey string
	Client *http.Client
}

// NewFunctionSender returns a FunctionSender with a bounded HTTP client.
func NewFunctionSender(url, apiKey string) *FunctionSender {
	return &FunctionSender{URL: url, APIKey: apiKey, Client: &http.Client{Timeout: 10 * time.Second}}
}

// Send posts m as JSON. Any non-2xx response is an error.
func (s *FunctionSender) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("calling email function: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email function returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// LogSender discards messages; used when no email function is configured.
type LogSender struct {
	Log func(msg string, args ...any)
}

// Send records the message summary and returns nil.
func (s LogSender) Send(_ context.Context, m Message) error {
	if s.Log != nil {
		s.Log("mail_skipped", "to", m.To, "subject", m.Subject)
	}
	return nil
}
