// Package contact forwards contact-form submissions to an email relay.
//
// The form is not validated or transformed: every field, including the city
// picked in the autocomplete, is passed to the relay template as typed.
// A failed send is returned to the caller once; nothing is retried or queued.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Form holds the fields of the contact form.
type Form struct {
	Name    string
	Surname string
	Email   string
	Message string
	Day1    string // First preferred day
	Day2    string // Second preferred day
	City    string // Value committed in the city autocomplete
}

// Params returns the relay template parameters for f.
// Keys match the template variables of the published form.
func (f Form) Params() map[string]string {
	return map[string]string{
		"name":    f.Name,
		"surname": f.Surname,
		"email":   f.Email,
		"message": f.Message,
		"dzien1":  f.Day1,
		"dzien2":  f.Day2,
		"city":    f.City,
	}
}

// Message is one submission as handed to a Relay.
type Message struct {
	ID     string
	Params map[string]string
}

// Relay delivers messages to a third-party service.
type Relay interface {
	Send(ctx context.Context, msg Message) error
}

// RelayError is returned when the relay answers with a non-2xx status.
type RelayError struct {
	StatusCode int
	Body       string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay rejected message: status %d: %s", e.StatusCode, e.Body)
}

// DefaultEmailJSEndpoint is the EmailJS REST endpoint for sending a template.
const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// maxErrorBody bounds how much of a failed response is kept in RelayError.
const maxErrorBody = 4096

// EmailJSConfig identifies the EmailJS account, service and template.
type EmailJSConfig struct {
	Endpoint   string // Defaults to DefaultEmailJSEndpoint
	ServiceID  string
	TemplateID string
	PublicKey  string // Sent as user_id
	PrivateKey string // Sent as accessToken when set
}

// EmailJSRelay sends messages through the EmailJS REST API.
type EmailJSRelay struct {
	cfg    EmailJSConfig
	client *http.Client
}

// NewEmailJSRelay creates a relay. A nil client uses http.DefaultClient.
func NewEmailJSRelay(cfg EmailJSConfig, client *http.Client) *EmailJSRelay {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEmailJSEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &EmailJSRelay{cfg: cfg, client: client}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts msg to EmailJS.
func (r *EmailJSRelay) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(emailJSRequest{
		ServiceID:      r.cfg.ServiceID,
		TemplateID:     r.cfg.TemplateID,
		UserID:         r.cfg.PublicKey,
		AccessToken:    r.cfg.PrivateKey,
		TemplateParams: msg.Params,
	})
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP POST %s: %w", r.cfg.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RelayError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body) // drain for connection reuse
	return nil
}
