package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/segyhp/payment-reminder/internal/config"
	"github.com/segyhp/payment-reminder/internal/domain"
)

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoEmail struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// EmailSender sends transactional email through the Brevo HTTP API.
type EmailSender struct {
	client  *http.Client
	baseURL string
	apiKey  string
	from    brevoAddress
}

func NewEmailSender(cfg config.EmailConfig, client *http.Client) *EmailSender {
	return &EmailSender{
		client:  client,
		baseURL: strings.TrimRight(cfg.BrevoBaseURL, "/"),
		apiKey:  cfg.BrevoAPIKey,
		from:    brevoAddress{Name: cfg.SenderName, Email: cfg.SenderAddress},
	}
}

func (s *EmailSender) Name() string { return domain.ChannelEmail }

func (s *EmailSender) Enabled() bool { return s.apiKey != "" }

func (s *EmailSender) Send(ctx context.Context, destination string, msg *Message) error {
	body, err := json.Marshal(brevoEmail{
		Sender:      s.from,
		To:          []brevoAddress{{Email: destination}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	})
	if err != nil {
		return Rejected(s.Name(), fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return Rejected(s.Name(), fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return TransportFailure(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return Rejected(s.Name(), fmt.Sprintf("brevo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
}
