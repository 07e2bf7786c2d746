package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResendAPIURL is the Resend send endpoint.
const ResendAPIURL = "https://api.resend.com/emails"

// Resend sends mail through the Resend HTTP API.
type Resend struct {
	apiKey   string // never logged
	endpoint string
	http     *http.Client
}

type ResendOption func(*Resend)

// WithEndpoint points the client at another API URL, e.g. an httptest server.
func WithEndpoint(u string) ResendOption {
	return func(r *Resend) { r.endpoint = u }
}

func WithHTTPClient(c *http.Client) ResendOption {
	return func(r *Resend) { r.http = c }
}

func NewResend(apiKey string, opts ...ResendOption) *Resend {
	r := &Resend{
		apiKey:   apiKey,
		endpoint: ResendAPIURL,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID         string `json:"id"`
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (r *Resend) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", errors.New("resend: no recipients")
	}
	body, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	const maxBodyBytes = 1 << 20
	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	var rr resendResponse
	parseErr := json.Unmarshal(respBytes, &rr)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if parseErr == nil && rr.Message != "" {
			return "", fmt.Errorf("resend: %s: %s", rr.Name, rr.Message)
		}
		return "", fmt.Errorf("resend: HTTP %d", resp.StatusCode)
	}
	if parseErr != nil {
		return "", fmt.Errorf("parsing response JSON: %w", parseErr)
	}
	if rr.ID == "" {
		return "", errors.New("resend: response carried no message id")
	}
	return rr.ID, nil
}
