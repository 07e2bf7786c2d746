package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// genericServerMessage is used when the endpoint answered without saying
// what went wrong.
const genericServerMessage = "Something went wrong"

// APIClient sends submissions to a site's POST /api/contact endpoint.
type APIClient struct {
	Endpoint string
	HTTP     *http.Client
}

func NewAPIClient(endpoint string) *APIClient {
	return &APIClient{Endpoint: endpoint, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

type apiResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (c *APIClient) Send(ctx context.Context, s Submission) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	var ar apiResponse
	if err := json.Unmarshal(respBytes, &ar); err != nil {
		return fmt.Errorf("parsing response JSON (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !ar.Success {
		msg := ar.Error
		if msg == "" {
			msg = genericServerMessage
		}
		return &ServerError{Status: resp.StatusCode, Message: msg}
	}
	return nil
}
