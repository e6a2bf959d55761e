package mailapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bookswap-api/internal/domain"
)

// Endpoint paths, one per notification kind.
const (
	pathNewMessage    = "/notify/new-message"
	pathNewMatch      = "/notify/new-match"
	pathBookAvailable = "/notify/book-available"
	pathHealth        = "/health"
)

// Sender delivers one notification email for a given kind.
type Sender interface {
	Send(ctx context.Context, kind domain.NotificationKind, email string) error
}

// Client talks to the external mail-notification service. Each notification
// kind has its own endpoint; all accept {"email": ...} and answer
// {"success": bool, "message": string, "error": string}.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type sendRequest struct {
	Email string `json:"email"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Send posts the recipient address to the kind's endpoint. A transport
// error, a non-2xx status, and a success=false body are all delivery
// failures; callers decide whether to retry.
func (c *Client) Send(ctx context.Context, kind domain.NotificationKind, email string) error {
	path, err := pathForKind(kind)
	if err != nil {
		return err
	}
	body, err := json.Marshal(sendRequest{Email: email})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mail api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail api returned status %d", resp.StatusCode)
	}
	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode mail response: %w", err)
	}
	if !out.Success {
		if out.Error != "" {
			return fmt.Errorf("mail api rejected send: %s", out.Error)
		}
		return fmt.Errorf("mail api rejected send: %s", out.Message)
	}
	return nil
}

// Health checks the mail service liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathHealth, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mail api health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mail api health returned status %d", resp.StatusCode)
	}
	return nil
}

func pathForKind(kind domain.NotificationKind) (string, error) {
	switch kind {
	case domain.KindNewMessage:
		return pathNewMessage, nil
	case domain.KindNewMatch:
		return pathNewMatch, nil
	case domain.KindBookAvailability:
		return pathBookAvailable, nil
	}
	return "", fmt.Errorf("unknown notification kind %q: %w", kind, domain.ErrBadRequest)
}
