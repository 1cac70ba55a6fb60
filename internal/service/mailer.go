package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hyunwoo-dev/elkmart/internal/logging"
)

type Mail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MailerClient submits mail to the gateway over HTTP. Delivery beyond
// the gateway's 202 is the gateway's problem.
type MailerClient struct {
	baseURL    string
	from       string
	httpClient *http.Client
}

func NewMailerClient(baseURL, from string) *MailerClient {
	return &MailerClient{
		baseURL: baseURL,
		from:    from,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *MailerClient) Send(ctx context.Context, mail Mail) error {
	log := logging.FromContext(ctx)

	if mail.From == "" {
		mail.From = c.from
	}

	body, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("Send: marshal: %w", err)
	}

	url := c.baseURL + "/send"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("Send: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("Send: send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("mail gateway response received",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Send: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
