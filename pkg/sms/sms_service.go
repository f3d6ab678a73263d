package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type SMSService struct {
	apiKey   string
	senderID string
	baseURL  string
	client   *http.Client
}

func NewSMSService(baseURL, apiKey, senderID string) *SMSService {
	return &SMSService{
		apiKey:   apiKey,
		senderID: senderID,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a gateway is configured.
func (s *SMSService) Enabled() bool {
	return s != nil && s.baseURL != "" && s.apiKey != ""
}

func (s *SMSService) SendMessage(ctx context.Context, phone, message string) error {
	params := url.Values{}
	params.Add("apikey", s.apiKey)
	params.Add("senderid", s.senderID)
	params.Add("number", phone)
	params.Add("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read SMS response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || strings.Contains(strings.ToLower(string(body)), "error") {
		return fmt.Errorf("SMS sending failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
