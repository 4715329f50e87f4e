package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
)

const resendEndpoint = "https://api.resend.com/emails"

type resendProvider struct {
	key      string
	from     string
	replyTo  string
	endpoint string
	http     *http.Client
	attempts uint
	delay    time.Duration
	logger   *zap.Logger
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Bcc     []string `json:"bcc,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

type resendError struct {
	Status  int
	Message string
}

func (e *resendError) Error() string {
	return fmt.Sprintf("resend error %d: %s", e.Status, e.Message)
}

func newResend(key, from, replyTo string, logger *zap.Logger) *resendProvider {
	return &resendProvider{
		key:      key,
		from:     from,
		replyTo:  replyTo,
		endpoint: resendEndpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
		attempts: 3,
		delay:    time.Second,
		logger:   logger,
	}
}

func (p *resendProvider) name() string { return "resend" }

func (p *resendProvider) send(ctx context.Context, msg Message) error {
	payload := resendPayload{
		From:    p.from,
		To:      msg.To,
		ReplyTo: p.replyTo,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	}
	if msg.Undisclosed {
		// recipients only see the sender
		payload.To = []string{p.from}
		payload.Bcc = msg.To
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Authorization", "Bearer "+p.key)
			req.Header.Set("Content-Type", "application/json")

			resp, err := p.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode < 400 {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}

			var errResp struct {
				Message string `json:"message"`
			}
			_ = json.NewDecoder(resp.Body).Decode(&errResp)
			rerr := &resendError{Status: resp.StatusCode, Message: errResp.Message}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return rerr
			}
			return retry.Unrecoverable(rerr)
		},
		retry.Attempts(p.attempts),
		retry.Delay(p.delay),
		retry.MaxDelay(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Debug("retrying resend delivery", zap.Uint("attempt", n), zap.Error(err))
		}),
	)
}
