package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/infrastructure/resilience"
)

func (c *Client) getJSON(ctx context.Context, path string, out any, operation string) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out, operation)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	return c.do(ctx, http.MethodPost, path, body, "application/json", out, operation)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any, operation string) error {
	call := func(ctx context.Context) error {
		return c.roundTrip(ctx, method, path, body, contentType, out, operation)
	}
	if c.executor != nil {
		return c.executor.Execute(ctx, operation, call, ClassifyError)
	}
	return call(ctx)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte, contentType string, out any, operation string) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.statusError(ctx, operation, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) getBytes(ctx context.Context, path, operation string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, c.statusError(ctx, operation, resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}
	return data, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.credentials == nil {
		return nil
	}
	token, err := c.credentials.Token(ctx)
	if err != nil || token == "" {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// statusError maps an HTTP failure to the error taxonomy. Error bodies carry
// a human-readable "error" field; a 401 clears the stored credential.
func (c *Client) statusError(ctx context.Context, operation string, resp *http.Response) error {
	message := errorMessage(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.credentials != nil {
			_ = c.credentials.Clear(ctx)
		}
		return domain.WrapError(domain.ErrUnauthorized, operation, fmt.Errorf("%s", message))
	case resp.StatusCode == http.StatusNotFound:
		return domain.WrapError(domain.ErrDocumentNotFound, operation, fmt.Errorf("%s", message))
	case resp.StatusCode >= 500:
		return domain.WrapError(domain.ErrTemporary, operation, fmt.Errorf("%s", message))
	case resp.StatusCode == http.StatusBadRequest:
		return domain.WrapError(domain.ErrInvalidInput, operation, fmt.Errorf("%s", message))
	default:
		return fmt.Errorf("%s status %s: %s", operation, resp.Status, message)
	}
}

func errorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return resp.Status
	}
	return msg
}

// ClassifyError drives retry and breaker decisions for remote calls:
// transient failures retry and count against the breaker, everything else
// fails fast.
func ClassifyError(err error) resilience.ErrorClassification {
	if domain.IsKind(err, domain.ErrTemporary) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
}
