package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"nocta-service/internal/observability"
)

// Envelope is the success/error JSON contract shared by every serverless
// function endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Client calls the serverless HTTP functions backing the service: auth
// verification, company verification, payment sessions, video re-encoding,
// account cleanup and object uploads.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client for the given function gateway base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		observability.IncFunctionError(path)
		return errors.Wrapf(err, "call function %s", path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.IncFunctionError(path)
		return errors.Wrapf(err, "read function %s response", path)
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		observability.IncFunctionError(path)
		return errors.Wrapf(err, "decode function %s response", path)
	}
	if !envelope.Success {
		observability.IncFunctionError(path)
		if envelope.Error != "" {
			return errors.Errorf("function %s: %s", path, envelope.Error)
		}
		return errors.Errorf("function %s failed with status %d", path, resp.StatusCode)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Wrapf(err, "decode function %s data", path)
		}
	}
	return nil
}
