package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/ingest"
)

// errPermanent marks a response that retrying cannot fix.
var errPermanent = errors.New("permanent failure")

// Client sends exports to the LiftLog server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the LiftLog server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// Target identifies the server in the upload state.
func (c *Client) Target() string { return c.serverURL }

// ImportAlpha POSTs an Alpha Progression CSV export for the given cycle.
// Retries up to 3 times with exponential backoff; 4xx responses are not
// retried.
func (c *Client) ImportAlpha(ctx context.Context, data []byte, cycle int) (*ingest.Result, error) {
	u := c.serverURL + "/api/v1/import/alpha?" + url.Values{"cycle": {strconv.Itoa(cycle)}}.Encode()

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff * time.Duration(1<<uint(attempt-1))):
			}
		}

		result, err := c.post(ctx, u, data)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, errPermanent) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) post(ctx context.Context, u string, data []byte) (*ingest.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK:
		var result ingest.Result
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("decoding import result: %w", err)
		}
		return &result, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("import rejected (status %d): %s: %w", resp.StatusCode, body, errPermanent)
	}
	return nil, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
}
