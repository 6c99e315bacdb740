package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/wire"
)

const (
	registerPath    = "/api/v1/register"
	syncEntriesPath = "/api/v1/sync/entries"
	syncReviewsPath = "/api/v1/sync/reviews"
	singleSyncPath  = "/api/v1/sync/entry"
)

// HTTPClient implements Client over the JSON contract in the wire package.
// Transport-level failures and 5xx responses are retried with fibonacci
// backoff; application errors (invalid credentials, lockout) are not.
type HTTPClient struct {
	baseURL    string
	http       *http.Client
	maxRetries uint64
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		maxRetries: 3,
	}
}

func (c *HTTPClient) Register(ctx context.Context, req *wire.RegisterRequest) (*wire.RegisterResponse, error) {
	resp := &wire.RegisterResponse{}
	if err := c.post(ctx, registerPath, req, resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, mapErrorCode(resp.Error)
	}
	return resp, nil
}

func (c *HTTPClient) SyncEntries(ctx context.Context, req *wire.SyncRequest) (*wire.SyncResponse, error) {
	return c.sync(ctx, syncEntriesPath, req)
}

func (c *HTTPClient) SyncReviews(ctx context.Context, req *wire.SyncRequest) (*wire.SyncResponse, error) {
	return c.sync(ctx, syncReviewsPath, req)
}

func (c *HTTPClient) sync(ctx context.Context, path string, req *wire.SyncRequest) (*wire.SyncResponse, error) {
	resp := &wire.SyncResponse{}
	if err := c.post(ctx, path, req, resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, mapErrorCode(resp.Error)
	}
	return resp, nil
}

func (c *HTTPClient) SyncSingleEntry(ctx context.Context, req *wire.SingleSyncRequest) (*wire.SingleSyncResponse, error) {
	resp := &wire.SingleSyncResponse{}
	if err := c.post(ctx, singleSyncPath, req, resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, mapErrorCode(resp.Error)
	}
	return resp, nil
}

// post sends one JSON request and decodes the response body into out.
// Connection failures and 5xx answers are retried; anything else is final.
func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(250*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", common.ErrUnavailable, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("%w: server returned %d", common.ErrUnavailable, resp.StatusCode))
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return common.ErrAccountLocked
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
}

func mapErrorCode(code string) error {
	switch code {
	case wire.CodeInvalidCredentials:
		return common.ErrInvalidCredentials
	case wire.CodeAccountLocked:
		return common.ErrAccountLocked
	case wire.CodeUserNotFound:
		return common.ErrUserNotFound
	case "":
		return common.ErrInternal
	default:
		return fmt.Errorf("%w: %s", common.ErrInternal, code)
	}
}
