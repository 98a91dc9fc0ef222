package engine

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// UserAgent identifies the service to Google endpoints.
const UserAgent = "go_clip/1.0"

// maxBodyBytes caps how much of a sheet export is read.
const maxBodyBytes = 32 << 20

// fetchWithRetry performs a GET with exponential backoff on transient
// statuses. Transport errors and non-retryable statuses end the loop at once.
func fetchWithRetry(ctx context.Context, client *http.Client, fetchURL, accept string) (*http.Response, error) {
	operation := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Accept", accept)
		req.Header.Set("Accept-Encoding", "gzip")

		metrics.FetchRequests.Add(1)
		resp, err := client.Do(req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		if IsRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}

		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	resp, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(30*time.Second))
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransport, redactURL(fetchURL), err)
	}
	return resp, nil
}

// fetchBody GETs fetchURL and returns the (decompressed) body.
func fetchBody(ctx context.Context, client *http.Client, fetchURL, accept string) ([]byte, string, error) {
	resp, err := fetchWithRetry(ctx, client, fetchURL, accept)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, "", fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}
