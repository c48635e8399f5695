package geodata

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const userAgent = "agrigeo/1.0 (+geodata cache)"

// maxBodyBytes bounds upstream response bodies.
const maxBodyBytes = 8 << 20

// doUpstream sends req under timeout and returns the body of a 2xx response.
// Transport failures and non-2xx statuses are reported as *UpstreamError.
func doUpstream(ctx context.Context, client *http.Client, provider string, timeout time.Duration, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s new request: %w", provider, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &UpstreamError{Provider: provider, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		// a body cut short by the deadline is still the provider's fault
		return nil, &UpstreamError{Provider: provider, Err: fmt.Errorf("read body: %w", err)}
	}

	log.Printf("[agrigeo][upstream] %s %s %s status=%d in %s", provider, req.Method, req.URL.Host, resp.StatusCode, time.Since(start))
	return data, nil
}
