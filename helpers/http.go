package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"golang.org/x/net/html/charset"

	apperrors "sjsage522/listingtracker/pkg/errors"
)

// UserAgent identifies the tracker on every request it makes
const UserAgent = "listingtracker/1.0 (+https://github.com/sjsage522/listingtracker)"

// DefaultClient is used when a caller passes a nil client
var DefaultClient = &http.Client{
	Timeout: 30 * time.Second,
}

const component = "http"

// rateLimitCodes are the statuses the portal uses for throttling
var rateLimitCodes = []int{http.StatusTooManyRequests, 430}

// FetchHTML sends an HTTP GET request and returns the body converted to UTF-8
func FetchHTML(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewNetwork(component, url, "failed to create request", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-IE,en;q=0.9")

	body, resp, err := do(client, req)
	if err != nil {
		return nil, err
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(body, resp.Header.Get("Content-Type"))
	if name == "utf-8" || name == "UTF-8" {
		return body, nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(body))
	converted, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, apperrors.NewParsing(component, url, "failed to convert body to UTF-8", err)
	}
	return converted, nil
}

// PostJSON marshals payload, POSTs it with the given extra headers and returns
// the raw response body.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewParsing(component, url, "failed to encode payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewNetwork(component, url, "failed to create request", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	body, _, err := do(client, req)
	return body, err
}

func do(client *http.Client, req *http.Request) ([]byte, *http.Response, error) {
	if client == nil {
		client = DefaultClient
	}
	url := req.URL.String()

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, apperrors.NewNetwork(component, url, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	// Check for rate limiting
	if slices.Contains(rateLimitCodes, resp.StatusCode) {
		return nil, resp, apperrors.NewRateLimit(component, url, RetryAfter(resp.Header.Get("Retry-After")))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp, apperrors.NewStatus(component, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, apperrors.NewNetwork(component, url, "failed to read response body", err)
	}
	return body, resp, nil
}

// RetryAfter parses a Retry-After header given in seconds; 0 when absent
func RetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
