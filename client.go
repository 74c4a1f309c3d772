package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	fallbackCatalogError = "Failed to load catalog"
	fallbackListError    = "Failed to load items"
	fallbackSaveError    = "Failed to save item"
	fallbackDeleteError  = "Failed to delete item"
)

// catalogCacheTTL bounds how long a fetched catalog is reused; within the
// window a reconnect skips the round trip. Row lists are never cached.
const catalogCacheTTL = 5 * time.Minute

const maxFetchAttempts = 3

type errorEnvelope struct {
	Error string `json:"error"`
}

type apiClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *memoCache
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      newMemoCache(),
	}
}

// Catalog fetches the table descriptors, reusing a cached copy within the
// TTL. The catalog is all-or-nothing: any failure returns zero tables.
func (c *apiClient) Catalog(ctx context.Context) ([]tableDescriptor, error) {
	if cached, ok := c.cache.Get("catalog"); ok {
		return cached.([]tableDescriptor), nil
	}
	var descriptors []tableDescriptor
	if err := c.getJSON(ctx, c.baseURL+"/catalog", &descriptors, fallbackCatalogError); err != nil {
		return nil, err
	}
	c.cache.Set("catalog", descriptors, catalogCacheTTL)
	return descriptors, nil
}

// ListRows fetches all rows of one table. Results are never cached; the
// panel refetches on every expand and after every mutation.
func (c *apiClient) ListRows(ctx context.Context, tableKey string) ([]lookupItem, error) {
	var rows []lookupItem
	if err := c.getJSON(ctx, c.tableURL(tableKey), &rows, fallbackListError); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *apiClient) CreateRow(ctx context.Context, tableKey string, draft map[string]any) error {
	return c.sendJSON(ctx, http.MethodPost, c.tableURL(tableKey), draft, fallbackSaveError)
}

func (c *apiClient) UpdateRow(ctx context.Context, tableKey, id string, draft map[string]any) error {
	return c.sendJSON(ctx, http.MethodPut, c.rowURL(tableKey, id), draft, fallbackSaveError)
}

func (c *apiClient) DeleteRow(ctx context.Context, tableKey, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.rowURL(tableKey, id), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", fallbackDeleteError, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallbackDeleteError, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp, fallbackDeleteError)
	}
	return nil
}

func (c *apiClient) tableURL(tableKey string) string {
	return c.baseURL + "/tables/" + url.PathEscape(tableKey)
}

func (c *apiClient) rowURL(tableKey, id string) string {
	return c.tableURL(tableKey) + "/" + url.PathEscape(id)
}

// getJSON performs a GET with bounded jittered retries on transient
// failures. Only reads are retried; mutations go out exactly once.
func (c *apiClient) getJSON(ctx context.Context, rawURL string, out any, fallback string) error {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", fallback, err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil || !retryableConnError(err) {
				return fmt.Errorf("%s: %w", fallback, err)
			}
			sleepWithJitter(ctx, attempt)
			continue
		}
		if retryableStatus(resp.StatusCode) {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			sleepWithJitter(ctx, attempt)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			defer resp.Body.Close()
			return decodeAPIError(resp, fallback)
		}
		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", fallback, err)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", fallback, lastErr)
}

func (c *apiClient) sendJSON(ctx context.Context, method, rawURL string, body map[string]any, fallback string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp, fallback)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// decodeAPIError surfaces the server's human-readable error field when
// present and falls back to the generic per-operation message.
func decodeAPIError(resp *http.Response, fallback string) error {
	buf, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var envelope errorEnvelope
	if err := json.Unmarshal(buf, &envelope); err == nil {
		if msg := strings.TrimSpace(envelope.Error); msg != "" {
			return fmt.Errorf("%s", msg)
		}
	}
	return fmt.Errorf("%s", fallback)
}

func retryableConnError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "connection refused")
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func sleepWithJitter(ctx context.Context, attempt int) {
	jitter := 100*time.Millisecond + time.Duration(rand.Int63n(int64(250*time.Millisecond)*int64(attempt)))
	select {
	case <-ctx.Done():
	case <-time.After(jitter):
	}
}
