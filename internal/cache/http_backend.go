package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amorsize/amorsize/internal/amerrors"
	"github.com/amorsize/amorsize/internal/resilience"
)

// HTTPBackend is a reference DistributedBackend speaking a small
// JSON-over-HTTP protocol (GET/PUT/DELETE against
// baseURL+"/cache/"+key, GET baseURL+"/cache" for Keys, GET
// baseURL+"/health" for Ping). No concrete remote KV client appears
// anywhere in the retrieved example pack, so this is the one piece of
// amorsize built directly on net/http rather than an ecosystem
// client; every call is wrapped in the teacher's retrier and circuit
// breaker so a flaky remote cache degrades to "treat as disabled"
// instead of blocking a decision.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
	retrier *resilience.Retrier
	breaker *resilience.CircuitBreaker
}

// NewHTTPBackend builds an HTTPBackend against baseURL.
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Second},
		retrier: resilience.NewRetrier(resilience.DefaultRetryPolicy),
		breaker: resilience.NewCircuitBreaker("distributed-cache", 5, 30*time.Second),
	}
}

func (h *HTTPBackend) do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	op := func(context.Context) error {
		return h.breaker.Execute(func() error {
			r, err := h.client.Do(req)
			if err != nil {
				return amerrors.New(amerrors.ComponentCache, "http-request", amerrors.ErrorTypeTransient, err)
			}
			resp = r
			return nil
		})
	}
	if err := h.retrier.Execute(context.Background(), op); err != nil {
		return nil, err
	}
	return resp, nil
}

func (h *HTTPBackend) Save(key string, entry Entry, ttl time.Duration) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/cache/%s", h.baseURL, key), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if ttl > 0 {
		req.Header.Set("X-Cache-TTL-Seconds", fmt.Sprintf("%d", int(ttl.Seconds())))
	}
	resp, err := h.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("distributed cache save failed: status %d", resp.StatusCode)
	}
	return nil
}

func (h *HTTPBackend) Load(key string) (*Entry, bool, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/cache/%s", h.baseURL, key), nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := h.do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode >= 400 {
		return nil, false, fmt.Errorf("distributed cache load failed: status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}

func (h *HTTPBackend) Delete(key string) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/cache/%s", h.baseURL, key), nil)
	if err != nil {
		return err
	}
	resp, err := h.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("distributed cache delete failed: status %d", resp.StatusCode)
	}
	return nil
}

func (h *HTTPBackend) Ping() error {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/health", h.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := h.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("distributed cache unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (h *HTTPBackend) Keys() ([]string, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/cache", h.baseURL), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var keys []string
	if err := json.NewDecoder(resp.Body).Decode(&keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (h *HTTPBackend) Stats() (map[string]interface{}, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/cache/stats", h.baseURL), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var stats map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}
	return stats, nil
}
