package catalog

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_rooms/internal/adapters/observability"
	"hotel_rooms/internal/domain"
)

// Client talks to the remote room catalog service.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API (tries current endpoints first, falls back to legacy variants) ----

// ListRoomIDs accepts either a bare JSON array or {"items": [...]}; each element is an
// id or an object carrying "id".
func (c *Client) ListRoomIDs(ctx context.Context) ([]int64, error) {
	var raw json.RawMessage
	if err := c.getFirst(ctx, "rooms", []string{c.base + "/rooms", c.base + "/room"}, &raw); err != nil {
		return nil, err
	}
	return decodeIDs(raw)
}

func (c *Client) GetRoom(ctx context.Context, id int64) (map[string]any, error) {
	candidates := []string{
		fmt.Sprintf("%s/rooms/%d", c.base, id), // preferred
		fmt.Sprintf("%s/room/%d", c.base, id),  // legacy
	}
	var out map[string]any
	if err := c.getFirst(ctx, "room", candidates, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- Internals ----

var (
	ErrNotFound     = fmt.Errorf("catalog: %w", domain.ErrNotFound)
	ErrUnauthorized = errors.New("catalog: unauthorized")
	ErrForbidden    = errors.New("catalog: forbidden")
)

func decodeIDs(raw json.RawMessage) ([]int64, error) {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		var wrapped struct {
			Items []any `json:"items"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode room list: %w", err)
		}
		items = wrapped.Items
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case float64:
			ids = append(ids, int64(v))
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				ids = append(ids, n)
			}
		case map[string]any:
			switch id := v["id"].(type) {
			case float64:
				ids = append(ids, int64(id))
			case string:
				if n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64); err == nil {
					ids = append(ids, n)
				}
			}
		}
	}
	return ids, nil
}

// getFirst walks urls in order; only a 404 moves on to the next candidate.
func (c *Client) getFirst(ctx context.Context, endpoint string, urls []string, out any) error {
	err := ErrNotFound
	for _, u := range urls {
		if err = c.get(ctx, endpoint, u, out); !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return err
}

const maxAttempts = 4

// outcome of one attempt: done with err, or retry after wait.
type outcome struct {
	retry bool
	wait  time.Duration
	err   error
}

// get fetches url into out. Each attempt passes the rate limiter; 429 and transient
// 5xx are retried with backoff, honoring Retry-After.
func (c *Client) get(ctx context.Context, endpoint, url string, out any) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}
		o := c.attempt(ctx, endpoint, url, out)
		if !o.retry {
			return o.err
		}
		lastErr = o.err
		wait := o.wait
		if wait == 0 {
			wait = backoff(i)
		}
		if i == maxAttempts-1 || !sleepCtx(ctx, wait) {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, endpoint, url string, out any) outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return outcome{err: err}
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hotel-rooms/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("catalog", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return outcome{err: ctx.Err()}
		}
		return outcome{retry: true, err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("catalog", endpoint, resp.StatusCode, time.Since(start))

	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return outcome{err: fmt.Errorf("decode %s: %w", endpoint, err)}
		}
		return outcome{}
	case code == http.StatusNotFound:
		return outcome{err: ErrNotFound}
	case code == http.StatusUnauthorized:
		return outcome{err: ErrUnauthorized}
	case code == http.StatusForbidden:
		return outcome{err: ErrForbidden}
	case code == http.StatusTooManyRequests, code >= 500 && code != http.StatusNotImplemented:
		return outcome{retry: true, wait: retryAfter(resp), err: fmt.Errorf("catalog %s: remote %d", endpoint, code)}
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return outcome{err: fmt.Errorf("catalog %s: bad status %d: %s", endpoint, code, strings.TrimSpace(string(b)))}
	}
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms with up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
