// Package inventory answers room availability, either from a remote
// inventory service or from a local simulation.
package inventory

import (
	"bytes"
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

	"luxestay/internal/adapters/observability"
	"luxestay/internal/domain"
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("inventory base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type availabilityRequest struct {
	HotelID  int64  `json:"hotel_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Guests   int    `json:"guests"`
	RoomType string `json:"room_type"`
}

// CheckAvailability asks the inventory service how many rooms are free.
// It tries the current endpoint first and falls back to the legacy one on 404.
func (c *Client) CheckAvailability(ctx context.Context, hotelID int64, req domain.BookingRequest) (int, error) {
	body := availabilityRequest{
		HotelID:  hotelID,
		CheckIn:  req.CheckIn.Format(domain.DateLayout),
		CheckOut: req.CheckOut.Format(domain.DateLayout),
		Guests:   req.Guests,
		RoomType: string(req.RoomType),
	}
	candidates := []string{
		c.base + "/api/availability", // preferred
		c.base + "/availability",     // legacy
	}
	var out map[string]any
	if err := c.postFirst(ctx, candidates, body, &out); err != nil {
		return 0, err
	}
	n, ok := availableRooms(out)
	if !ok {
		return 0, fmt.Errorf("inventory: no room count in response")
	}
	return n, nil
}

// availableRooms accepts the field spellings seen across service versions,
// including a nested {"data": {...}} envelope.
func availableRooms(m map[string]any) (int, bool) {
	if d, ok := m["data"].(map[string]any); ok {
		m = d
	}
	for _, k := range []string{"available_rooms", "availableRooms", "available", "rooms"} {
		switch v := m[k].(type) {
		case float64:
			if v < 0 {
				return 0, true
			}
			return int(v), true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return max(n, 0), true
			}
		}
	}
	return 0, false
}

// ---- Internals ----

var (
	ErrNotFound     = errors.New("inventory: not found")
	ErrUnauthorized = errors.New("inventory: unauthorized")
	ErrForbidden    = errors.New("inventory: forbidden")
)

// StatusError is an unexpected reply from the inventory service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inventory: status %d", e.Code)
	}
	return fmt.Sprintf("inventory: status %d: %s", e.Code, e.Body)
}

const maxAttempts = 4

// postFirst walks urls until one answers with something other than 404.
func (c *Client) postFirst(ctx context.Context, urls []string, body, out any) error {
	err := errors.New("inventory: no endpoint configured")
	for _, u := range urls {
		if err = c.post(ctx, u, body, out); !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return err
}

// post sends body as JSON and decodes the reply into out. 429 and transient
// 5xx replies and transport errors are retried, waiting for Retry-After when
// the server sends one.
func (c *Client) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	endpoint := url[strings.LastIndex(url, "/"):]

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		wait, err := c.attempt(ctx, url, endpoint, payload, out)
		if wait < 0 {
			return err
		}
		lastErr = err
		if i == maxAttempts-1 {
			break
		}
		if wait == 0 {
			wait = backoff(i)
		}
		if !sleepCtx(ctx, wait) {
			return ctx.Err()
		}
	}
	return lastErr
}

// attempt does one round trip. A negative wait means the result is final;
// otherwise the call may be retried after wait (0 = use backoff).
func (c *Client) attempt(ctx context.Context, url, endpoint string, payload []byte, out any) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return -1, err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "luxestay/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("inventory", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		return 0, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("inventory", endpoint, resp.StatusCode, time.Since(start))

	switch code := resp.StatusCode; {
	case code == http.StatusOK || code == http.StatusCreated:
		return -1, json.NewDecoder(resp.Body).Decode(out)
	case code == http.StatusNotFound:
		return -1, ErrNotFound
	case code == http.StatusUnauthorized:
		return -1, ErrUnauthorized
	case code == http.StatusForbidden:
		return -1, ErrForbidden
	case code == http.StatusTooManyRequests || code == http.StatusInternalServerError ||
		code == http.StatusBadGateway || code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout:
		return retryAfter(resp), &StatusError{Code: code}
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return -1, &StatusError{Code: code, Body: strings.TrimSpace(string(b))}
	}
}

// sleepCtx waits for d; false means ctx ended first.
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

// retryAfter reads Retry-After as seconds or an HTTP date; 0 when absent.
func retryAfter(resp *http.Response) time.Duration {
	h := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		return max(time.Until(t), 0)
	}
	return 0
}

// backoff doubles from 200ms and adds up to 50% jitter.
func backoff(i int) time.Duration {
	base := 200 * time.Millisecond << i
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	return base + base*time.Duration(b[0])/510
}
