package wb

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"antifake/internal/adapters/observability"
	"antifake/internal/domain"
)

// Client talks to the marketplace's public card and feedback endpoints.
// Both are unofficial and drift over time, so feedback retrieval walks a
// ladder of host and query-parameter variants.
type Client struct {
	cardBase      string
	feedbackHosts []string
	dest          string
	locale        string
	hc            *http.Client
	rl            *rate.Limiter
}

func New(cardBase string, feedbackHosts []string, dest, locale string, rps int) (*Client, error) {
	if cardBase == "" {
		return nil, fmt.Errorf("card base URL is required")
	}
	if len(feedbackHosts) == 0 {
		return nil, fmt.Errorf("at least one feedback host is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		cardBase:      strings.TrimRight(cardBase, "/"),
		feedbackHosts: feedbackHosts,
		dest:          dest,
		locale:        locale,
		hc:            &http.Client{Timeout: 20 * time.Second},
		rl:            rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

// GetProduct fetches the product card for an article and returns the first
// product object of the payload.
func (c *Client) GetProduct(ctx context.Context, article int64) (map[string]any, error) {
	q := url.Values{}
	q.Set("dest", c.dest)
	q.Set("locale", c.locale)
	q.Set("nm", strconv.FormatInt(article, 10))

	var out map[string]any
	if err := c.get(ctx, "card", c.cardBase+"?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	products := lookupSlice(out, "products")
	if products == nil {
		products = lookupSlice(out, "data", "products")
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product %d: %w", article, ErrNotFound)
	}
	p, ok := products[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("product %d: unexpected card payload", article)
	}
	return p, nil
}

// GetFeedbacks fetches the raw feedback payload for a product root ID,
// trying each host with take/skip, limit/offset, and bare query variants.
func (c *Client) GetFeedbacks(ctx context.Context, rootID int64, limit int) (map[string]any, error) {
	variants := []string{
		fmt.Sprintf("/feedbacks/v1/%d?take=%d&skip=0", rootID, limit),
		fmt.Sprintf("/feedbacks/v1/%d?limit=%d&offset=0", rootID, limit),
		fmt.Sprintf("/feedbacks/v1/%d", rootID),
	}
	candidates := make([]string, 0, len(c.feedbackHosts)*len(variants))
	for _, host := range c.feedbackHosts {
		for _, v := range variants {
			candidates = append(candidates, strings.TrimRight(host, "/")+v)
		}
	}
	var out map[string]any
	return out, c.getFirst(ctx, "feedbacks", candidates, &out)
}

var articleRE = regexp.MustCompile(`(?:/catalog/|nm=)(\d{6,12})`)

// ExtractArticle pulls a marketplace article ID out of free text: either a
// bare number or a catalog URL.
func ExtractArticle(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, true
	}
	m := articleRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ---- Internals ----

var (
	ErrNotFound     = fmt.Errorf("wb: %w", domain.ErrNotFound)
	ErrUnauthorized = errors.New("wb: unauthorized")
	ErrForbidden    = errors.New("wb: forbidden")
)

func (c *Client) getFirst(ctx context.Context, endpoint string, urls []string, out any) error {
	var last error
	for _, u := range urls {
		if err := c.get(ctx, endpoint, u, out); err != nil {
			if errors.Is(err, ErrNotFound) {
				last = err
				continue // try next variant
			}
			last = err
			continue // unofficial hosts fail in odd ways; keep walking the ladder
		}
		return nil
	}
	if last != nil {
		return last
	}
	return errors.New("no candidate URL succeeded")
}

// get performs a GET with client-side rate limiting, retries, and JSON
// decode into out. Retries on 429 and transient 5xx, honoring Retry-After.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json, text/plain, */*")
		req.Header.Set("User-Agent", "Mozilla/5.0 (AntiFakeBot/1.0)")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		observability.ObserveExternal("wb", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
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

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if
// absent or invalid.
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

// backoff returns an exponential backoff delay (200ms, 400ms, 800ms...) with
// up to +50% jitter from crypto/rand so concurrent callers spread out.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}

func lookupSlice(m map[string]any, path ...string) []any {
	cur := any(m)
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[p]
	}
	s, _ := cur.([]any)
	return s
}
