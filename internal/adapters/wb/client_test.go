package wb_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"antifake/internal/adapters/wb"
	"antifake/internal/domain"
)

func TestClient_GetProduct_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"products": []map[string]any{{"id": 123.0, "root": 99.0}},
			})
		}
	}))
	defer ts.Close()

	cl, err := wb.New(ts.URL, []string{ts.URL}, "-1216601", "ru", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.GetProduct(ctx, 123)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if id, ok := got["id"].(float64); !ok || int(id) != 123 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_GetProduct_EmptyCardIsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"products": []any{}})
	}))
	defer ts.Close()

	cl, _ := wb.New(ts.URL, []string{ts.URL}, "-1216601", "ru", 100)
	_, err := cl.GetProduct(context.Background(), 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestClient_GetFeedbacks_FallsBackAcrossHosts(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	defer dead.Close()

	var firstPath string
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if firstPath == "" {
			firstPath = r.URL.Path
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"feedbacks": []map[string]any{{"text": "ок", "productValuation": 5.0}},
		})
	}))
	defer alive.Close()

	cl, _ := wb.New("http://card.invalid", []string{dead.URL, alive.URL}, "-1216601", "ru", 100)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.GetFeedbacks(ctx, 555, 120)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := got["feedbacks"]; !ok {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if firstPath != "/feedbacks/v1/555" {
		t.Fatalf("unexpected path on fallback host: %s", firstPath)
	}
}

func TestExtractArticle(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"98892471", 98892471, true},
		{"https://www.wildberries.ru/catalog/98892471/detail.aspx", 98892471, true},
		{"https://example.com/?nm=123456789", 123456789, true},
		{"no article here", 0, false},
		{"/catalog/123/", 0, false}, // too short to be an article
	}
	for _, tc := range cases {
		got, ok := wb.ExtractArticle(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ExtractArticle(%q) = %d,%v want %d,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
