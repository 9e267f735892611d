package product

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ordersvc/internal/domain"
)

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/p1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.Product{ID: "p1", Name: "Keyboard", Price: 10})
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	p, err := c.Fetch(context.Background(), "p1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.ID != "p1" || p.Name != "Keyboard" || p.Price != 10 {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestFetch_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	_, err := c.Fetch(context.Background(), "p999")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestFetch_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	_, err := c.Fetch(context.Background(), "p1")
	if domain.KindOf(err) != domain.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // сервер уже недоступен

	c := NewClient(ts.URL)
	_, err := c.Fetch(context.Background(), "p1")
	if domain.KindOf(err) != domain.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		ts.Close()
	}()

	c := NewClient(ts.URL)
	c.http.Timeout = 50 * time.Millisecond

	_, err := c.Fetch(context.Background(), "p1")
	if domain.KindOf(err) != domain.KindUnavailable {
		t.Fatalf("expected unavailable on timeout, got %v", err)
	}
}
