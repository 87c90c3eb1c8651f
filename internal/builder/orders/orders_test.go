package orders

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"invoice-builder/internal/builder/models"

	"github.com/google/go-cmp/cmp"
)

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "ORD-1":
			w.Write([]byte(`{"id":"ORD-1","total":236.32,"customer":{"name":"Acme"}}`))
		case "ORD-ERR":
			w.Write([]byte(`{"error":"Order not found"}`))
		case "ORD-BAD":
			w.Write([]byte(`<html>`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/exec", time.Second)

	rec, err := src.FetchByID(context.Background(), "ORD-1")
	if err != nil {
		t.Fatal(err)
	}
	want := models.Record{"id": "ORD-1", "total": 236.32, "customer": map[string]any{"name": "Acme"}}
	if d := cmp.Diff(want, rec); d != "" {
		t.Error(d)
	}

	for _, id := range []string{"ORD-ERR", "ORD-BAD", "ORD-500"} {
		if _, err := src.FetchByID(context.Background(), id); !errors.Is(err, models.ErrSourceUnavailable) {
			t.Errorf("%s: err = %v", id, err)
		}
	}
}

func TestHTTPSourceUnreachable(t *testing.T) {
	for _, base := range []string{"", "http://127.0.0.1:1/orders"} {
		_, err := NewHTTPSource(base, 200*time.Millisecond).FetchByID(context.Background(), "x")
		if !errors.Is(err, models.ErrSourceUnavailable) {
			t.Errorf("%q: err = %v", base, err)
		}
	}
}

type stubSource struct {
	calls  int
	record models.Record
	err    error
}

func (s *stubSource) FetchByID(ctx context.Context, id string) (models.Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func TestFallbackSource(t *testing.T) {
	failing := &stubSource{err: models.ErrSourceUnavailable}
	rec, err := NewFallbackSource(failing).FetchByID(context.Background(), "ORD-9")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(MockRecord("ORD-9"), rec); d != "" {
		t.Error(d)
	}
	if rec["customerName"] != "Acme Corporation" || rec["total"] != 113.32 {
		t.Errorf("mock = %v", rec)
	}

	ok := &stubSource{record: models.Record{"id": "real"}}
	rec, _ = NewFallbackSource(ok).FetchByID(context.Background(), "real")
	if rec["id"] != "real" {
		t.Errorf("rec = %v", rec)
	}

	rec, _ = NewFallbackSource(nil).FetchByID(context.Background(), "offline")
	if rec["id"] != "offline" {
		t.Errorf("rec = %v", rec)
	}
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
	ttl  time.Duration
	fail bool
}

func (c *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return "", false, errors.New("connection refused")
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection refused")
	}
	c.data[key] = value
	c.ttl = ttl
	return nil
}

func TestCachedSource(t *testing.T) {
	src := &stubSource{record: models.Record{"id": "A", "total": 5.0}}
	cache := &memCache{data: map[string]string{}}
	cs := NewCachedSource(src, cache, time.Minute)

	for i := 0; i < 3; i++ {
		rec, err := cs.FetchByID(context.Background(), "A")
		if err != nil {
			t.Fatal(err)
		}
		if rec["total"] != 5.0 {
			t.Errorf("rec = %v", rec)
		}
	}
	if src.calls != 1 {
		t.Errorf("source called %d times", src.calls)
	}
	if cache.ttl != time.Minute {
		t.Errorf("ttl = %v", cache.ttl)
	}

	cache.data[keyPrefix+"B"] = "{not json"
	src.record = models.Record{"id": "B"}
	if rec, err := cs.FetchByID(context.Background(), "B"); err != nil || rec["id"] != "B" {
		t.Errorf("corrupt entry: %v %v", rec, err)
	}
}

func TestCachedSourceSurvivesCacheOutage(t *testing.T) {
	src := &stubSource{record: models.Record{"id": "A"}}
	cs := NewCachedSource(src, &memCache{fail: true}, time.Minute)
	if rec, err := cs.FetchByID(context.Background(), "A"); err != nil || rec["id"] != "A" {
		t.Errorf("rec %v err %v", rec, err)
	}

	src.err = models.ErrSourceUnavailable
	if _, err := cs.FetchByID(context.Background(), "A"); !errors.Is(err, models.ErrSourceUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestFields(t *testing.T) {
	record := models.Record{"id": "A", "customerName": "Acme", "weight": nil, "items": []any{}}

	groups := Fields(record, "")
	if len(groups) != 5 || groups[0].Name != "order" {
		t.Fatalf("groups = %+v", groups)
	}
	exists := map[string]bool{}
	for _, g := range groups {
		for _, f := range g.Fields {
			exists[f.Path] = f.Exists
		}
	}
	for path, want := range map[string]bool{"id": true, "customerName": true, "weight": true, "items": true, "total": false} {
		if exists[path] != want {
			t.Errorf("%s exists = %v", path, exists[path])
		}
	}

	filtered := Fields(nil, "SHIP")
	want := []FieldGroup{
		{Name: "shipping", Fields: []Field{
			{Label: "Ship To", Path: "shipTo"},
			{Label: "Ship Date", Path: "shipDate"},
			{Label: "Ship Via", Path: "shipVia"},
		}},
		{Name: "payment", Fields: []Field{{Label: "Shipping Cost", Path: "shipping"}}},
	}
	if d := cmp.Diff(want, filtered); d != "" {
		t.Error(d)
	}
}

func TestExists(t *testing.T) {
	record := models.Record{"customer": map[string]any{"address": map[string]any{"city": nil}}, "n": 1.0}
	cases := map[string]bool{
		"customer":              true,
		"customer.address.city": true,
		"customer.phone":        false,
		"n.value":               false,
		"":                      false,
	}
	for path, want := range cases {
		if got := Exists(record, path); got != want {
			t.Errorf("Exists(%q) = %v", path, got)
		}
	}
}
