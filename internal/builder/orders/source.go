package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"invoice-builder/internal/builder/models"
)

// ============================================================
// Order record sources
// ============================================================

// Source отдаёт запись заказа по идентификатору.
type Source interface {
	FetchByID(ctx context.Context, id string) (models.Record, error)
}

// HTTPSource читает заказы из внешнего API: GET <baseURL>?id=<id>.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) FetchByID(ctx context.Context, id string) (models.Record, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("order api url is not configured: %w", models.ErrSourceUnavailable)
	}

	target, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("order api url: %w", err)
	}
	q := target.Query()
	q.Set("id", id)
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("[ORDERS] Fetching order %s from %s", id, target.Host)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch order %s: %v: %w", id, err, models.ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read order %s: %v: %w", id, err, models.ErrSourceUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order %s: upstream status %d: %w", id, resp.StatusCode, models.ErrSourceUnavailable)
	}

	var record models.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode order %s: %v: %w", id, err, models.ErrSourceUnavailable)
	}
	if msg, ok := record["error"]; ok && msg != nil {
		return nil, fmt.Errorf("order %s: %v: %w", id, msg, models.ErrSourceUnavailable)
	}
	return record, nil
}

// ============================================================
// Fallback
// ============================================================

// FallbackSource при недоступности основного источника отдаёт MockRecord,
// чтобы редактор оставался рабочим без сети.
type FallbackSource struct {
	primary Source
}

func NewFallbackSource(primary Source) *FallbackSource {
	return &FallbackSource{primary: primary}
}

func (s *FallbackSource) FetchByID(ctx context.Context, id string) (models.Record, error) {
	if s.primary == nil {
		return MockRecord(id), nil
	}
	record, err := s.primary.FetchByID(ctx, id)
	if err != nil {
		log.Printf("[ORDERS] Using mock order for %s: %v", id, err)
		return MockRecord(id), nil
	}
	return record, nil
}

// MockRecord: детерминированная запись заказа для работы без API.
func MockRecord(id string) models.Record {
	return models.Record{
		"id":              id,
		"customerName":    "Acme Corporation",
		"customerAddress": "123 Business Ave, Suite 100, New York, NY 10001",
		"items": []any{
			map[string]any{"id": "item-1", "name": "Widget A", "quantity": 5.0, "unitPrice": 10.99, "total": 54.95},
			map[string]any{"id": "item-2", "name": "Super Widget B", "quantity": 2.0, "unitPrice": 24.99, "total": 49.98},
		},
		"orderDate": "2025-03-01",
		"subtotal":  104.93,
		"tax":       8.39,
		"total":     113.32,
		"status":    "Processing",
	}
}
