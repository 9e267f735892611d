package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ordersvc/internal/domain"
)

const fetchTimeout = 5 * time.Second

// Client читающий http-клиент сервиса продуктов; без ретраев и кеша
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch возвращает товар по id. Ответ 4xx — not_found, сетевая ошибка,
// таймаут или 5xx — unavailable.
func (c *Client) Fetch(ctx context.Context, id string) (*domain.Product, error) {
	url := fmt.Sprintf("%s/products/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "build product request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.Wrap(domain.KindUnavailable, "product service unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, domain.Ef(domain.KindNotFound, "product not found: %s", id)
	default:
		return nil, domain.Ef(domain.KindUnavailable, "product service returned %d for %s", resp.StatusCode, id)
	}

	var p domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, domain.Wrap(domain.KindUnavailable, "decode product response", err)
	}
	return &p, nil
}
