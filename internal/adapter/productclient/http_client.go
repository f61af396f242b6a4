package productclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

const maxDocumentBytes = 1 << 20

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrUnexpectedStatus  = errors.New("unexpected product service status")
	ErrMalformedDocument = errors.New("malformed product document")
)

type productAttributes struct {
	Name  *string `json:"name"`
	Price float64 `json:"price"`
}

type productDocument struct {
	Data *struct {
		ID         string             `json:"id"`
		Type       string             `json:"type"`
		Attributes *productAttributes `json:"attributes"`
	} `json:"data"`
}

// HTTPClient reads products from the product service's JSON-API endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *HTTPClient) GetProduct(ctx context.Context, productID int64) (*domain.ProductSummary, error) {
	url := fmt.Sprintf("%s/%d", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentBytes))
		return nil, fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentBytes))
		return nil, fmt.Errorf("product %d: %w: %d", productID, ErrUnexpectedStatus, resp.StatusCode)
	}

	var doc productDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentBytes)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.Data == nil || doc.Data.Attributes == nil || doc.Data.Attributes.Name == nil {
		return nil, fmt.Errorf("%w: missing data.attributes.name", ErrMalformedDocument)
	}

	return &domain.ProductSummary{
		ID:    doc.Data.ID,
		Name:  *doc.Data.Attributes.Name,
		Price: doc.Data.Attributes.Price,
	}, nil
}
