package lenta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Sternrassler/lenta-assistant/pkg/client"
)

// API methods, relative to {base}/api/.
const (
	endpointCities     = "v1/cities"
	endpointStores     = "v1/stores"
	endpointStore      = "v1/stores/%s"
	endpointCityStores = "v1/cities/%s/stores"
	endpointStoreSkus  = "v1/stores/%s/skus"
	endpointSkusList   = "v1/stores/%s/skusList"
	endpointStoreSku   = "v1/stores/%s/skus/%s"
	endpointCatalog    = "v2/stores/%s/catalog"
)

// Cache lifetimes per operation.
const (
	TTLCities     = 24 * time.Hour
	TTLStores     = 24 * time.Hour
	TTLCityStores = 24 * time.Hour
	TTLStore      = time.Hour
	TTLCatalog    = time.Hour
	TTLSku        = 5 * time.Minute
)

// DefaultSearchLimit is used when SearchParams.Limit is not set.
const DefaultSearchLimit = 10

// Client exposes one method per retail operation.
type Client struct {
	api *client.Client
}

// New creates a domain client on top of a request pipeline.
func New(api *client.Client) *Client {
	return &Client{api: api}
}

// NewWithConfig creates the pipeline from cfg and wraps it.
func NewWithConfig(cfg client.Config) (*Client, error) {
	api, err := client.New(cfg)
	if err != nil {
		return nil, err
	}
	return New(api), nil
}

// API returns the underlying pipeline.
func (c *Client) API() *client.Client {
	return c.api
}

func path(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}

// Cities lists the cities that have Lenta stores.
func (c *Client) Cities(ctx context.Context) ([]City, error) {
	data, err := c.api.Do(ctx, client.Request{
		Operation: "cities",
		Endpoint:  endpointCities,
		TTL:       TTLCities,
	})
	if err != nil {
		return nil, err
	}
	return decodeList(EntityCity, data, (*cityPayload).record)
}

// Stores lists every Lenta store.
func (c *Client) Stores(ctx context.Context) ([]Store, error) {
	data, err := c.api.Do(ctx, client.Request{
		Operation: "stores",
		Endpoint:  endpointStores,
		TTL:       TTLStores,
	})
	if err != nil {
		return nil, err
	}
	return decodeList(EntityStore, data, (*storePayload).record)
}

// CityStores lists the stores of a city.
func (c *Client) CityStores(ctx context.Context, cityID string) ([]Store, error) {
	data, err := c.api.Do(ctx, client.Request{
		Operation: "city_stores",
		Endpoint:  path(endpointCityStores, cityID),
		TTL:       TTLCityStores,
	})
	if err != nil {
		return nil, err
	}
	return decodeList(EntityStore, data, (*storePayload).record)
}

// Store fetches a single store. An unknown id yields a 4xx *client.ClientError.
func (c *Client) Store(ctx context.Context, storeID string) (Store, error) {
	data, err := c.api.Do(ctx, client.Request{
		Operation: "store",
		Endpoint:  path(endpointStore, storeID),
		TTL:       TTLStore,
	})
	if err != nil {
		return Store{}, err
	}
	return decodeOne(EntityStore, data, (*storePayload).record)
}

// Catalog fetches the category tree of a store.
func (c *Client) Catalog(ctx context.Context, storeID string) (Catalog, error) {
	data, err := c.api.Do(ctx, client.Request{
		Operation: "catalog",
		Endpoint:  path(endpointCatalog, storeID),
		TTL:       TTLCatalog,
	})
	if err != nil {
		return Catalog{}, err
	}
	return decodeOne(EntityCatalog, data, (*catalogPayload).record)
}

// Sku fetches a SKU of a store by its code.
func (c *Client) Sku(ctx context.Context, storeID, code string) (Sku, error) {
	data, err := c.api.Do(ctx, client.Request{
		Operation: "sku",
		Endpoint:  path(endpointStoreSku, storeID, code),
		TTL:       TTLSku,
	})
	if err != nil {
		return Sku{}, err
	}
	return decodeOne(EntitySku, data, (*skuPayload).record)
}

// SkuByBarcode fetches the SKU of a store with the given barcode.
func (c *Client) SkuByBarcode(ctx context.Context, storeID, barcode string) (Sku, error) {
	data, err := c.api.Do(ctx, client.Request{
		Operation: "sku_by_barcode",
		Endpoint:  path(endpointStoreSkus, storeID),
		Query:     map[string]string{"barcode": barcode},
		TTL:       TTLSku,
	})
	if err != nil {
		return Sku{}, err
	}
	return decodeOne(EntitySku, data, (*skuPayload).record)
}

// StoreSkusByCodes fetches several SKUs of a store in one call.
// The request is a POST and bypasses the cache.
func (c *Client) StoreSkusByCodes(ctx context.Context, storeID string, codes []string) ([]Sku, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	data, err := c.api.Do(ctx, client.Request{
		Operation: "store_skus_by_codes",
		Method:    http.MethodPost,
		Endpoint:  path(endpointSkusList, storeID),
		Body:      map[string]any{"skuCodes": codes},
	})
	if err != nil {
		return nil, err
	}
	return decodeList(EntitySku, data, (*skuPayload).record)
}

// SearchParams filters a SKU search. Zero values are left out of the request.
type SearchParams struct {
	// Query matches SKU titles
	Query string

	// Limit defaults to DefaultSearchLimit
	Limit  int
	Offset int

	MinPrice *float64
	MaxPrice *float64

	// Sorting is a site-defined sort key
	Sorting string

	OnlyDiscounts bool

	// NodeCode restricts the search to a catalog node
	NodeCode string
}

func (p SearchParams) body() map[string]any {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	body := map[string]any{
		"limit":         limit,
		"offset":        p.Offset,
		"onlyDiscounts": p.OnlyDiscounts,
	}
	if p.Query != "" {
		body["searchValue"] = p.Query
	}
	if p.MinPrice != nil {
		body["minPrice"] = *p.MinPrice
	}
	if p.MaxPrice != nil {
		body["maxPrice"] = *p.MaxPrice
	}
	if p.Sorting != "" {
		body["sorting"] = p.Sorting
	}
	if p.NodeCode != "" {
		body["nodeCode"] = p.NodeCode
	}
	return body
}

// SearchSkus searches the SKUs of a store. Results are never cached.
func (c *Client) SearchSkus(ctx context.Context, storeID string, params SearchParams) ([]Sku, error) {
	data, err := c.api.Do(ctx, client.Request{
		Operation: "search_skus",
		Method:    http.MethodPost,
		Endpoint:  path(endpointStoreSkus, storeID),
		Body:      params.body(),
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Skus json.RawMessage `json:"skus"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, jsonParseError(EntitySku, "", err)
	}
	if result.Skus == nil || string(result.Skus) == "null" {
		return nil, &ParseError{Entity: EntitySku, Field: "skus", Reason: "required field is missing"}
	}

	skus, err := decodeList(EntitySku, result.Skus, (*skuPayload).record)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Field = joinPath("skus", parseErr.Field)
		}
		return nil, err
	}
	return skus, nil
}
