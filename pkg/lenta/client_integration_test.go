//go:build integration

package lenta

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/lenta-assistant/internal/testutil"
	"github.com/Sternrassler/lenta-assistant/pkg/cache"
	"github.com/Sternrassler/lenta-assistant/pkg/client"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (string, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	return endpoint, func() { container.Terminate(ctx) }
}

// TestFullRequestFlow covers cache miss, upstream fetch, cache store and a
// second client sharing the same Redis.
func TestFullRequestFlow(t *testing.T) {
	addr, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockLenta()
	defer mock.Close()
	mock.SetResponse("/api/v1/cities", testutil.NewJSONResponse(testutil.MustJSON([]any{
		testutil.CityFixture("msk", "Москва", 55.75, 37.61),
		testutil.CityFixture("spb", "Санкт-Петербург", 59.93, 30.31),
	})))

	newClient := func() (*Client, cache.Backend) {
		backend := cache.NewRedisBackend(cache.RedisConfig{Addr: addr, KeyPrefix: cache.DefaultKeyPrefix})
		cfg := client.DefaultConfig(backend)
		cfg.BaseURL = mock.URL()
		c, err := NewWithConfig(cfg)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}
		return c, backend
	}

	ctx := context.Background()

	first, firstBackend := newClient()
	defer firstBackend.Close()

	cities, err := first.Cities(ctx)
	if err != nil {
		t.Fatalf("Request 1 failed: %v", err)
	}
	if len(cities) != 2 {
		t.Fatalf("Request 1 returned %d cities, want 2", len(cities))
	}
	if mock.RequestCount() != 1 {
		t.Errorf("After request 1: upstream requests = %d, want 1", mock.RequestCount())
	}

	// a fresh client reads what the first one stored
	second, secondBackend := newClient()
	defer secondBackend.Close()

	cities, err = second.Cities(ctx)
	if err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}
	if len(cities) != 2 || cities[0].Name != "Москва" {
		t.Errorf("Request 2 returned %+v", cities)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("After request 2: upstream requests = %d, want 1", mock.RequestCount())
	}

	// Reset drops the entry, forcing a new upstream call
	if err := secondBackend.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := second.Cities(ctx); err != nil {
		t.Fatalf("Request 3 failed: %v", err)
	}
	if mock.RequestCount() != 2 {
		t.Errorf("After reset: upstream requests = %d, want 2", mock.RequestCount())
	}
}

// TestSearchBypassesCache checks that POST searches always reach the site.
func TestSearchBypassesCache(t *testing.T) {
	addr, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockLenta()
	defer mock.Close()
	mock.SetResponse("POST /api/v1/stores/0007/skus", testutil.NewJSONResponse(testutil.MustJSON(map[string]any{
		"skus": []any{testutil.SkuFixture("100", "Молоко", 89.99)},
	})))

	backend := cache.NewRedisBackend(cache.RedisConfig{Addr: addr, KeyPrefix: cache.DefaultKeyPrefix})
	defer backend.Close()

	cfg := client.DefaultConfig(backend)
	cfg.BaseURL = mock.URL()
	c, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.SearchSkus(ctx, "0007", SearchParams{Query: "молоко"}); err != nil {
			t.Fatalf("Search %d failed: %v", i+1, err)
		}
	}
	if mock.RequestCount() != 2 {
		t.Errorf("Upstream requests = %d, want 2", mock.RequestCount())
	}
}
