package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Key identifies a cacheable upstream request.
type Key struct {
	// Method is the HTTP method (e.g., "GET")
	Method string

	// URL is the fully qualified request URL without the query string
	URL string

	// Query are the query parameters (e.g., {"barcode": "4607001771548"})
	Query map[string]string

	// Body are the JSON body parameters (e.g., {"skuCodes": ["123"]})
	Body map[string]any
}

// String generates a deterministic cache key string.
// Format: url_METHOD_query1:val1_query2:val2_body.param1:json1
//
// Query and body names are sorted. Query values are used as sent on the wire,
// body values are rendered by encoding/json so that logically equal numbers,
// booleans, lists and objects always produce the same text.
//
// Example:
//
//	https://lenta.com/api/v1/stores/0007/skus_GET_barcode:4607001771548
func (k Key) String() string {
	parts := []string{k.URL, strings.ToUpper(k.Method)}

	// Add query params (sorted for determinism)
	if len(k.Query) > 0 {
		queryKeys := make([]string, 0, len(k.Query))
		for key := range k.Query {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s:%s", key, k.Query[key]))
		}
	}

	// Add body params (sorted for determinism)
	if len(k.Body) > 0 {
		bodyKeys := make([]string, 0, len(k.Body))
		for key := range k.Body {
			bodyKeys = append(bodyKeys, key)
		}
		sort.Strings(bodyKeys)

		for _, key := range bodyKeys {
			parts = append(parts, fmt.Sprintf("body.%s:%s", key, renderValue(k.Body[key])))
		}
	}

	return strings.Join(parts, "_")
}

func renderValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
