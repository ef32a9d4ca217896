// Package lenta is a typed client for the Lenta retail API.
//
// Every operation goes through the request pipeline of pkg/client and picks
// its own cache TTL: city and store lists are kept for a day, a single store
// and the catalog for an hour, SKU lookups for five minutes. Searches are
// never cached.
//
// Responses are decoded strictly. A missing required field or a value of the
// wrong type yields a *ParseError naming the entity and the JSON path of the
// field; no partially populated record is ever returned. Upstream failures
// (*client.ClientError, *client.ServerError, *client.TransportError) are
// returned unchanged.
//
// Usage:
//
//	api, _ := client.New(client.DefaultConfig(cache.NewMemoryBackend()))
//	lc := lenta.New(api)
//	stores, err := lc.CityStores(ctx, "msk")
package lenta
