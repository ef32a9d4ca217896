// Package assistant implements the operations behind the chat commands:
// store selection, catalog browsing, SKU search and tracking, and barcode
// lookups.
package assistant

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Sternrassler/lenta-assistant/internal/storage"
	"github.com/Sternrassler/lenta-assistant/pkg/client"
	"github.com/Sternrassler/lenta-assistant/pkg/lenta"
	"github.com/Sternrassler/lenta-assistant/pkg/logging"
)

var (
	// ErrNoStore is returned when the user has not selected a store yet.
	ErrNoStore = errors.New("no store selected")

	// ErrStoreNotFound is returned when the site does not know the store.
	ErrStoreNotFound = errors.New("store not found")

	// ErrCityNotFound is returned when no city matches.
	ErrCityNotFound = errors.New("city not found")

	// ErrSkuNotFound is returned when the store does not sell the SKU.
	ErrSkuNotFound = errors.New("sku not found")

	// ErrNotTracked is returned when removing a SKU the user does not track.
	ErrNotTracked = errors.New("sku is not tracked")
)

// Repository is the persistence used by the service.
type Repository interface {
	AddUser(ctx context.Context, user storage.User) error
	SetUserStore(ctx context.Context, userID int64, storeID string) error
	UserStoreID(ctx context.Context, userID int64) (string, error)
	AddUserSku(ctx context.Context, userID int64, skuID string) error
	RemoveUserSku(ctx context.Context, userID int64, skuID string) error
	UserSkuIDs(ctx context.Context, userID int64) ([]string, error)
}

// Service combines the retail API and the user repository.
type Service struct {
	lenta  *lenta.Client
	repo   Repository
	logger zerolog.Logger
}

// New creates a service.
func New(lentaClient *lenta.Client, repo Repository) *Service {
	return &Service{
		lenta:  lentaClient,
		repo:   repo,
		logger: logging.NewLogger("assistant"),
	}
}

// Register stores a user on first contact.
func (s *Service) Register(ctx context.Context, user storage.User) error {
	return s.repo.AddUser(ctx, user)
}

// Cities lists the cities sorted by name.
func (s *Service) Cities(ctx context.Context) ([]lenta.City, error) {
	cities, err := s.lenta.Cities(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(cities, func(a, b lenta.City) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return cities, nil
}

// CityByName finds a city by its exact name.
func (s *Service) CityByName(ctx context.Context, name string) (lenta.City, error) {
	cities, err := s.lenta.Cities(ctx)
	if err != nil {
		return lenta.City{}, err
	}
	for _, city := range cities {
		if city.Name == name {
			return city, nil
		}
	}
	return lenta.City{}, fmt.Errorf("%w: %q", ErrCityNotFound, name)
}

// CityStores lists the stores of a city sorted by name.
func (s *Service) CityStores(ctx context.Context, cityID string) ([]lenta.Store, error) {
	stores, err := s.lenta.CityStores(ctx, cityID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(stores, func(a, b lenta.Store) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return stores, nil
}

// Store fetches a store. An id the site rejects yields ErrStoreNotFound.
func (s *Service) Store(ctx context.Context, storeID string) (lenta.Store, error) {
	if storeID == "" {
		return lenta.Store{}, ErrNoStore
	}
	store, err := s.lenta.Store(ctx, storeID)
	if err != nil {
		if isClientError(err) {
			return lenta.Store{}, fmt.Errorf("%w: %w", ErrStoreNotFound, err)
		}
		return lenta.Store{}, err
	}
	return store, nil
}

// SelectStore validates storeID against the site and saves it as the user's store.
func (s *Service) SelectStore(ctx context.Context, userID int64, storeID string) (lenta.Store, error) {
	store, err := s.Store(ctx, storeID)
	if err != nil {
		return lenta.Store{}, err
	}
	if err := s.repo.SetUserStore(ctx, userID, store.ID); err != nil {
		return lenta.Store{}, err
	}

	s.logger.Info().Int64("user_id", userID).Str("store_id", store.ID).Msg("Store selected")
	return store, nil
}

// UserStoreID returns the id of the store selected by the user, or ErrNoStore.
func (s *Service) UserStoreID(ctx context.Context, userID int64) (string, error) {
	storeID, err := s.repo.UserStoreID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNoStore
		}
		return "", err
	}
	return storeID, nil
}

// UserStore fetches the store selected by the user.
func (s *Service) UserStore(ctx context.Context, userID int64) (lenta.Store, error) {
	storeID, err := s.UserStoreID(ctx, userID)
	if err != nil {
		return lenta.Store{}, err
	}
	return s.Store(ctx, storeID)
}

// NearestStore returns the store closest to a point: the nearest city is
// chosen first, then the nearest store within it.
func (s *Service) NearestStore(ctx context.Context, lat, long float64) (lenta.Store, error) {
	cities, err := s.lenta.Cities(ctx)
	if err != nil {
		return lenta.Store{}, err
	}
	if len(cities) == 0 {
		return lenta.Store{}, ErrCityNotFound
	}

	city := slices.MinFunc(cities, func(a, b lenta.City) int {
		return cmp.Compare(distance(lat, long, a.Lat, a.Long), distance(lat, long, b.Lat, b.Long))
	})

	stores, err := s.lenta.CityStores(ctx, city.ID)
	if err != nil {
		return lenta.Store{}, err
	}
	if len(stores) == 0 {
		return lenta.Store{}, fmt.Errorf("%w: city %s has no stores", ErrStoreNotFound, city.ID)
	}

	return slices.MinFunc(stores, func(a, b lenta.Store) int {
		return cmp.Compare(distance(lat, long, a.Lat, a.Long), distance(lat, long, b.Lat, b.Long))
	}), nil
}

// distance is the planar distance between two coordinates.
func distance(lat1, long1, lat2, long2 float64) float64 {
	return math.Hypot(lat2-lat1, long2-long1)
}

// Search finds SKUs of a store by title.
func (s *Service) Search(ctx context.Context, storeID string, params lenta.SearchParams) ([]lenta.Sku, error) {
	if storeID == "" {
		return nil, ErrNoStore
	}
	return s.lenta.SearchSkus(ctx, storeID, params)
}

// Sku fetches a SKU of a store. A code the site rejects yields ErrSkuNotFound.
func (s *Service) Sku(ctx context.Context, storeID, code string) (lenta.Sku, error) {
	if storeID == "" {
		return lenta.Sku{}, ErrNoStore
	}
	sku, err := s.lenta.Sku(ctx, storeID, code)
	if err != nil {
		if isClientError(err) {
			return lenta.Sku{}, fmt.Errorf("%w: %w", ErrSkuNotFound, err)
		}
		return lenta.Sku{}, err
	}
	return sku, nil
}

// TrackSku checks that the user's store sells the SKU and starts tracking it.
func (s *Service) TrackSku(ctx context.Context, userID int64, code string) (lenta.Sku, error) {
	storeID, err := s.UserStoreID(ctx, userID)
	if err != nil {
		return lenta.Sku{}, err
	}

	sku, err := s.Sku(ctx, storeID, code)
	if err != nil {
		return lenta.Sku{}, err
	}

	if err := s.repo.AddUserSku(ctx, userID, sku.Code); err != nil {
		return lenta.Sku{}, err
	}

	s.logger.Info().Int64("user_id", userID).Str("sku", sku.Code).Msg("SKU tracked")
	return sku, nil
}

// UntrackSku stops tracking a SKU.
func (s *Service) UntrackSku(ctx context.Context, userID int64, code string) error {
	if err := s.repo.RemoveUserSku(ctx, userID, code); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotTracked
		}
		return err
	}
	return nil
}

// TrackedSkus fetches the SKUs tracked by the user from the user's store.
func (s *Service) TrackedSkus(ctx context.Context, userID int64) ([]lenta.Sku, error) {
	storeID, err := s.UserStoreID(ctx, userID)
	if err != nil {
		return nil, err
	}

	codes, err := s.repo.UserSkuIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return []lenta.Sku{}, nil
	}

	return s.lenta.StoreSkusByCodes(ctx, storeID, codes)
}

// BarcodeLookup is a SKU found by barcode.
type BarcodeLookup struct {
	Sku     lenta.Sku
	Barcode string

	// Weight in kg and the price for it, set for weight products only
	Weight      float64
	WeightPrice decimal.NullDecimal
}

// LookupBarcode finds a SKU of a store by barcode. For weight products the
// weight printed into the barcode is priced.
func (s *Service) LookupBarcode(ctx context.Context, storeID, barcode string) (BarcodeLookup, error) {
	if storeID == "" {
		return BarcodeLookup{}, ErrNoStore
	}

	sku, err := s.lenta.SkuByBarcode(ctx, storeID, barcode)
	if err != nil {
		if isClientError(err) {
			return BarcodeLookup{}, fmt.Errorf("%w: %w", ErrSkuNotFound, err)
		}
		return BarcodeLookup{}, err
	}

	result := BarcodeLookup{Sku: sku, Barcode: barcode}
	if !sku.IsWeightProduct {
		return result, nil
	}

	weight, err := lenta.WeightFromBarcode(barcode)
	if err != nil {
		s.logger.Warn().Err(err).Str("sku", sku.Code).Msg("Weight product barcode without weight")
		return result, nil
	}

	result.Weight = weight
	result.WeightPrice = decimal.NewNullDecimal(decimal.NewFromFloat(weight).Mul(sku.Price()).Round(2))
	return result, nil
}

// CatalogGroups returns the top level of a store's catalog.
func (s *Service) CatalogGroups(ctx context.Context, storeID string) ([]lenta.CatalogGroup, error) {
	catalog, err := s.catalog(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return catalog.Groups, nil
}

// GroupCategories returns the categories of a catalog group, empty when the
// group is unknown.
func (s *Service) GroupCategories(ctx context.Context, storeID, groupCode string) ([]lenta.Category, error) {
	catalog, err := s.catalog(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return catalog.GroupCategories(groupCode), nil
}

// CategorySubcategories returns the subcategories of a category, empty when
// the category is unknown.
func (s *Service) CategorySubcategories(ctx context.Context, storeID, categoryCode string) ([]lenta.CategoryInfo, error) {
	catalog, err := s.catalog(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return catalog.Subcategories(categoryCode), nil
}

// CategorySkus lists the SKUs under a catalog node.
func (s *Service) CategorySkus(ctx context.Context, storeID, nodeCode string, limit, offset int) ([]lenta.Sku, error) {
	return s.Search(ctx, storeID, lenta.SearchParams{NodeCode: nodeCode, Limit: limit, Offset: offset})
}

func (s *Service) catalog(ctx context.Context, storeID string) (lenta.Catalog, error) {
	if storeID == "" {
		return lenta.Catalog{}, ErrNoStore
	}
	return s.lenta.Catalog(ctx, storeID)
}

func isClientError(err error) bool {
	var clientErr *client.ClientError
	return errors.As(err, &clientErr)
}
