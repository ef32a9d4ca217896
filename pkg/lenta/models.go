package lenta

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// City is a city with Lenta stores.
type City struct {
	ID                       string
	Name                     string
	Lat                      float64
	Long                     float64
	MediumStoreConcentration bool
	HighStoreConcentration   bool

	// DeliveryOptionPopupDefaultValue is empty when the site omits it
	DeliveryOptionPopupDefaultValue string
}

// Store is a single Lenta store.
// Optional limits are nil when the site omits them.
type Store struct {
	ID                  string
	Name                string
	Address             string
	CityKey             string
	CityName            string
	Type                string
	Lat                 float64
	Long                float64
	IsDefaultStore      bool
	IsEcomAvailable     bool
	IsPickupAvailable   bool
	IsDeliveryAvailable bool
	Is24hStore          bool
	HasPetShop          bool
	Division            string
	IsFavorite          bool
	TimeZoneOffset      string

	OpensAt                    *int
	ClosesAt                   *int
	MinOrderSum                *int
	MaxOrderSum                *int
	MinDeliveryOrderSum        *int
	MaxDeliveryOrderSum        *int
	MaxWeight                  *int
	MaxDeliveryWeight          *int
	MaxQuantityPerItem         *int
	MaxDeliveryQuantityPerItem *int
	OrderLimitOverall          *int
	DeliveryOrderLimitOverall  *int
}

// Image holds the rendition URLs of a picture.
type Image struct {
	Thumbnail   string
	Medium      string
	FullSize    string
	MediumLossy string
}

// CategoryInfo describes one catalog node.
type CategoryInfo struct {
	Code                string
	Name                string
	SkuCount            int
	SkuDiscountCount    int
	ShowLentochkaBanner bool
	Image               *Image
	URL                 string
}

// Category is a second level catalog node.
type Category struct {
	CategoryInfo
	Subcategories []CategoryInfo
}

// CatalogGroup is a top level catalog node.
type CatalogGroup struct {
	CategoryInfo
	Categories []Category
}

// Promotion is the loyalty card banner shown with the catalog.
type Promotion struct {
	Banner    string
	BannerURL string
}

// Catalog is the category tree of a store.
type Catalog struct {
	Groups    []CatalogGroup
	Promotion Promotion
}

// GroupCategories returns the categories of the group with the given code,
// or nil when there is no such group.
func (c Catalog) GroupCategories(groupCode string) []Category {
	for _, group := range c.Groups {
		if group.Code == groupCode {
			return group.Categories
		}
	}
	return nil
}

// Subcategories returns the subcategories of the category with the given
// code, searching every group.
func (c Catalog) Subcategories(categoryCode string) []CategoryInfo {
	for _, group := range c.Groups {
		for _, category := range group.Categories {
			if category.Code == categoryCode {
				return category.Subcategories
			}
		}
	}
	return nil
}

// CategoryRef names a catalog node.
type CategoryRef struct {
	Code string
	Name string
}

// SkuCategories places a SKU in the catalog.
type SkuCategories struct {
	Group       CategoryRef
	Category    CategoryRef
	Subcategory CategoryRef
}

// NoPromotion is the promoType value the site sends for SKUs without a discount.
const NoPromotion = "None"

// Sku is a product as sold in a particular store.
type Sku struct {
	Code     string
	Title    string
	SubTitle string
	Brand    string

	Description      string
	OfferDescription string

	RegularPrice     decimal.Decimal
	DiscountPrice    decimal.NullDecimal
	PriceByPromocode decimal.NullDecimal
	StampsPrice      string

	PromoID       string
	PromoType     string
	ValidityStart time.Time
	ValidityEnd   time.Time

	Image  *Image
	Images []Image
	WebURL string

	OrderLimit *int
	OrderSteps []float64

	Weight                 float64
	IsAvailableForOrder    bool
	IsAvailableForDelivery bool
	IsWeightProduct        bool
	Stock                  StockLevel
	Categories             SkuCategories
}

// HasPromotion reports whether the SKU is on an active promotion.
func (s Sku) HasPromotion() bool {
	promo := strings.TrimSpace(s.PromoType)
	return promo != "" && !strings.EqualFold(promo, NoPromotion)
}

// Price returns the price the customer pays now.
func (s Sku) Price() decimal.Decimal {
	if s.DiscountPrice.Valid {
		return s.DiscountPrice.Decimal
	}
	return s.RegularPrice
}

// Discount returns regular minus discount price.
// ok is false when the SKU has no discount price.
func (s Sku) Discount() (amount decimal.Decimal, ok bool) {
	if !s.DiscountPrice.Valid {
		return decimal.Zero, false
	}
	return s.RegularPrice.Sub(s.DiscountPrice.Decimal), true
}

// Unit is the sales unit label shown next to a price.
func (s Sku) Unit() string {
	if s.IsWeightProduct {
		return "кг."
	}
	return "шт."
}
