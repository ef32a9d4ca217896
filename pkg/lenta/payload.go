package lenta

import (
	"github.com/shopspring/decimal"
)

// Wire shapes of the site's JSON. Required fields are pointers so that an
// absent field can be told apart from a zero value.

type cityPayload struct {
	ID                              *string  `json:"id" validate:"required"`
	Name                            *string  `json:"name" validate:"required"`
	Lat                             *float64 `json:"lat" validate:"required"`
	Long                            *float64 `json:"long" validate:"required"`
	MediumStoreConcentration        *bool    `json:"mediumStoreConcentration" validate:"required"`
	HighStoreConcentration          *bool    `json:"highStoreConcentration" validate:"required"`
	DeliveryOptionPopupDefaultValue *string  `json:"deliveryOptionPopupDefaultValue"`
}

func (p *cityPayload) record() City {
	return City{
		ID:                              *p.ID,
		Name:                            *p.Name,
		Lat:                             *p.Lat,
		Long:                            *p.Long,
		MediumStoreConcentration:        *p.MediumStoreConcentration,
		HighStoreConcentration:          *p.HighStoreConcentration,
		DeliveryOptionPopupDefaultValue: deref(p.DeliveryOptionPopupDefaultValue),
	}
}

type storePayload struct {
	ID                  *string  `json:"id" validate:"required"`
	Name                *string  `json:"name" validate:"required"`
	Address             *string  `json:"address" validate:"required"`
	CityKey             *string  `json:"cityKey" validate:"required"`
	CityName            *string  `json:"cityName" validate:"required"`
	Type                *string  `json:"type" validate:"required"`
	Lat                 *float64 `json:"lat" validate:"required"`
	Long                *float64 `json:"long" validate:"required"`
	IsDefaultStore      *bool    `json:"isDefaultStore" validate:"required"`
	IsEcomAvailable     *bool    `json:"isEcomAvailable" validate:"required"`
	IsPickupAvailable   *bool    `json:"isPickupAvailable" validate:"required"`
	IsDeliveryAvailable *bool    `json:"isDeliveryAvailable" validate:"required"`
	Is24hStore          *bool    `json:"is24hStore" validate:"required"`
	HasPetShop          *bool    `json:"hasPetShop" validate:"required"`
	Division            *string  `json:"division" validate:"required"`
	IsFavorite          *bool    `json:"isFavorite" validate:"required"`
	TimeZoneOffset      *string  `json:"storeTimeZoneOffset" validate:"required"`

	OpensAt                    *int `json:"opensAt"`
	ClosesAt                   *int `json:"closesAt"`
	MinOrderSum                *int `json:"minOrderSumm"`
	MaxOrderSum                *int `json:"maxOrderSumm"`
	MinDeliveryOrderSum        *int `json:"minDeliveryOrderSumm"`
	MaxDeliveryOrderSum        *int `json:"maxDeliveryOrderSumm"`
	MaxWeight                  *int `json:"maxWeight"`
	MaxDeliveryWeight          *int `json:"maxDeliveryWeight"`
	MaxQuantityPerItem         *int `json:"maxQuantityPerItem"`
	MaxDeliveryQuantityPerItem *int `json:"maxDeliveryQuantityPerItem"`
	OrderLimitOverall          *int `json:"orderLimitOverall"`
	DeliveryOrderLimitOverall  *int `json:"deliveryOrderLimitOverall"`
}

func (p *storePayload) record() Store {
	return Store{
		ID:                         *p.ID,
		Name:                       *p.Name,
		Address:                    *p.Address,
		CityKey:                    *p.CityKey,
		CityName:                   *p.CityName,
		Type:                       *p.Type,
		Lat:                        *p.Lat,
		Long:                       *p.Long,
		IsDefaultStore:             *p.IsDefaultStore,
		IsEcomAvailable:            *p.IsEcomAvailable,
		IsPickupAvailable:          *p.IsPickupAvailable,
		IsDeliveryAvailable:        *p.IsDeliveryAvailable,
		Is24hStore:                 *p.Is24hStore,
		HasPetShop:                 *p.HasPetShop,
		Division:                   *p.Division,
		IsFavorite:                 *p.IsFavorite,
		TimeZoneOffset:             *p.TimeZoneOffset,
		OpensAt:                    p.OpensAt,
		ClosesAt:                   p.ClosesAt,
		MinOrderSum:                p.MinOrderSum,
		MaxOrderSum:                p.MaxOrderSum,
		MinDeliveryOrderSum:        p.MinDeliveryOrderSum,
		MaxDeliveryOrderSum:        p.MaxDeliveryOrderSum,
		MaxWeight:                  p.MaxWeight,
		MaxDeliveryWeight:          p.MaxDeliveryWeight,
		MaxQuantityPerItem:         p.MaxQuantityPerItem,
		MaxDeliveryQuantityPerItem: p.MaxDeliveryQuantityPerItem,
		OrderLimitOverall:          p.OrderLimitOverall,
		DeliveryOrderLimitOverall:  p.DeliveryOrderLimitOverall,
	}
}

type imagePayload struct {
	Thumbnail   *string `json:"thumbnail" validate:"required,url"`
	Medium      *string `json:"medium" validate:"required,url"`
	FullSize    *string `json:"fullSize" validate:"required,url"`
	MediumLossy *string `json:"mediumLossy" validate:"required,url"`
}

func (p *imagePayload) record() Image {
	return Image{
		Thumbnail:   *p.Thumbnail,
		Medium:      *p.Medium,
		FullSize:    *p.FullSize,
		MediumLossy: *p.MediumLossy,
	}
}

func optionalImage(p *imagePayload) *Image {
	if p == nil {
		return nil
	}
	img := p.record()
	return &img
}

type categoryInfoPayload struct {
	Code                *string       `json:"code" validate:"required"`
	Name                *string       `json:"name" validate:"required"`
	SkuCount            *int          `json:"skuCount" validate:"required"`
	SkuDiscountCount    *int          `json:"skuDiscountCount" validate:"required"`
	ShowLentochkaBanner *bool         `json:"showLentochkaBanner" validate:"required"`
	Image               *imagePayload `json:"image"`
	URL                 *string       `json:"url" validate:"required"`
}

func (p *categoryInfoPayload) record() CategoryInfo {
	return CategoryInfo{
		Code:                *p.Code,
		Name:                *p.Name,
		SkuCount:            *p.SkuCount,
		SkuDiscountCount:    *p.SkuDiscountCount,
		ShowLentochkaBanner: *p.ShowLentochkaBanner,
		Image:               optionalImage(p.Image),
		URL:                 *p.URL,
	}
}

type categoryPayload struct {
	categoryInfoPayload
	Subcategories []categoryInfoPayload `json:"subcategories" validate:"required,dive"`
}

func (p *categoryPayload) record() Category {
	subcategories := make([]CategoryInfo, len(p.Subcategories))
	for i := range p.Subcategories {
		subcategories[i] = p.Subcategories[i].record()
	}
	return Category{CategoryInfo: p.categoryInfoPayload.record(), Subcategories: subcategories}
}

type catalogGroupPayload struct {
	categoryInfoPayload
	Categories []categoryPayload `json:"categories" validate:"required,dive"`
}

func (p *catalogGroupPayload) record() CatalogGroup {
	categories := make([]Category, len(p.Categories))
	for i := range p.Categories {
		categories[i] = p.Categories[i].record()
	}
	return CatalogGroup{CategoryInfo: p.categoryInfoPayload.record(), Categories: categories}
}

type promotionPayload struct {
	Banner    *string `json:"banner"`
	BannerURL *string `json:"bannerUrl"`
}

type catalogPayload struct {
	Groups    []catalogGroupPayload `json:"catalogGroups" validate:"required,dive"`
	Promotion *promotionPayload     `json:"lentochkaPromotion" validate:"required"`
}

func (p *catalogPayload) record() Catalog {
	groups := make([]CatalogGroup, len(p.Groups))
	for i := range p.Groups {
		groups[i] = p.Groups[i].record()
	}
	return Catalog{
		Groups: groups,
		Promotion: Promotion{
			Banner:    deref(p.Promotion.Banner),
			BannerURL: deref(p.Promotion.BannerURL),
		},
	}
}

type categoryRefPayload struct {
	Code *string `json:"code" validate:"required"`
	Name *string `json:"name" validate:"required"`
}

func (p *categoryRefPayload) record() CategoryRef {
	return CategoryRef{Code: *p.Code, Name: *p.Name}
}

type skuCategoriesPayload struct {
	Group       *categoryRefPayload `json:"group" validate:"required"`
	Category    *categoryRefPayload `json:"category" validate:"required"`
	Subcategory *categoryRefPayload `json:"subcategory" validate:"required"`
}

type skuPayload struct {
	Code         *string        `json:"code" validate:"required"`
	Title        *string        `json:"title" validate:"required"`
	SubTitle     *string        `json:"subTitle" validate:"required"`
	RegularPrice *price         `json:"regularPrice" validate:"required"`
	Images       []imagePayload `json:"images" validate:"required,dive"`
	WebURL       *string        `json:"webUrl" validate:"required,url"`
	Weight       *float64       `json:"skuWeight" validate:"required"`
	Stock        *string        `json:"stock" validate:"required,oneof=None Few Enough Many"`

	IsAvailableForOrder    *bool                 `json:"isAvailableForOrder" validate:"required"`
	IsAvailableForDelivery *bool                 `json:"isAvailableForDelivery" validate:"required"`
	IsWeightProduct        *bool                 `json:"isWeightProduct" validate:"required"`
	Categories             *skuCategoriesPayload `json:"categories" validate:"required"`

	Brand            *string       `json:"brand"`
	Description      *string       `json:"description"`
	OfferDescription *string       `json:"offerDescription"`
	DiscountPrice    *price        `json:"discountPrice"`
	PriceByPromocode *price        `json:"priceByProcomode"`
	StampsPrice      *string       `json:"stampsPrice"`
	PromoID          *string       `json:"promoId"`
	PromoType        *string       `json:"promoType"`
	ValidityStart    *timestamp    `json:"validityStartDate"`
	ValidityEnd      *timestamp    `json:"validityEndDate"`
	Image            *imagePayload `json:"image"`
	OrderLimit       *int          `json:"orderLimit"`
	OrderSteps       []float64     `json:"orderSteps"`
}

func (p *skuPayload) record() Sku {
	images := make([]Image, len(p.Images))
	for i := range p.Images {
		images[i] = p.Images[i].record()
	}

	return Sku{
		Code:             *p.Code,
		Title:            *p.Title,
		SubTitle:         *p.SubTitle,
		Brand:            deref(p.Brand),
		Description:      deref(p.Description),
		OfferDescription: deref(p.OfferDescription),
		RegularPrice:     p.RegularPrice.Decimal,
		DiscountPrice:    nullDecimal(p.DiscountPrice),
		PriceByPromocode: nullDecimal(p.PriceByPromocode),
		StampsPrice:      deref(p.StampsPrice),
		PromoID:          deref(p.PromoID),
		PromoType:        deref(p.PromoType),
		ValidityStart:    p.ValidityStart.value(),
		ValidityEnd:      p.ValidityEnd.value(),
		Image:            optionalImage(p.Image),
		Images:           images,
		WebURL:           *p.WebURL,
		OrderLimit:       p.OrderLimit,
		OrderSteps:       append([]float64(nil), p.OrderSteps...),
		Weight:           *p.Weight,

		IsAvailableForOrder:    *p.IsAvailableForOrder,
		IsAvailableForDelivery: *p.IsAvailableForDelivery,
		IsWeightProduct:        *p.IsWeightProduct,
		Stock:                  StockLevel(*p.Stock),
		Categories: SkuCategories{
			Group:       p.Categories.Group.record(),
			Category:    p.Categories.Category.record(),
			Subcategory: p.Categories.Subcategory.record(),
		},
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func nullDecimal(p *price) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(p.Decimal)
}
