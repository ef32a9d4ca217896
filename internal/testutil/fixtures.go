package testutil

import (
	"encoding/json"
)

// Fixtures return fresh maps on every call so tests can add, change or
// delete fields before encoding them with JSON.

// CityFixture returns a city object as the site sends it.
func CityFixture(id, name string, lat, long float64) map[string]any {
	return map[string]any{
		"id":                              id,
		"name":                            name,
		"lat":                             lat,
		"long":                            long,
		"mediumStoreConcentration":        false,
		"highStoreConcentration":          true,
		"deliveryOptionPopupDefaultValue": nil,
	}
}

// StoreFixture returns a store object as the site sends it.
func StoreFixture(id, name, cityKey string, lat, long float64) map[string]any {
	return map[string]any{
		"id":                         id,
		"name":                       name,
		"address":                    "ул. Тестовая, д. 1",
		"cityKey":                    cityKey,
		"cityName":                   "Санкт-Петербург",
		"type":                       "Hypermarket",
		"lat":                        lat,
		"long":                       long,
		"opensAt":                    480,
		"closesAt":                   1380,
		"isDefaultStore":             false,
		"isEcomAvailable":            true,
		"isPickupAvailable":          true,
		"isDeliveryAvailable":        false,
		"is24hStore":                 false,
		"hasPetShop":                 true,
		"division":                   "NW",
		"isFavorite":                 false,
		"minOrderSumm":               1000,
		"maxOrderSumm":               nil,
		"minDeliveryOrderSumm":       nil,
		"maxDeliveryOrderSumm":       nil,
		"maxWeight":                  80,
		"maxDeliveryWeight":          nil,
		"maxQuantityPerItem":         nil,
		"maxDeliveryQuantityPerItem": nil,
		"orderLimitOverall":          nil,
		"deliveryOrderLimitOverall":  nil,
		"storeTimeZoneOffset":        "+03:00",
	}
}

// ImageFixture returns an image object with all renditions.
func ImageFixture() map[string]any {
	return map[string]any{
		"thumbnail":   "https://cdn.lenta.com/thumb/1.png",
		"medium":      "https://cdn.lenta.com/medium/1.png",
		"fullSize":    "https://cdn.lenta.com/full/1.png",
		"mediumLossy": "https://cdn.lenta.com/lossy/1.jpg",
	}
}

// SkuFixture returns a SKU object without a promotion.
func SkuFixture(code, title string, regularPrice float64) map[string]any {
	return map[string]any{
		"code":                   code,
		"title":                  title,
		"subTitle":               "1 шт.",
		"brand":                  "Тест",
		"description":            nil,
		"regularPrice":           regularPrice,
		"discountPrice":          nil,
		"priceByProcomode":       nil,
		"offerDescription":       nil,
		"promoId":                nil,
		"promoType":              "None",
		"validityStartDate":      nil,
		"validityEndDate":        nil,
		"image":                  ImageFixture(),
		"images":                 []any{ImageFixture()},
		"stampsPrice":            nil,
		"webUrl":                 "https://lenta.com/product/" + code + "/",
		"orderLimit":             nil,
		"orderSteps":             []any{1},
		"skuWeight":              0.5,
		"isAvailableForOrder":    true,
		"isAvailableForDelivery": false,
		"isWeightProduct":        false,
		"stock":                  "Enough",
		"categories": map[string]any{
			"group":       map[string]any{"code": "g-dairy", "name": "Молочные продукты"},
			"category":    map[string]any{"code": "c-milk", "name": "Молоко"},
			"subcategory": map[string]any{"code": "s-milk-25", "name": "Молоко 2,5%"},
		},
	}
}

// PromoSkuFixture returns a SKU object on promotion.
func PromoSkuFixture(code, title string, regularPrice, discountPrice float64) map[string]any {
	sku := SkuFixture(code, title, regularPrice)
	sku["discountPrice"] = discountPrice
	sku["promoId"] = "promo-" + code
	sku["promoType"] = "Regular"
	sku["validityStartDate"] = "2026-10-01T00:00:00"
	sku["validityEndDate"] = "2026-10-31T23:59:59"
	return sku
}

// CategoryFixture returns a catalog node without children.
func CategoryFixture(code, name string) map[string]any {
	return map[string]any{
		"code":                code,
		"name":                name,
		"skuCount":            42,
		"skuDiscountCount":    3,
		"showLentochkaBanner": false,
		"image":               nil,
		"url":                 "/catalog/" + code + "/",
	}
}

// CatalogFixture returns a two group catalog:
// g-dairy > c-milk > (s-milk-25, s-milk-32) and g-bakery > c-bread > (s-rye).
func CatalogFixture() map[string]any {
	milk := CategoryFixture("c-milk", "Молоко")
	milk["subcategories"] = []any{
		CategoryFixture("s-milk-25", "Молоко 2,5%"),
		CategoryFixture("s-milk-32", "Молоко 3,2%"),
	}
	dairy := CategoryFixture("g-dairy", "Молочные продукты")
	dairy["categories"] = []any{milk}

	bread := CategoryFixture("c-bread", "Хлеб")
	bread["subcategories"] = []any{CategoryFixture("s-rye", "Ржаной")}
	bakery := CategoryFixture("g-bakery", "Выпечка")
	bakery["categories"] = []any{bread}

	return map[string]any{
		"catalogGroups": []any{dairy, bakery},
		"lentochkaPromotion": map[string]any{
			"banner":    nil,
			"bannerUrl": nil,
		},
	}
}

// MustJSON encodes v, panicking on failure.
func MustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
