package httpapi

import (
	"time"

	"github.com/Sternrassler/lenta-assistant/internal/assistant"
	"github.com/Sternrassler/lenta-assistant/pkg/lenta"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func successResponse(data any) Response {
	return Response{Success: true, Data: data}
}

func errorResponse(code, message string) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}

type cityResponse struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

func newCityResponse(c lenta.City) cityResponse {
	return cityResponse{ID: c.ID, Name: c.Name, Lat: c.Lat, Long: c.Long}
}

type storeResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Address           string  `json:"address"`
	CityKey           string  `json:"city_key"`
	CityName          string  `json:"city_name"`
	Lat               float64 `json:"lat"`
	Long              float64 `json:"long"`
	OpensAt           *int    `json:"opens_at,omitempty"`
	ClosesAt          *int    `json:"closes_at,omitempty"`
	Is24h             bool    `json:"is_24h"`
	IsPickupAvailable bool    `json:"is_pickup_available"`
	Info              string  `json:"info"`
}

func newStoreResponse(s lenta.Store) storeResponse {
	return storeResponse{
		ID:                s.ID,
		Name:              s.Name,
		Address:           s.Address,
		CityKey:           s.CityKey,
		CityName:          s.CityName,
		Lat:               s.Lat,
		Long:              s.Long,
		OpensAt:           s.OpensAt,
		ClosesAt:          s.ClosesAt,
		Is24h:             s.Is24hStore,
		IsPickupAvailable: s.IsPickupAvailable,
		Info:              assistant.StoreInfoMessage(s),
	}
}

type skuResponse struct {
	Code            string     `json:"code"`
	Title           string     `json:"title"`
	Brand           string     `json:"brand,omitempty"`
	RegularPrice    string     `json:"regular_price"`
	DiscountPrice   *string    `json:"discount_price,omitempty"`
	Discount        *string    `json:"discount,omitempty"`
	PromoType       string     `json:"promo_type,omitempty"`
	HasPromotion    bool       `json:"has_promotion"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	Unit            string     `json:"unit"`
	IsWeightProduct bool       `json:"is_weight_product"`
	Stock           string     `json:"stock"`
	StockText       string     `json:"stock_text"`
	ImageURL        string     `json:"image_url,omitempty"`
	WebURL          string     `json:"web_url,omitempty"`
}

func newSkuResponse(s lenta.Sku) skuResponse {
	resp := skuResponse{
		Code:            s.Code,
		Title:           s.Title,
		Brand:           s.Brand,
		RegularPrice:    s.RegularPrice.StringFixed(2),
		PromoType:       s.PromoType,
		HasPromotion:    s.HasPromotion(),
		Unit:            s.Unit(),
		IsWeightProduct: s.IsWeightProduct,
		Stock:           string(s.Stock),
		StockText:       s.Stock.Description(),
		WebURL:          s.WebURL,
	}
	if s.DiscountPrice.Valid {
		price := s.DiscountPrice.Decimal.StringFixed(2)
		resp.DiscountPrice = &price
	}
	if amount, ok := s.Discount(); ok {
		discount := amount.Round(2).StringFixed(2)
		resp.Discount = &discount
	}
	if !s.ValidityEnd.IsZero() {
		end := s.ValidityEnd
		resp.ValidUntil = &end
	}
	if s.Image != nil {
		resp.ImageURL = s.Image.Medium
	}
	return resp
}

func newSkuResponses(skus []lenta.Sku) []skuResponse {
	out := make([]skuResponse, 0, len(skus))
	for _, s := range skus {
		out = append(out, newSkuResponse(s))
	}
	return out
}

type barcodeResponse struct {
	Barcode     string      `json:"barcode"`
	Sku         skuResponse `json:"sku"`
	Weight      *float64    `json:"weight,omitempty"`
	WeightPrice *string     `json:"weight_price,omitempty"`
	Info        string      `json:"info"`
}

func newBarcodeResponse(l assistant.BarcodeLookup) barcodeResponse {
	resp := barcodeResponse{
		Barcode: l.Barcode,
		Sku:     newSkuResponse(l.Sku),
		Info:    assistant.BarcodeInfoMessage(l),
	}
	if l.WeightPrice.Valid {
		weight := l.Weight
		price := l.WeightPrice.Decimal.StringFixed(2)
		resp.Weight = &weight
		resp.WeightPrice = &price
	}
	return resp
}

type categoryResponse struct {
	Code             string             `json:"code"`
	Name             string             `json:"name"`
	SkuCount         int                `json:"sku_count"`
	SkuDiscountCount int                `json:"sku_discount_count"`
	Children         []categoryResponse `json:"children,omitempty"`
}

func newCategoryInfoResponse(c lenta.CategoryInfo) categoryResponse {
	return categoryResponse{
		Code:             c.Code,
		Name:             c.Name,
		SkuCount:         c.SkuCount,
		SkuDiscountCount: c.SkuDiscountCount,
	}
}

func newCategoryResponses(categories []lenta.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp := newCategoryInfoResponse(c.CategoryInfo)
		for _, sub := range c.Subcategories {
			resp.Children = append(resp.Children, newCategoryInfoResponse(sub))
		}
		out = append(out, resp)
	}
	return out
}

func newGroupResponses(groups []lenta.CatalogGroup) []categoryResponse {
	out := make([]categoryResponse, 0, len(groups))
	for _, g := range groups {
		resp := newCategoryInfoResponse(g.CategoryInfo)
		resp.Children = newCategoryResponses(g.Categories)
		out = append(out, resp)
	}
	return out
}

func newSubcategoryResponses(subcategories []lenta.CategoryInfo) []categoryResponse {
	out := make([]categoryResponse, 0, len(subcategories))
	for _, c := range subcategories {
		out = append(out, newCategoryInfoResponse(c))
	}
	return out
}

type registerRequest struct {
	ID        int64  `json:"id" binding:"required,gt=0"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type selectStoreRequest struct {
	StoreID string `json:"store_id" binding:"required"`
}

type trackSkuRequest struct {
	Code string `json:"code" binding:"required"`
}

type searchQuery struct {
	Query         string   `form:"q"`
	Limit         int      `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset        int      `form:"offset" binding:"omitempty,min=0"`
	OnlyDiscounts bool     `form:"only_discounts"`
	Node          string   `form:"node"`
	MinPrice      *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice      *float64 `form:"max_price" binding:"omitempty,min=0"`
	Sorting       string   `form:"sorting"`
}

func (q searchQuery) params() lenta.SearchParams {
	return lenta.SearchParams{
		Query:         q.Query,
		Limit:         q.Limit,
		Offset:        q.Offset,
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
		Sorting:       q.Sorting,
		OnlyDiscounts: q.OnlyDiscounts,
		NodeCode:      q.Node,
	}
}

type nearestQuery struct {
	Lat  *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Long *float64 `form:"long" binding:"required,min=-180,max=180"`
}
