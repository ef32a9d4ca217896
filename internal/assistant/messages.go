package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Sternrassler/lenta-assistant/pkg/lenta"
)

// Message headers.
const (
	DiscountsHeader   = "🎁 Скидки на сегодня"
	NoDiscountsHeader = "😢 На ваши товары сегодня скидок нет"
	TrackedSkusHeader = "🗒 Список добавленных товаров"
)

// StoreInfoMessage renders the city, address and opening hours of a store.
func StoreInfoMessage(store lenta.Store) string {
	return strings.Join([]string{
		"🏢 Город: " + store.CityName,
		"📍 Адрес: " + store.Address,
		"🕓 Время работы: " + clock(store.OpensAt) + "-" + clock(store.ClosesAt),
	}, "\n")
}

// clock renders minutes after midnight as HH:MM.
func clock(minutes *int) string {
	if minutes == nil {
		return "?"
	}
	return fmt.Sprintf("%02d:%02d", *minutes/60, *minutes%60)
}

// SkuInfoMessage renders a SKU card.
func SkuInfoMessage(sku lenta.Sku) string {
	return skuInfo(sku, "", 0, "")
}

// BarcodeInfoMessage renders a SKU card for a barcode lookup, priced by the
// scanned weight for weight products.
func BarcodeInfoMessage(lookup BarcodeLookup) string {
	weightPrice := ""
	if lookup.WeightPrice.Valid {
		weightPrice = lookup.WeightPrice.Decimal.StringFixed(2)
	}
	return skuInfo(lookup.Sku, lookup.Barcode, lookup.Weight, weightPrice)
}

func skuInfo(sku lenta.Sku, barcode string, weight float64, weightPrice string) string {
	var lines []string

	if barcode != "" {
		lines = append(lines, "🎹 Штрих-код: "+barcode)
	}

	lines = append(lines,
		"ℹ️ Товар: "+sku.Title,
		"🔄 Количество: "+sku.Stock.Description(),
	)

	if weightPrice != "" {
		lines = append(lines, fmt.Sprintf("💵 Цена: %s за %s кг.", weightPrice, strconv.FormatFloat(weight, 'f', -1, 64)))
	} else {
		price := sku.RegularPrice.StringFixed(2)
		if sku.DiscountPrice.Valid {
			price = fmt.Sprintf("%s (вместо %s)", sku.DiscountPrice.Decimal.StringFixed(2), price)
		}
		lines = append(lines, fmt.Sprintf("💵 Цена: %s за %s", price, sku.Unit()))
	}

	if discount, ok := sku.Discount(); ok && !discount.IsZero() {
		lines = append(lines, "🎁 Скидка: "+discount.Round(2).StringFixed(2))
	}

	return strings.Join(lines, "\n")
}

// SkuListMessage renders the SKUs tracked by a user.
func SkuListMessage(skus []lenta.Sku) string {
	parts := []string{TrackedSkusHeader}
	for _, sku := range skus {
		parts = append(parts, SkuInfoMessage(sku))
	}
	return strings.Join(parts, "\n\n")
}

// DiscountMessage renders the daily discount notification for a user.
func DiscountMessage(discounted []lenta.Sku) string {
	if len(discounted) == 0 {
		return NoDiscountsHeader
	}
	parts := []string{DiscountsHeader}
	for _, sku := range discounted {
		parts = append(parts, SkuInfoMessage(sku))
	}
	return strings.Join(parts, "\n\n")
}
