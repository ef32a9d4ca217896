package lenta

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testCatalog() Catalog {
	return Catalog{
		Groups: []CatalogGroup{
			{
				CategoryInfo: CategoryInfo{Code: "g-dairy", Name: "Молочные продукты"},
				Categories: []Category{
					{
						CategoryInfo: CategoryInfo{Code: "c-milk", Name: "Молоко"},
						Subcategories: []CategoryInfo{
							{Code: "s-milk-25"},
							{Code: "s-milk-32"},
						},
					},
				},
			},
			{
				CategoryInfo: CategoryInfo{Code: "g-bakery", Name: "Выпечка"},
				Categories: []Category{
					{
						CategoryInfo:  CategoryInfo{Code: "c-bread", Name: "Хлеб"},
						Subcategories: []CategoryInfo{{Code: "s-rye"}},
					},
				},
			},
		},
	}
}

func TestCatalog_GroupCategories(t *testing.T) {
	catalog := testCatalog()

	if got := catalog.GroupCategories("g-bakery"); len(got) != 1 || got[0].Code != "c-bread" {
		t.Errorf("GroupCategories(g-bakery) = %+v", got)
	}
	if got := catalog.GroupCategories("unknown"); got != nil {
		t.Errorf("GroupCategories(unknown) = %+v, want nil", got)
	}
}

func TestCatalog_Subcategories(t *testing.T) {
	catalog := testCatalog()

	got := catalog.Subcategories("c-milk")
	if len(got) != 2 || got[0].Code != "s-milk-25" || got[1].Code != "s-milk-32" {
		t.Errorf("Subcategories(c-milk) = %+v", got)
	}

	// Searches across groups
	if got := catalog.Subcategories("c-bread"); len(got) != 1 {
		t.Errorf("Subcategories(c-bread) = %+v", got)
	}

	if got := catalog.Subcategories("g-dairy"); got != nil {
		t.Errorf("Subcategories(g-dairy) = %+v, want nil", got)
	}
}

func TestSku_HasPromotion(t *testing.T) {
	tests := []struct {
		promoType string
		expected  bool
	}{
		{"", false},
		{"None", false},
		{"none", false},
		{" None ", false},
		{"Regular", true},
		{"Lentochka", true},
	}

	for _, tt := range tests {
		sku := Sku{PromoType: tt.promoType}
		if got := sku.HasPromotion(); got != tt.expected {
			t.Errorf("HasPromotion(%q) = %v, want %v", tt.promoType, got, tt.expected)
		}
	}
}

func TestSku_PriceAndDiscount(t *testing.T) {
	regular := Sku{RegularPrice: decimal.RequireFromString("89.99")}
	if got := regular.Price(); !got.Equal(decimal.RequireFromString("89.99")) {
		t.Errorf("Price() = %s, want 89.99", got)
	}
	if _, ok := regular.Discount(); ok {
		t.Error("Discount() ok = true without a discount price")
	}

	discounted := Sku{
		RegularPrice:  decimal.RequireFromString("120"),
		DiscountPrice: decimal.NewNullDecimal(decimal.RequireFromString("99.90")),
	}
	if got := discounted.Price(); !got.Equal(decimal.RequireFromString("99.9")) {
		t.Errorf("Price() = %s, want 99.9", got)
	}
	amount, ok := discounted.Discount()
	if !ok || !amount.Equal(decimal.RequireFromString("20.1")) {
		t.Errorf("Discount() = %s, %v, want 20.1, true", amount, ok)
	}
}

func TestSku_Unit(t *testing.T) {
	if got := (Sku{IsWeightProduct: true}).Unit(); got != "кг." {
		t.Errorf("Unit() = %q, want кг.", got)
	}
	if got := (Sku{}).Unit(); got != "шт." {
		t.Errorf("Unit() = %q, want шт.", got)
	}
}
