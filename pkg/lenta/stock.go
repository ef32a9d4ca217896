package lenta

// StockLevel is the coarse availability of a SKU in a store.
type StockLevel string

// Stock levels reported by the site.
const (
	StockNone   StockLevel = "None"
	StockFew    StockLevel = "Few"
	StockEnough StockLevel = "Enough"
	StockMany   StockLevel = "Many"
)

var stockDescriptions = map[StockLevel]string{
	StockNone:   "Нет товара",
	StockFew:    "Товар заканчивается",
	StockEnough: "Товара достаточно",
	StockMany:   "Товара много",
}

// Description returns the user facing text for the level, or "" when unknown.
func (s StockLevel) Description() string {
	return stockDescriptions[s]
}

// Valid reports whether s is one of the known levels.
func (s StockLevel) Valid() bool {
	_, ok := stockDescriptions[s]
	return ok
}

// InStock is false only for StockNone.
func (s StockLevel) InStock() bool {
	return s.Valid() && s != StockNone
}
