package lenta

import (
	"fmt"
	"strconv"
)

// WeightFromBarcode extracts the weight in kilograms printed into the barcode
// of a weight product. The grams are the three digits before the check digit.
func WeightFromBarcode(barcode string) (float64, error) {
	if len(barcode) < 4 {
		return 0, fmt.Errorf("barcode %q is too short", barcode)
	}

	raw := barcode[len(barcode)-4 : len(barcode)-1]
	grams, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("barcode %q: weight digits %q are not numeric", barcode, raw)
	}

	return float64(grams) / 1000, nil
}
