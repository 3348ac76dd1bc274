package enums

import "slices"

// ProductSize is a serving size. Each size of a product has its own price and stock.
type ProductSize string

const (
	ProductSizeSmall  ProductSize = "Small"
	ProductSizeMedium ProductSize = "Medium"
	ProductSizeLarge  ProductSize = "Large"
)

var productSizes = []ProductSize{ProductSizeSmall, ProductSizeMedium, ProductSizeLarge}

// ProductSizes lists sizes from smallest to largest.
func ProductSizes() []ProductSize { return slices.Clone(productSizes) }

func (s ProductSize) IsValid() bool { return slices.Contains(productSizes, s) }
