package catalog

import "strings"

// coffeeKeywords drives the fallback classification for products without an
// explicit is_coffee flag.
var coffeeKeywords = []string{
	"coffee",
	"espresso",
	"latte",
	"cappuccino",
	"americano",
	"macchiato",
	"mocha",
	"frappe",
	"brew",
}

// CoffeeKeywords returns a copy of the keyword set used by IsCoffeeType.
func CoffeeKeywords() []string {
	out := make([]string, len(coffeeKeywords))
	copy(out, coffeeKeywords)
	return out
}

// IsCoffeeType reports whether the category or name contains any coffee keyword,
// ignoring case.
func IsCoffeeType(category, name string) bool {
	haystacks := []string{strings.ToLower(category), strings.ToLower(name)}
	for _, keyword := range coffeeKeywords {
		for _, h := range haystacks {
			if strings.Contains(h, keyword) {
				return true
			}
		}
	}
	return false
}

// IsCoffee resolves classification for a variant, preferring the explicit flag.
func (v Variant) IsCoffee() bool {
	if v.CoffeeFlag != nil {
		return *v.CoffeeFlag
	}
	return IsCoffeeType(v.Category, v.Name)
}
