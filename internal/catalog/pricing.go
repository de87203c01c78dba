package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/uchejames/vibeshop/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol prefixes every display price
const CurrencySymbol = "₦"

var pricePattern = regexp.MustCompile(`^₦([0-9,]+) - ₦([0-9,]+)$`)

var table = []domain.CategoryPricing{
	{Category: domain.CategoryFashion, Label: "Fashion & Apparel", Min: 8500, Max: 45000,
		Tags: []string{"stylish", "fashionable", "trendy", "quality", "authentic"}},
	{Category: domain.CategoryArt, Label: "Art & Crafts", Min: 12000, Max: 150000,
		Tags: []string{"artistic", "creative", "handcrafted", "unique", "original"}},
	{Category: domain.CategoryClothing, Label: "Clothing", Min: 6500, Max: 35000,
		Tags: []string{"comfortable", "quality", "durable", "stylish", "affordable"}},
	{Category: domain.CategoryAccessories, Label: "Accessories", Min: 5000, Max: 25000,
		Tags: []string{"elegant", "premium", "quality", "stylish", "timeless"}},
	{Category: domain.CategoryElectronics, Label: "Electronics", Min: 25000, Max: 500000,
		Tags: []string{"latest", "quality", "durable", "efficient", "reliable"}},
	{Category: domain.CategoryHome, Label: "Home & Garden", Min: 8000, Max: 120000,
		Tags: []string{"modern", "quality", "durable", "stylish", "functional"}},
	{Category: domain.CategoryBeauty, Label: "Beauty & Personal Care", Min: 4500, Max: 28000,
		Tags: []string{"natural", "effective", "premium", "quality", "safe"}},
	{Category: domain.CategorySports, Label: "Sports & Outdoors", Min: 7500, Max: 95000,
		Tags: []string{"durable", "professional", "quality", "reliable", "functional"}},
}

var byCategory = func() map[domain.Category]int {
	index := make(map[domain.Category]int, len(table))
	for i, entry := range table {
		index[entry.Category] = i
	}
	return index
}()

// Lookup returns the pricing entry for an exact category identifier
func Lookup(category string) (domain.CategoryPricing, bool) {
	i, ok := byCategory[domain.Category(category)]
	if !ok {
		return domain.CategoryPricing{}, false
	}
	return clone(table[i]), true
}

// Resolve returns the pricing entry for category, or the fashion entry when
// the category is not one of the known identifiers.
func Resolve(category string) domain.CategoryPricing {
	if entry, ok := Lookup(category); ok {
		return entry
	}
	entry, _ := Lookup(string(domain.DefaultCategory))
	return entry
}

// IsKnown reports whether category is one of the enumerated identifiers
func IsKnown(category string) bool {
	_, ok := byCategory[domain.Category(category)]
	return ok
}

// Categories returns every pricing entry in enumeration order
func Categories() []domain.CategoryPricing {
	out := make([]domain.CategoryPricing, 0, len(table))
	for _, entry := range table {
		out = append(out, clone(entry))
	}
	return out
}

// FormatPrice renders a price range as "₦8,500 - ₦45,000"
func FormatPrice(low, high int64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%s%d - %s%d", CurrencySymbol, low, CurrencySymbol, high)
}

// DisplayPrice renders the category's price bounds
func DisplayPrice(entry domain.CategoryPricing) string {
	return FormatPrice(entry.Min, entry.Max)
}

// ParsePrice parses a display price back into its bounds
func ParsePrice(s string) (domain.PriceRange, bool) {
	m := pricePattern.FindStringSubmatch(s)
	if m == nil {
		return domain.PriceRange{}, false
	}

	low, err := parseGrouped(m[1])
	if err != nil {
		return domain.PriceRange{}, false
	}
	high, err := parseGrouped(m[2])
	if err != nil {
		return domain.PriceRange{}, false
	}

	return domain.PriceRange{Min: low, Max: high}, true
}

func parseGrouped(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
}

func clone(entry domain.CategoryPricing) domain.CategoryPricing {
	entry.Tags = append([]string(nil), entry.Tags...)
	return entry
}
