package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/uchejames/vibeshop/internal/catalog"
	"github.com/uchejames/vibeshop/internal/domain"
)

const (
	DefaultTitle       = "Premium Product"
	DefaultDescription = "High-quality product with excellent craftsmanship and attention to detail"
)

var ErrNotJSONObject = errors.New("generated text is not a JSON object")

// PartialListing is a generated listing as decoded from untrusted model output.
// Zero values mark fields the model left out.
type PartialListing struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Price       string   `json:"price"`
}

// ParseListing decodes model output that must be exactly one JSON object.
// Markdown fences or surrounding commentary are rejected, as are fields of the wrong type.
func ParseListing(text string) (*PartialListing, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotJSONObject
	}

	var parsed PartialListing
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	return &parsed, nil
}

// MergeListing takes each field of parsed independently, substituting the
// generic defaults for missing ones. The second return value reports whether
// any field had to be defaulted or normalized.
func MergeListing(parsed *PartialListing, pricing domain.CategoryPricing) (domain.GeneratedListing, bool) {
	if parsed == nil {
		parsed = &PartialListing{}
	}

	listing := domain.GeneratedListing{
		Title:       parsed.Title,
		Description: parsed.Description,
		Price:       parsed.Price,
	}
	defaulted := false

	if strings.TrimSpace(listing.Title) == "" {
		listing.Title = DefaultTitle
		defaulted = true
	}
	if strings.TrimSpace(listing.Description) == "" {
		listing.Description = DefaultDescription
		defaulted = true
	}

	var tagsChanged bool
	listing.Tags, tagsChanged = NormalizeTags(parsed.Tags, pricing.Tags)
	defaulted = defaulted || tagsChanged

	if _, ok := catalog.ParsePrice(listing.Price); !ok {
		listing.Price = catalog.DisplayPrice(pricing)
		defaulted = true
	}

	return listing, defaulted
}

// NormalizeTags returns exactly domain.TagCount non-blank tags. Kept tags are
// returned exactly as given. Extra tags are dropped; missing ones are filled
// from defaults that are not already present.
func NormalizeTags(tags, defaults []string) ([]string, bool) {
	out := make([]string, 0, domain.TagCount)
	seen := make(map[string]bool, domain.TagCount)
	changed := len(tags) != domain.TagCount

	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			changed = true
			continue
		}
		if len(out) == domain.TagCount {
			break
		}
		out = append(out, tag)
		seen[key] = true
	}

	for _, tag := range defaults {
		if len(out) == domain.TagCount {
			break
		}
		if seen[strings.ToLower(tag)] {
			continue
		}
		out = append(out, tag)
		seen[strings.ToLower(tag)] = true
		changed = true
	}

	return out, changed
}

// FallbackListing builds the deterministic listing used when generation fails outright.
// display is the category as the caller supplied it; pricing may belong to another category.
func FallbackListing(display string, pricing domain.CategoryPricing) domain.GeneratedListing {
	return domain.GeneratedListing{
		Title:       fmt.Sprintf("Premium %s Product", capitalize(display)),
		Description: fmt.Sprintf("High-quality %s product with excellent craftsmanship and attention to detail. Perfect for discerning customers.", display),
		Tags:        append([]string(nil), pricing.Tags...),
		Price:       catalog.DisplayPrice(pricing),
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
