package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category identifies a product classification that drives pricing bounds and default tags
type Category string

const (
	CategoryFashion     Category = "fashion"
	CategoryArt         Category = "art"
	CategoryClothing    Category = "clothing"
	CategoryAccessories Category = "accessories"
	CategoryElectronics Category = "electronics"
	CategoryHome        Category = "home"
	CategoryBeauty      Category = "beauty"
	CategorySports      Category = "sports"

	// DefaultCategory is used when a request names no category or an unknown one
	DefaultCategory = CategoryFashion
)

// TagCount is the number of tags every listing carries
const TagCount = 5

// CategoryPricing holds the price bounds and default tags for a category
type CategoryPricing struct {
	Category Category `json:"id"`
	Label    string   `json:"label"`
	Min      int64    `json:"min"`
	Max      int64    `json:"max"`
	Tags     []string `json:"tags"`
}

// PriceRange is the structured form of a listing price
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// ListingRequest is the input of one generation call
type ListingRequest struct {
	ImageReference string
	Category       string
}

// GeneratedListing is the textual listing bundle returned to sellers
type GeneratedListing struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Price       string   `json:"price"`
}

// ListingResult is the full response of the generation pipeline
type ListingResult struct {
	RemovedBg string           `json:"removedBg"`
	Enhanced  string           `json:"enhanced"`
	Poster    string           `json:"poster"`
	Listing   GeneratedListing `json:"listing"`
	ShareLink *string          `json:"shareLink"`
}

// ListingSource tells where the listing text came from
type ListingSource string

const (
	SourceAI       ListingSource = "ai"
	SourcePartial  ListingSource = "partial"
	SourceFallback ListingSource = "fallback"
)

// GenerationRecord is the audit entry written for every completed generation.
// It never holds image data or listing text.
type GenerationRecord struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	RequestedCategory string        `json:"requested_category" db:"requested_category"`
	ResolvedCategory  Category      `json:"resolved_category" db:"resolved_category"`
	Source            ListingSource `json:"source" db:"source"`
	Model             string        `json:"model" db:"model"`
	Renderer          string        `json:"renderer" db:"renderer"`
	DurationMs        int64         `json:"duration_ms" db:"duration_ms"`
	ErrorMessage      string        `json:"error_message,omitempty" db:"error_message"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
}
