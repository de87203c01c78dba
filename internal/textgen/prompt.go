package textgen

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

const listingPrompt = `
	You are a professional product listing expert specializing in African e-commerce.
	Generate a compelling product listing in valid JSON format for a %s product.
	Use Nigerian Naira (NGN) prices. Include these exact fields:
	{
	  "title": "A catchy, benefit-driven product title (max 60 characters)",
	  "description": "A compelling 150-200 character description highlighting key benefits and quality",
	  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"],
	  "price": "A realistic price range in NGN like '₦XX,XXX - ₦XXX,XXX'"
	}

	Return ONLY valid JSON, no markdown, no code blocks, no explanation.
`

// BuildListingPrompt renders the listing prompt for the category exactly as
// the caller supplied it.
func BuildListingPrompt(category string) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(listingPrompt)), category)
}
