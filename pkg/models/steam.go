package models

// SteamPlatform is a platform tag parsed from a storefront result row.
type SteamPlatform struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// SteamListing is one row scraped from the storefront search results
// page, before any merging with the catalog sources. Pointer fields
// are nil when the row simply doesn't carry that block — a free game
// has no original price, an unreviewed game has no review tooltip.
// Prices are in minor currency units (KRW * 100).
type SteamListing struct {
	AppID           int64           `json:"appid"`
	Name            string          `json:"name"`
	HeaderImage     string          `json:"header_image"`
	CapsuleImage    string          `json:"capsule_image"`
	URL             string          `json:"url"`
	Released        *string         `json:"released,omitempty"`
	ReviewSummary   *string         `json:"review_summary,omitempty"`
	ReviewPercent   *int            `json:"review_percent,omitempty"`
	ReviewCount     *int            `json:"review_count,omitempty"`
	PriceFinal      *int            `json:"price_final,omitempty"`
	PriceOriginal   *int            `json:"price_original,omitempty"`
	DiscountPercent *int            `json:"discount_percent,omitempty"`
	Platforms       []SteamPlatform `json:"platforms"`
	TagIDs          []int64         `json:"tag_ids"`
}
