package steam

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"gamehub/pkg/models"
)

const (
	headerImageBase = "https://shared.fastly.steamstatic.com/store_item_assets/steam/apps"
	appURLBase      = "https://store.steampowered.com/app"
)

var (
	rowRe      = regexp.MustCompile(`(?s)<a\b[^>]*\bclass="[^"]*\bsearch_result_row\b[^"]*"[^>]*>.*?</a>`)
	titleRe    = regexp.MustCompile(`(?s)<span\s+class="title">(.*?)</span>`)
	releasedRe = regexp.MustCompile(`(?s)<div\s+class="search_released[^>]*>(.*?)</div>`)

	discountPctRe   = regexp.MustCompile(`(?s)<div\s+class="discount_pct">(.*?)</div>`)
	originalPriceRe = regexp.MustCompile(`(?s)<div\s+class="discount_original_price">(.*?)</div>`)

	winRe   = regexp.MustCompile(`platform_img\s+win`)
	macRe   = regexp.MustCompile(`platform_img\s+mac`)
	linuxRe = regexp.MustCompile(`platform_img\s+linux`)

	brRe        = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	percentRe   = regexp.MustCompile(`(\d{1,3})%\s*가\s*긍정적`)
	countRe     = regexp.MustCompile(`사용자\s*평가\s*([\d,]+)개`)
	totalRe     = regexp.MustCompile(`검색\s*결과가\s*([\d,]+)개\s*있습니다\.`)
	noResultsRe = regexp.MustCompile(`검색\s*결과가\s*없습니다`)

	nonDigitDashRe = regexp.MustCompile(`[^\d-]`)
)

// ParsePlatforms tests a row block for the three fixed platform
// markers. Order is always windows, mac, linux.
func ParsePlatforms(block string) []models.SteamPlatform {
	platforms := []models.SteamPlatform{}

	if winRe.MatchString(block) {
		platforms = append(platforms, models.SteamPlatform{Slug: "windows", Label: "Windows"})
	}
	if macRe.MatchString(block) {
		platforms = append(platforms, models.SteamPlatform{Slug: "mac", Label: "macOS"})
	}
	if linuxRe.MatchString(block) {
		platforms = append(platforms, models.SteamPlatform{Slug: "linux", Label: "Linux"})
	}

	return platforms
}

type ReviewData struct {
	Summary *string
	Percent *int
	Count   *int
}

// ParseReviewData decodes the review tooltip of a row block. The
// tooltip is an HTML-encoded attribute payload: summary is the text
// before the first line break, percent and count come from fixed
// Korean phrases. Each sub-pattern fails independently — a partial
// extraction is valid.
func ParseReviewData(block string) ReviewData {
	tooltipRaw, ok := ExtractAttr(block, "data-tooltip-html")
	if !ok {
		return ReviewData{}
	}

	tooltip := DecodeEntities(tooltipRaw)

	var data ReviewData
	firstLine := strings.TrimSpace(brRe.Split(tooltip, 2)[0])
	if firstLine != "" {
		data.Summary = &firstLine
	}
	if m := percentRe.FindStringSubmatch(tooltip); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			data.Percent = &n
		}
	}
	if m := countRe.FindStringSubmatch(tooltip); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			data.Count = &n
		}
	}
	return data
}

// ParseTotalCount extracts the "N results found" figure. Both the
// explicit no-results text and unmatched input yield 0 — this is a
// count, never absent.
func ParseTotalCount(html string) int {
	if m := totalRe.FindStringSubmatch(html); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			return n
		}
	}
	if noResultsRe.MatchString(html) {
		return 0
	}
	return 0
}

// ParseListings segments the search-results document into result rows
// and decodes each one. Rows missing an appid or a title are silently
// dropped: a large scrape is expected to contain noise, so a malformed
// row means fewer results, never an error.
func ParseListings(html string) []models.SteamListing {
	rows := rowRe.FindAllString(html, -1)

	listings := make([]models.SteamListing, 0, len(rows))
	for _, block := range rows {
		appidValue, ok := ExtractAttr(block, "data-ds-appid")
		if !ok {
			continue
		}
		appid, err := strconv.ParseInt(appidValue, 10, 64)
		if err != nil {
			continue
		}

		name, ok := ExtractText(block, titleRe)
		if !ok {
			continue
		}

		capsuleImage, _ := ExtractAttr(block, "src")

		listing := models.SteamListing{
			AppID:        appid,
			Name:         name,
			HeaderImage:  headerImageBase + "/" + appidValue + "/header.jpg",
			CapsuleImage: capsuleImage,
			URL:          appURLBase + "/" + appidValue,
			Platforms:    ParsePlatforms(block),
			TagIDs:       parseTagIDs(block),
		}

		if released, ok := ExtractText(block, releasedRe); ok {
			listing.Released = &released
		}

		review := ParseReviewData(block)
		listing.ReviewSummary = review.Summary
		listing.ReviewPercent = review.Percent
		listing.ReviewCount = review.Count

		// A missing discount block is nil; a present block that reads
		// as zero (or garbage) is 0. The distinction is meaningful to
		// consumers and must not collapse.
		if pctText, ok := ExtractText(block, discountPctRe); ok {
			pct, err := strconv.Atoi(nonDigitDashRe.ReplaceAllString(pctText, ""))
			if err != nil {
				pct = 0
			}
			listing.DiscountPercent = &pct
		}

		// data-price-final is already in minor units; the original
		// price is display text with implied decimals.
		if priceValue, ok := ExtractAttr(block, "data-price-final"); ok {
			if n, err := strconv.Atoi(priceValue); err == nil {
				listing.PriceFinal = &n
			}
		}
		if origText, ok := ExtractText(block, originalPriceRe); ok {
			listing.PriceOriginal = ParsePrice(origText)
		}

		listings = append(listings, listing)
	}
	return listings
}

func parseTagIDs(block string) []int64 {
	raw, ok := ExtractAttr(block, "data-ds-tagids")
	if !ok {
		return []int64{}
	}

	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []int64{}
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if n, ok := item.(float64); ok {
			ids = append(ids, int64(n))
		}
	}
	return ids
}
