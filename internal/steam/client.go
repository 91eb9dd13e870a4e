package steam

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"gamehub/pkg/models"
)

const defaultSearchURL = "https://store.steampowered.com/search/results/"

// The storefront blocks non-browser clients, so requests carry a
// desktop browser user-agent.
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// RequestError reports a non-success storefront response. There is no
// retry built in: the caller decides what a failed scrape means.
type RequestError struct {
	Status int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("steam: search request failed: %d", e.Status)
}

type Client struct {
	http      *resty.Client
	searchURL string
}

// NewClient builds a storefront search client. A non-empty searchURL
// overrides the live endpoint (tests point it at a local server).
func NewClient(searchURL string) *Client {
	if searchURL == "" {
		searchURL = defaultSearchURL
	}
	return &Client{
		http: resty.New().
			SetTimeout(15 * time.Second).
			SetHeader("User-Agent", browserUserAgent),
		searchURL: searchURL,
	}
}

type SearchParams struct {
	Tags  string // comma-joined tag ids, optional
	Count int    // page size, default 50
	Start int    // pagination offset
}

type SearchResult struct {
	Listings   []models.SteamListing `json:"listings"`
	TotalCount int                   `json:"total_count"`
}

// Search issues one storefront search request with the fixed locale /
// category parameters and parses the HTML response into listings.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	count := params.Count
	if count <= 0 {
		count = 50
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":          "",
			"category1":      "998",
			"l":              "koreana",
			"cc":             "KR",
			"count":          strconv.Itoa(count),
			"start":          strconv.Itoa(params.Start),
			"force_infinite": "1",
			"snr":            "1_7_7_230_150_1",
		})
	if params.Tags != "" {
		req.SetQueryParam("tags", params.Tags)
	}

	resp, err := req.Get(c.searchURL)
	if err != nil {
		return nil, fmt.Errorf("steam: search request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &RequestError{Status: resp.StatusCode()}
	}

	html := string(resp.Body())
	return &SearchResult{
		Listings:   ParseListings(html),
		TotalCount: ParseTotalCount(html),
	}, nil
}
