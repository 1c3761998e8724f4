package cian

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cian-radar/config"
	"cian-radar/geo"
	"cian-radar/models"
	"cian-radar/utils"
)

// Client fetches CIAN sale offers around an address. It tries a static
// fetch of the search page first, reading the offer data CIAN embeds in
// its markup, and falls back to a headless browser when the static page
// comes back without it.
type Client struct {
	cfg      *config.Config
	resolver Resolver
	logger   *utils.Logger
	http     *http.Client
	retry    *utils.RetryConfig
}

// Resolver is the part of the geocoder the fetcher needs to turn the
// searched address into a center point.
type Resolver interface {
	Resolve(ctx context.Context, address string) (geo.Point, error)
}

// New creates a ready-to-use CIAN client.
func New(cfg *config.Config, resolver Resolver, logger *utils.Logger) *Client {
	return &Client{
		cfg:      cfg,
		resolver: resolver,
		logger:   logger,
		http:     &http.Client{Timeout: 30 * time.Second},
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Search runs one search: resolve the address, build the polygon query,
// fetch the result page and hand back raw offers within the radius.
// Offers are returned as the page rendered them, parsing is the
// analyzer's job.
func (c *Client) Search(ctx context.Context, params models.SearchParams) ([]models.RawListing, error) {
	center, err := c.resolver.Resolve(ctx, params.Address)
	if err != nil {
		return nil, fmt.Errorf("resolve search area: %w", err)
	}

	box := geo.BoundsAround(center, params.RadiusKm)
	searchURL := BuildSearchURL(c.cfg.CianURL, params, box)
	c.logger.Info("[cian] searching %.1f km around %.6f, %.6f", params.RadiusKm, center.Lat, center.Lon)
	c.logger.Debug("[cian] %s", searchURL)

	offers, err := c.fetchStatic(ctx, searchURL)
	if err != nil {
		c.logger.Warn("[cian] static fetch failed: %v, falling back to browser", err)
		offers, err = c.fetchBrowser(ctx, searchURL)
		if err != nil {
			return nil, fmt.Errorf("fetch offers: %w", err)
		}
	}

	// The polygon is the bounding box of the radius circle, so corners
	// may hold offers farther out than asked. Drop those when the offer
	// came with coordinates; DOM-scraped cards carry none and stay.
	seen := utils.NewURLSet()
	result := make([]models.RawListing, 0, len(offers))
	outside := 0
	for _, r := range offers {
		if r.URL != "" && !seen.Add(r.URL) {
			continue
		}
		if r.Lat != 0 || r.Lon != 0 {
			if geo.Distance(center, geo.Point{Lat: r.Lat, Lon: r.Lon}) > params.RadiusKm {
				outside++
				continue
			}
		}
		result = append(result, r)
	}

	if outside > 0 {
		c.logger.Debug("[cian] dropped %d offers outside the %.1f km radius", outside, params.RadiusKm)
	}
	c.logger.Info("[cian] collected %d offers for %q", len(result), params.Address)
	return result, nil
}
