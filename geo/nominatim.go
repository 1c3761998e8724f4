package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"cian-radar/utils"
)

// ErrNotFound is returned when the geocoder has no result for a query.
var ErrNotFound = errors.New("address not found")

// resolveCacheLimit bounds the resolve cache. A full cache is reset
// wholesale.
const resolveCacheLimit = 256

// Nominatim is a minimal client for the OSM Nominatim search API. All
// calls go through a RateGate because the public instance allows one
// request per second, and it wants an identifying User-Agent. Repeated
// resolves of the same address are answered from a small cache: one
// search resolves its address twice, for display and for the fetch.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	gate      *utils.RateGate
	logger    *utils.Logger

	mu    sync.Mutex
	cache map[string]Point
}

// NewNominatim creates a geocoder client against baseURL with the given
// minimum interval between requests.
func NewNominatim(baseURL, userAgent string, minInterval time.Duration, logger *utils.Logger) *Nominatim {
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
		gate:      utils.NewRateGate(minInterval),
		logger:    logger,
		cache:     make(map[string]Point),
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve geocodes a free-text address to a point. A query Nominatim
// knows nothing about yields ErrNotFound, which is never cached.
func (n *Nominatim) Resolve(ctx context.Context, address string) (Point, error) {
	key := strings.ToLower(strings.TrimSpace(address))

	n.mu.Lock()
	cached, hit := n.cache[key]
	n.mu.Unlock()
	if hit {
		return cached, nil
	}

	places, err := n.search(ctx, address, 1)
	if err != nil {
		return Point{}, err
	}
	if len(places) == 0 {
		return Point{}, fmt.Errorf("%q: %w", address, ErrNotFound)
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return Point{}, fmt.Errorf("geocoder returned unparseable coordinates for %q", address)
	}

	pt := Point{Lat: lat, Lon: lon}
	n.mu.Lock()
	if len(n.cache) >= resolveCacheLimit {
		n.cache = make(map[string]Point)
	}
	n.cache[key] = pt
	n.mu.Unlock()

	n.logger.Debug("[geo] resolved %q to %.6f, %.6f", address, pt.Lat, pt.Lon)
	return pt, nil
}

// Suggest returns up to limit display names matching the query. It
// powers the address autocomplete on the search form.
func (n *Nominatim) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	places, err := n.search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(places))
	for _, p := range places {
		names = append(names, p.DisplayName)
	}
	return names, nil
}

func (n *Nominatim) search(ctx context.Context, query string, limit int) ([]nominatimPlace, error) {
	if err := n.gate.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode %q: unexpected status %s", query, resp.Status)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("geocode %q: decode response: %w", query, err)
	}
	return places, nil
}
