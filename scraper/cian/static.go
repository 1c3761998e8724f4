package cian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"cian-radar/models"
)

// serpDataKey names the offers array inside the state object CIAN
// serializes into every search page.
const serpDataKey = "offersSerialized"

var errNoEmbeddedData = errors.New("no embedded offer data in page")

// offer mirrors the slice of CIAN's embedded offer JSON the pipeline
// needs. Everything else in the payload is ignored.
type offer struct {
	CianID       int64        `json:"cianId"`
	RoomsCount   int          `json:"roomsCount"`
	FlatType     string       `json:"flatType"`
	TotalArea    string       `json:"totalArea"`
	FullURL      string       `json:"fullUrl"`
	BargainTerms bargainTerms `json:"bargainTerms"`
	Geo          offerGeo     `json:"geo"`
}

type bargainTerms struct {
	PriceRur float64 `json:"priceRur"`
	Price    float64 `json:"price"`
}

type offerGeo struct {
	UserInput   string        `json:"userInput"`
	Coordinates coordinates   `json:"coordinates"`
	Address     []addressPart `json:"address"`
}

type coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type addressPart struct {
	FullName string `json:"fullName"`
}

// fetchStatic downloads the search page over plain HTTP and reads the
// offers out of the serialized state. When CIAN serves the bot wall
// instead, the page carries no state and the caller falls back to the
// browser strategy.
func (c *Client) fetchStatic(ctx context.Context, searchURL string) ([]models.RawListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search page returned %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	payload, ok := findOffersJSON(doc)
	if !ok {
		return nil, errNoEmbeddedData
	}

	var offers []offer
	if err := json.Unmarshal([]byte(payload), &offers); err != nil {
		return nil, fmt.Errorf("decode embedded offers: %w", err)
	}

	result := make([]models.RawListing, 0, len(offers))
	for _, o := range offers {
		result = append(result, o.toRaw())
	}
	c.logger.Debug("[cian] static strategy extracted %d offers", len(result))
	return result, nil
}

// toRaw converts an embedded offer to the raw shape the analyzer takes.
// Price goes over as text on purpose: both strategies hand the analyzer
// the same raw form, whatever the page rendered.
func (o offer) toRaw() models.RawListing {
	price := o.BargainTerms.PriceRur
	if price == 0 {
		price = o.BargainTerms.Price
	}

	return models.RawListing{
		Price:   fmt.Sprintf("%.0f ₽", price),
		Area:    o.TotalArea,
		Rooms:   o.roomsLabel(),
		Address: o.address(),
		URL:     o.FullURL,
		Lat:     o.Geo.Coordinates.Lat,
		Lon:     o.Geo.Coordinates.Lng,
	}
}

func (o offer) roomsLabel() string {
	if o.FlatType == "studio" {
		return "студия"
	}
	if o.RoomsCount > 0 {
		return strconv.Itoa(o.RoomsCount)
	}
	return ""
}

func (o offer) address() string {
	parts := make([]string, 0, len(o.Geo.Address))
	for _, p := range o.Geo.Address {
		if p.FullName != "" {
			parts = append(parts, p.FullName)
		}
	}
	if len(parts) == 0 {
		return o.Geo.UserInput
	}
	return strings.Join(parts, ", ")
}

// findOffersJSON walks the parsed page looking for the script that
// carries the serialized search results.
func findOffersJSON(doc *html.Node) (string, bool) {
	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "script" {
			if t := n.FirstChild; t != nil && t.Type == html.TextNode {
				if arr, ok := extractJSONArray(t.Data, serpDataKey); ok {
					found = arr
					return true
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		return false
	}
	if walk(doc) {
		return found, true
	}
	return "", false
}

// extractJSONArray cuts the JSON array value of key out of JavaScript
// source. A bracket counter that skips string literals is enough here,
// the serialized state is valid JSON.
func extractJSONArray(src, key string) (string, bool) {
	idx := strings.Index(src, `"`+key+`"`)
	if idx < 0 {
		return "", false
	}

	rest := src[idx+len(key)+2:]
	start := strings.IndexByte(rest, '[')
	if start < 0 {
		return "", false
	}
	// Only a colon and whitespace may sit between the key and its value.
	for _, r := range rest[:start] {
		if r != ':' && !unicode.IsSpace(r) {
			return "", false
		}
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(rest); i++ {
		ch := rest[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '[':
			depth++
		case ch == ']':
			depth--
			if depth == 0 {
				return rest[start : i+1], true
			}
		}
	}
	return "", false
}
