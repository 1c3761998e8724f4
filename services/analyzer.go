package services

import (
	"regexp"
	"strconv"
	"strings"

	"cian-radar/models"
	"cian-radar/utils"
)

var (
	// nonDigit matches everything outside 0-9
	nonDigit = regexp.MustCompile(`[^0-9]`)
	// nonAreaRune matches everything outside 0-9 and the decimal separators
	nonAreaRune = regexp.MustCompile(`[^0-9.,]`)
)

// Price band in ₽ per square meter. Values at or beyond either bound
// are treated as data-entry errors on the listing site and dropped, not
// corrected.
const (
	MinPricePerArea = 10_000
	MaxPricePerArea = 1_000_000
)

// Analyzer turns raw scraped offers into a clean price-per-m² dataset.
type Analyzer struct {
	logger *utils.Logger
}

// NewAnalyzer creates an Analyzer with the given logger.
func NewAnalyzer(logger *utils.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Exclusions counts the records Normalize dropped, by reason. Drops are
// silent per record, the counters keep the shrinkage visible in logs
// and in the result counts.
type Exclusions struct {
	BadPrice int
	BadArea  int
}

// Total is the number of records dropped for any reason.
func (e Exclusions) Total() int {
	return e.BadPrice + e.BadArea
}

// Normalize parses raw price and area text into numbers and derives the
// price per square meter. Records whose price or area cannot be parsed
// to a positive number are skipped. Input order is preserved.
func (a *Analyzer) Normalize(raw []models.RawListing) ([]models.Listing, Exclusions) {
	var excl Exclusions
	result := make([]models.Listing, 0, len(raw))

	for _, r := range raw {
		price, ok := parsePrice(r.Price)
		if !ok {
			a.logger.Debug("[analyzer] unparseable price %q (%s)", r.Price, r.URL)
			excl.BadPrice++
			continue
		}

		area, ok := parseArea(r.Area)
		if !ok {
			a.logger.Debug("[analyzer] unparseable area %q (%s)", r.Area, r.URL)
			excl.BadArea++
			continue
		}

		result = append(result, models.Listing{
			Price:        price,
			Area:         area,
			PricePerArea: price / area,
			Rooms:        strings.TrimSpace(r.Rooms),
			Address:      strings.TrimSpace(r.Address),
			URL:          strings.TrimSpace(r.URL),
		})
	}

	if excl.Total() > 0 {
		a.logger.Info("[analyzer] normalized %d of %d offers (bad price: %d, bad area: %d)",
			len(result), len(raw), excl.BadPrice, excl.BadArea)
	}
	return result, excl
}

// FilterOutliers keeps listings strictly inside the plausible price
// band. Both bounds are exclusive: an offer at exactly 1 000 000 ₽/м²
// is dropped. Order is preserved and applying the filter twice changes
// nothing.
func (a *Analyzer) FilterOutliers(listings []models.Listing) []models.Listing {
	result := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.PricePerArea > MinPricePerArea && l.PricePerArea < MaxPricePerArea {
			result = append(result, l)
		}
	}
	return result
}

// AveragePricePerArea returns the arithmetic mean of the price-per-m²
// values. ok is false for an empty input: an absent average and a zero
// average must stay distinguishable.
func (a *Analyzer) AveragePricePerArea(listings []models.Listing) (float64, bool) {
	if len(listings) == 0 {
		return 0, false
	}

	var sum float64
	for _, l := range listings {
		sum += l.PricePerArea
	}
	return sum / float64(len(listings)), true
}

// parsePrice concatenates the digits of a raw price string, so
// "5 500 000 ₽" becomes 5500000 regardless of the separators CIAN
// renders. ok is false when no digits remain or the value is not
// positive.
func parsePrice(raw string) (float64, bool) {
	digits := nonDigit.ReplaceAllString(raw, "")
	if digits == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(digits, 64)
	if err != nil || val <= 0 {
		return 0, false
	}
	return val, true
}

// parseArea keeps digits plus the decimal separator and parses the
// result, accepting both the comma CIAN renders ("54,3 м²") and a
// plain dot. ok is false for malformed text and non-positive areas,
// which also guards the price-per-m² division.
func parseArea(raw string) (float64, bool) {
	cleaned := nonAreaRune.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || val <= 0 {
		return 0, false
	}
	return val, true
}
