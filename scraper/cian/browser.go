package cian

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"cian-radar/models"
)

const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type cardData struct {
	Price   string `json:"price"`
	Area    string `json:"area"`
	Rooms   string `json:"rooms"`
	Address string `json:"address"`
	URL     string `json:"url"`
}

// fetchBrowser renders the search page in headless Chrome and reads the
// offer cards out of the DOM. Cards carry no coordinates, so listings
// from this strategy skip the radius post-filter.
func (c *Client) fetchBrowser(ctx context.Context, searchURL string) ([]models.RawListing, error) {
	chromeBin := c.findChromeBinary()
	if chromeBin != "" {
		c.logger.Debug("[cian] using browser binary: %s", chromeBin)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(browserUserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	allocCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()

	var cards []cardData
	err := c.retry.Do(ctx, "cian-search-page", func() error {
		tabCtx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.cfg.FetchTimeout)
		defer cancelTimeout()

		cards = cards[:0]
		err := chromedp.Run(tabCtx,
			chromedp.Navigate(searchURL),
			chromedp.Sleep(c.cfg.PageLoadWait),

			// Scroll so lazy-loaded cards below the fold render too
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),

			chromedp.Evaluate(extractCardsJS, &cards),
		)
		if err != nil {
			return fmt.Errorf("chromedp page scrape: %w", err)
		}
		if len(cards) == 0 {
			return errors.New("no offer cards on page")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]models.RawListing, 0, len(cards))
	for _, card := range cards {
		result = append(result, models.RawListing{
			Price:   card.Price,
			Area:    card.Area,
			Rooms:   card.Rooms,
			Address: card.Address,
			URL:     card.URL,
		})
	}
	c.logger.Debug("[cian] browser strategy extracted %d offers", len(result))
	return result, nil
}

// extractCardsJS pulls price, area, rooms and address out of the serp
// cards. Titles look like "2-комн. кв., 54,3 м², 12/16 этаж", area and
// rooms come from there when the card has no dedicated elements.
const extractCardsJS = `
	(function() {
		var results = [];

		var cards = document.querySelectorAll('article[data-name="CardComponent"]');
		if (cards.length === 0) {
			cards = document.querySelectorAll('div[data-testid="offer-card"]');
		}

		for (var i = 0; i < cards.length; i++) {
			var card = cards[i];

			var linkEl = card.querySelector('a[href*="/flat/"]') ||
			             card.querySelector('a[href*="/sale/"]');
			var url = linkEl ? linkEl.href : '';

			var priceEl = card.querySelector('span[data-mark="MainPrice"]') ||
			              card.querySelector('[data-testid="offer-price"]');
			var price = priceEl ? priceEl.innerText.trim() : '';

			var title = '';
			var titleEl = card.querySelector('span[data-mark="OfferTitle"]') ||
			              card.querySelector('span[data-mark="OfferSubtitle"]');
			if (titleEl) title = titleEl.innerText.trim();

			var area = '';
			var areaMatch = title.match(/([\d\s.,]+)\s*м²/);
			if (areaMatch) area = areaMatch[1].trim() + ' м²';

			var rooms = '';
			if (/студия/i.test(title)) {
				rooms = 'студия';
			} else {
				var roomsMatch = title.match(/(\d+)-комн/);
				if (roomsMatch) rooms = roomsMatch[1];
			}

			var address = '';
			var geoLabels = card.querySelectorAll('a[data-name="GeoLabel"]');
			if (geoLabels.length > 0) {
				var parts = [];
				for (var g = 0; g < geoLabels.length; g++) {
					parts.push(geoLabels[g].innerText.trim());
				}
				address = parts.join(', ');
			} else {
				var addrEl = card.querySelector('[data-name="AddressContainer"]') ||
				             card.querySelector('[data-testid="address"]');
				if (addrEl) address = addrEl.innerText.trim();
			}

			if (!url && !price) continue;
			results.push({price: price, area: area, rooms: rooms, address: address, url: url});
		}

		return results;
	})()
`

// findChromeBinary locates a Chrome/Chromium binary for the fallback
// strategy.
func (c *Client) findChromeBinary() string {
	if c.cfg.ChromeBin != "" {
		return c.cfg.ChromeBin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
