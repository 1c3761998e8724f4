package cian

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"cian-radar/config"
	"cian-radar/geo"
	"cian-radar/models"
	"cian-radar/utils"
)

func testLogger() *utils.Logger { return utils.NewLogger(utils.LevelError) }

func testConfig(cianURL string) *config.Config {
	return &config.Config{
		CianURL:      cianURL,
		FetchTimeout: 5 * time.Second,
		MaxRetries:   1,
	}
}

func testParams() models.SearchParams {
	return models.SearchParams{
		Address:  "Казань, Касаткина 3",
		RadiusKm: 1.0,
		DealType: models.DealSecondary,
		Rooms:    models.DefaultRooms(),
	}
}

type stubResolver struct {
	point geo.Point
	err   error
}

func (s stubResolver) Resolve(ctx context.Context, address string) (geo.Point, error) {
	return s.point, s.err
}

// kazan is the center the fixture offers are placed around.
var kazan = geo.Point{Lat: 55.7887, Lon: 49.1221}

func TestSearchExtractsOffers(t *testing.T) {
	page, err := os.ReadFile("testdata/serp.html")
	if err != nil {
		t.Fatal(err)
	}

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write(page)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), stubResolver{point: kazan}, testLogger())

	raw, err := client.Search(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Search returned %v", err)
	}

	// Five offers on the page: one duplicate URL and one outside the
	// radius are dropped.
	if len(raw) != 3 {
		t.Fatalf("got %d offers, want 3", len(raw))
	}

	first := raw[0]
	if first.Price != "5500000 ₽" {
		t.Errorf("price = %q", first.Price)
	}
	if first.Area != "54.3" {
		t.Errorf("area = %q", first.Area)
	}
	if first.Rooms != "2" {
		t.Errorf("rooms = %q", first.Rooms)
	}
	if first.URL != "https://www.cian.ru/sale/flat/1001/" {
		t.Errorf("url = %q", first.URL)
	}
	if !strings.Contains(first.Address, "Касаткина") {
		t.Errorf("address = %q", first.Address)
	}

	studio := raw[2]
	if studio.Rooms != "студия" {
		t.Errorf("studio rooms label = %q", studio.Rooms)
	}
	if studio.Lat != 0 || studio.Lon != 0 {
		t.Errorf("offer without coordinates got %v, %v", studio.Lat, studio.Lon)
	}

	if !strings.Contains(gotQuery, "deal_type=sale") {
		t.Errorf("search query %q missing deal_type", gotQuery)
	}
	if !strings.Contains(gotQuery, "in_polygon") {
		t.Errorf("search query %q missing polygon", gotQuery)
	}
}

func TestSearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><script>window._cianConfig = {"offersSerialized":[],"totalOffers":0};</script></body></html>`)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), stubResolver{point: kazan}, testLogger())

	raw, err := client.Search(context.Background(), testParams())
	if err != nil {
		t.Fatalf("Search returned %v", err)
	}
	if len(raw) != 0 {
		t.Errorf("got %d offers from an empty result page", len(raw))
	}
}

func TestSearchResolveFailure(t *testing.T) {
	client := New(testConfig("https://www.cian.ru"), stubResolver{err: geo.ErrNotFound}, testLogger())

	_, err := client.Search(context.Background(), testParams())
	if !errors.Is(err, geo.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound in the chain", err)
	}
}
