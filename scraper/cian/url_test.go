package cian

import (
	"net/url"
	"strings"
	"testing"

	"cian-radar/geo"
	"cian-radar/models"
)

func TestBuildSearchURL(t *testing.T) {
	box := geo.BoundingBox{MinLat: 55.77, MinLon: 49.09, MaxLat: 55.81, MaxLon: 49.15}
	params := models.SearchParams{
		DealType: models.DealSecondary,
		Rooms:    []models.Room{models.Room1, models.Room2},
	}

	raw := BuildSearchURL("https://www.cian.ru", params, box)

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("BuildSearchURL produced an unparseable URL: %v", err)
	}
	if u.Path != "/cat.php" {
		t.Errorf("path = %q, want /cat.php", u.Path)
	}

	q := u.Query()
	if q.Get("deal_type") != "sale" {
		t.Errorf("deal_type = %q, want sale", q.Get("deal_type"))
	}
	if q.Get("offer_type") != "flat" {
		t.Errorf("offer_type = %q, want flat", q.Get("offer_type"))
	}
	if q.Get("object_type[0]") != "1" {
		t.Errorf("object_type[0] = %q, want 1 for the secondary market", q.Get("object_type[0]"))
	}
	if q.Get("room1") != "1" || q.Get("room2") != "1" {
		t.Error("requested room flags missing")
	}
	if q.Get("room3") != "" {
		t.Error("room3 flag set without being requested")
	}
}

func TestBuildSearchURLNewbuild(t *testing.T) {
	box := geo.BoundsAround(geo.Point{Lat: 55.7887, Lon: 49.1221}, 1.0)
	params := models.SearchParams{DealType: models.DealNewbuild, Rooms: models.DefaultRooms()}

	raw := BuildSearchURL("https://www.cian.ru", params, box)

	q, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got := q.Query().Get("object_type[0]"); got != "2" {
		t.Errorf("object_type[0] = %q, want 2 for new construction", got)
	}
}

func TestBuildSearchURLPolygon(t *testing.T) {
	box := geo.BoundingBox{MinLat: 55.77, MinLon: 49.09, MaxLat: 55.81, MaxLon: 49.15}
	raw := BuildSearchURL("https://www.cian.ru", models.SearchParams{Rooms: models.DefaultRooms()}, box)

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}

	polygon := u.Query().Get("in_polygon[0]")
	pairs := strings.Split(polygon, ",")
	if len(pairs) != 5 {
		t.Fatalf("polygon has %d points, want a closed ring of 5", len(pairs))
	}
	if pairs[0] != pairs[4] {
		t.Errorf("ring not closed: %q vs %q", pairs[0], pairs[4])
	}
	if pairs[0] != "49.090000_55.770000" {
		t.Errorf("first pair = %q, want lon_lat order", pairs[0])
	}
}

func TestRoomKeys(t *testing.T) {
	tests := []struct {
		room models.Room
		want []string
	}{
		{models.RoomStudio, []string{"room9"}},
		{models.Room1, []string{"room1"}},
		{models.Room4Plus, []string{"room4", "room5", "room6"}},
	}

	for _, tt := range tests {
		got := roomKeys(tt.room)
		if len(got) != len(tt.want) {
			t.Errorf("roomKeys(%q) = %v, want %v", tt.room, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("roomKeys(%q)[%d] = %q, want %q", tt.room, i, got[i], tt.want[i])
			}
		}
	}
}
