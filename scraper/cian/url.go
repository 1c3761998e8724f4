package cian

import (
	"fmt"
	"net/url"
	"strings"

	"cian-radar/geo"
	"cian-radar/models"
)

// BuildSearchURL assembles a cat.php search URL for sale flats inside
// the given box. CIAN takes the area as in_polygon, a closed ring of
// lon_lat pairs, and room counts as individual roomN flags.
func BuildSearchURL(base string, params models.SearchParams, box geo.BoundingBox) string {
	q := url.Values{}
	q.Set("deal_type", "sale")
	q.Set("engine_version", "2")
	q.Set("offer_type", "flat")

	switch params.DealType {
	case models.DealNewbuild:
		q.Set("object_type[0]", "2")
	default:
		q.Set("object_type[0]", "1")
	}

	for _, r := range params.Rooms {
		for _, key := range roomKeys(r) {
			q.Set(key, "1")
		}
	}

	q.Set("in_polygon[0]", polygonValue(box))

	return strings.TrimRight(base, "/") + "/cat.php?" + q.Encode()
}

// roomKeys maps a room option onto CIAN's filter flags. room9 is the
// studio flag, the 4+ option spans the four-, five- and six-plus-room
// flags.
func roomKeys(r models.Room) []string {
	switch r {
	case models.RoomStudio:
		return []string{"room9"}
	case models.Room1:
		return []string{"room1"}
	case models.Room2:
		return []string{"room2"}
	case models.Room3:
		return []string{"room3"}
	case models.Room4Plus:
		return []string{"room4", "room5", "room6"}
	}
	return nil
}

func polygonValue(box geo.BoundingBox) string {
	ring := box.Polygon()
	pairs := make([]string, len(ring))
	for i, p := range ring {
		pairs[i] = fmt.Sprintf("%.6f_%.6f", p.Lon, p.Lat)
	}
	return strings.Join(pairs, ",")
}
