package models

// RawListing holds one offer exactly as a fetch strategy saw it.
// Price and Area stay raw text ("5 500 000 ₽", "54,3 м²") until the
// analyzer parses them. Lat/Lon are zero when the strategy had no
// coordinates for the offer.
type RawListing struct {
	Price   string
	Area    string
	Rooms   string
	Address string
	URL     string
	Lat     float64
	Lon     float64
}

// Listing is a normalized offer with parsed price and area and the
// derived price per square meter. Rooms, Address and URL are carried
// through untouched for the result table.
type Listing struct {
	Price        float64
	Area         float64
	PricePerArea float64
	Rooms        string
	Address      string
	URL          string
}
