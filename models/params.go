package models

import (
	"fmt"
	"strings"
)

// DealType selects the market segment of a search.
type DealType string

const (
	DealSecondary DealType = "secondary"
	DealNewbuild  DealType = "newbuild"
)

// ParseDealType maps a form value onto a DealType. The empty string
// falls back to the secondary market, anything else unknown is an error.
func ParseDealType(s string) (DealType, error) {
	switch s {
	case "", string(DealSecondary):
		return DealSecondary, nil
	case string(DealNewbuild):
		return DealNewbuild, nil
	}
	return "", fmt.Errorf("unknown deal type %q", s)
}

// Room is one room-count option of the search filter.
type Room string

const (
	RoomStudio Room = "studio"
	Room1      Room = "1"
	Room2      Room = "2"
	Room3      Room = "3"
	Room4Plus  Room = "4+"
)

// ParseRoom maps a form value onto a Room option.
func ParseRoom(s string) (Room, error) {
	switch Room(s) {
	case RoomStudio, Room1, Room2, Room3, Room4Plus:
		return Room(s), nil
	}
	return "", fmt.Errorf("unknown room option %q", s)
}

// DefaultRooms is the preselected room filter: one to three rooms.
func DefaultRooms() []Room {
	return []Room{Room1, Room2, Room3}
}

// Radius limits in kilometers. The form slider moves inside the same
// range, these bounds also reject hand-crafted requests.
const (
	MinRadiusKm = 0.5
	MaxRadiusKm = 5.0
)

// SearchParams is one user-triggered search. It is built once per
// request and passed by value through the whole pipeline.
type SearchParams struct {
	Address  string
	RadiusKm float64
	DealType DealType
	Rooms    []Room
}

// Validate checks the params a request handed in. The UI constrains all
// of these already, so a failure here means a malformed request, not a
// user mistake.
func (p SearchParams) Validate() error {
	if strings.TrimSpace(p.Address) == "" {
		return fmt.Errorf("address must not be empty")
	}
	if p.RadiusKm < MinRadiusKm || p.RadiusKm > MaxRadiusKm {
		return fmt.Errorf("radius %.2f km is outside %.1f..%.1f", p.RadiusKm, MinRadiusKm, MaxRadiusKm)
	}
	if _, err := ParseDealType(string(p.DealType)); err != nil {
		return err
	}
	if len(p.Rooms) == 0 {
		return fmt.Errorf("at least one room option is required")
	}
	for _, r := range p.Rooms {
		if _, err := ParseRoom(string(r)); err != nil {
			return err
		}
	}
	return nil
}
