package domain

import "time"

// Click is one recorded visit to a short link. Clicks are never updated.
type Click struct {
	ID        int64     `json:"id" db:"id"`
	URLID     int64     `json:"url_id" db:"url_id"`
	City      string    `json:"city" db:"city"`
	Country   string    `json:"country" db:"country"`
	Device    string    `json:"device" db:"device"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Device classes stored on a click.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// UnknownPlace is stored when a visitor could not be geolocated.
const UnknownPlace = "Unknown"

// Location is the result of a geolocation lookup.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country_name"`
}

// Stats aggregates clicks for display.
type Stats struct {
	TotalClicks int            `json:"total_clicks"`
	ByCity      map[string]int `json:"by_city"`
	ByCountry   map[string]int `json:"by_country"`
	ByDevice    map[string]int `json:"by_device"`
}
