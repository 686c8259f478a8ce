package domain

import "math"

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// DefaultMapCenter is where the map sits before anything is selected or located.
var DefaultMapCenter = Coordinates{Latitude: 51.505, Longitude: -0.09}

const DefaultMapZoom = 13
