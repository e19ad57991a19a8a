package config

import (
	"github.com/kelvins/geocoder"

	"github.com/i474232898/runbuddy/internal/weather"
)

// geocode is swapped out in tests.
var geocode = func(apiKey, city, country string) (weather.Coordinates, error) {
	geocoder.ApiKey = apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	if err != nil {
		return weather.Coordinates{}, err
	}
	return weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}
