package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "vendordesk/internal/errors"
)

type shippingAddress struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
}

// ParseShippingAddress extracts coordinates from the JSON text the backend
// stores in an order's shipping_address. Missing addresses yield (nil, nil);
// anything that is not an object with two usable coordinates yields a
// ParseError and no coordinates.
func ParseShippingAddress(raw *string) (*Coordinates, error) {
	if raw == nil {
		return nil, nil
	}
	text := strings.TrimSpace(*raw)
	if text == "" || text == "null" {
		return nil, nil
	}

	var addr shippingAddress
	if err := json.Unmarshal([]byte(text), &addr); err != nil {
		return nil, apperrors.NewParseError("shipping_address", err)
	}

	lat, err := coordinate(addr.Latitude)
	if err != nil {
		return nil, apperrors.NewParseError("shipping_address.latitude", err)
	}
	lng, err := coordinate(addr.Longitude)
	if err != nil {
		return nil, apperrors.NewParseError("shipping_address.longitude", err)
	}

	coords := Coordinates{Latitude: lat, Longitude: lng}
	if !coords.Valid() {
		return nil, apperrors.NewParseError("shipping_address", fmt.Errorf("coordinates out of range: %v,%v", lat, lng))
	}
	return &coords, nil
}

// coordinate accepts a JSON number or a string holding one.
func coordinate(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("missing")
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}
