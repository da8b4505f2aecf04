package models

import "encoding/json"

// HotelResult is one searchable property in the canonical model. It is built
// fresh on every search and owned by the caller; nothing in the engine keeps
// a reference to it afterwards.
type HotelResult struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Address   string      `json:"address,omitempty"`
	City      string      `json:"city,omitempty"`
	Stars     float64     `json:"stars,omitempty"`
	Amenities []string    `json:"amenities,omitempty"`
	Images    []string    `json:"images,omitempty"`
	Rooms     []RoomOffer `json:"rooms"`
}

// RoomOffer is one bookable rate for one room type. Code is the only key the
// supplier accepts later to identify this exact offer; it is always non-empty
// (the normalizer synthesizes one when the supplier omits it).
type RoomOffer struct {
	Code         string  `json:"code"`
	Name         string  `json:"name,omitempty"`
	MaxAdults    int     `json:"maxAdults"`
	MaxChildren  int     `json:"maxChildren"`
	Board        string  `json:"board"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	CancelPolicy string  `json:"cancelPolicy,omitempty"`
	// Raw keeps the supplier's original room payload so the pre-book and
	// book requests can replay it verbatim.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// SearchCriteria is the inbound search request passed through to the supplier.
type SearchCriteria struct {
	Destination string `json:"destination" binding:"required"`
	CheckIn     string `json:"checkIn" binding:"required"`
	CheckOut    string `json:"checkOut" binding:"required"`
	Adults      int    `json:"adults"`
	Children    int    `json:"children"`
	Rooms       int    `json:"rooms"`
	Currency    string `json:"currency,omitempty"`
}
