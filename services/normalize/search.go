package normalize

import (
	"encoding/json"
	"fmt"

	"stayhub/models"
)

// Documented defaults for optional room fields.
const (
	DefaultAdults   = 2
	DefaultBoard    = "room-only"
	DefaultCurrency = "USD"
)

var hotelIDKeys = []string{"hotelId", "hotel_id", "hotelCode", "propertyId", "id"}
var roomIDKeys = []string{"roomId", "room_id", "rateId", "id"}

// NormalizeSearch converts a raw supplier search payload into canonical
// HotelResults. Records may arrive flat (one record per room, hotel fields
// repeated) or nested (hotel records carrying a rooms array); either way
// records are grouped and deduplicated by hotel identity and every room ends
// up under its hotel. Room prices fall back to hotel-level pricing when the
// room-level price is absent or zero.
func NormalizeSearch(raw []byte) ([]models.HotelResult, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &NormalizeError{Stage: "search", Err: err}
	}

	records := searchRecords(payload)

	var order []int64
	byID := make(map[int64]*models.HotelResult)

	for _, rec := range records {
		m, ok := asMap(rec)
		if !ok {
			continue
		}
		hotelID, ok := firstID(m, hotelIDKeys...)
		if !ok {
			continue
		}

		hotel, seen := byID[hotelID]
		if !seen {
			hotel = &models.HotelResult{
				ID:        hotelID,
				Name:      firstString(m, "hotelName", "hotel_name", "name"),
				Address:   firstString(m, "address", "hotelAddress"),
				City:      firstString(m, "city", "cityName", "location"),
				Stars:     firstNumber(m, "stars", "starRating", "category"),
				Amenities: stringList(m, "amenities", "facilities"),
				Images:    stringList(m, "images", "imageUrls", "photos"),
			}
			byID[hotelID] = hotel
			order = append(order, hotelID)
		} else {
			// Later records may fill fields the first one lacked.
			if hotel.Name == "" {
				hotel.Name = firstString(m, "hotelName", "hotel_name", "name")
			}
			if hotel.Stars == 0 {
				hotel.Stars = firstNumber(m, "stars", "starRating", "category")
			}
		}

		if rooms, ok := asSlice(m["rooms"]); ok {
			for _, r := range rooms {
				rm, ok := asMap(r)
				if !ok {
					continue
				}
				hotel.Rooms = append(hotel.Rooms, buildRoom(rm, m, hotelID, len(hotel.Rooms)))
			}
		} else {
			// Flat record: the record itself is the room.
			hotel.Rooms = append(hotel.Rooms, buildRoom(m, m, hotelID, len(hotel.Rooms)))
		}
	}

	results := make([]models.HotelResult, 0, len(order))
	for _, id := range order {
		results = append(results, *byID[id])
	}
	return results, nil
}

// buildRoom assembles one canonical RoomOffer from a room record, falling
// back to hotel-level fields where the room record is silent.
func buildRoom(room, hotel map[string]any, hotelID int64, position int) models.RoomOffer {
	code := firstString(room, "code", "roomCode", "rateKey", "offerId")
	if code == "" {
		code = synthesizeCode(hotelID, firstString(room, roomIDKeys...), position)
	}

	price := firstNumber(room, "price", "amount", "totalPrice", "rate")
	if price == 0 {
		price = firstNumber(hotel, "price", "minPrice", "amount", "totalPrice")
	}

	currency := firstString(room, "currency", "currencyCode")
	if currency == "" {
		currency = firstString(hotel, "currency", "currencyCode")
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	adults := firstInt(room, "maxAdults", "adults", "occupancy")
	if adults == 0 {
		adults = DefaultAdults
	}

	board := firstString(room, "board", "boardCode", "mealPlan")
	if board == "" {
		board = DefaultBoard
	}

	rawRoom, _ := json.Marshal(room)
	return models.RoomOffer{
		Code:         code,
		Name:         firstString(room, "roomName", "room_name", "roomType", "name"),
		MaxAdults:    adults,
		MaxChildren:  firstInt(room, "maxChildren", "children"),
		Board:        board,
		Price:        price,
		Currency:     currency,
		CancelPolicy: firstString(room, "cancellationPolicy", "cancelPolicy", "refundability"),
		Raw:          rawRoom,
	}
}

// synthesizeCode builds a deterministic placeholder code for offers the
// supplier shipped without one. Hotel id plus per-hotel position keeps it
// unique within a result set.
func synthesizeCode(hotelID int64, roomID string, position int) string {
	if roomID == "" {
		roomID = "room"
	}
	return fmt.Sprintf("SYN-%d-%s-%d", hotelID, roomID, position)
}

// searchRecords locates the list of hotel/room records inside the payload,
// probing the known container keys before assuming a bare top-level array.
func searchRecords(payload any) []any {
	if arr, ok := asSlice(payload); ok {
		return arr
	}
	m, ok := asMap(payload)
	if !ok {
		return nil
	}
	for _, key := range []string{"hotels", "results", "data", "items"} {
		if arr, ok := asSlice(m[key]); ok {
			return arr
		}
		if inner, ok := asMap(m[key]); ok {
			for _, innerKey := range []string{"hotels", "results", "items"} {
				if arr, ok := asSlice(inner[innerKey]); ok {
					return arr
				}
			}
		}
	}
	return nil
}
