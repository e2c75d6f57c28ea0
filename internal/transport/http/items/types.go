package items

import "time"

// ItemPayload is the request body for create and update. Validation happens
// in the domain layer so the rules live in one place.
type ItemPayload struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// ItemView documents the JSON shape of a catalog item in responses.
type ItemView struct {
	ItemID    string    `json:"itemId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
