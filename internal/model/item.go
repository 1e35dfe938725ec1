package model

import "time"

// Item is a found object posted by a finder.
type Item struct {
	ID           string    `json:"id"`
	FinderID     string    `json:"finder_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ImageRef     string    `json:"image_ref,omitempty"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// HandshakeToken is only ever shown to the finder, via the QR code.
	HandshakeToken string `json:"-"`
	QRRef          string `json:"-"`
}

// Item statuses.
const (
	ItemStatusFound    = "found"
	ItemStatusClaimed  = "claimed"
	ItemStatusReturned = "returned"
)

// Item categories.
const (
	CategoryElectronics = "electronics"
	CategoryClothing    = "clothing"
	CategoryDocuments   = "documents"
	CategoryKeys        = "keys"
	CategoryBags        = "bags"
	CategoryPets        = "pets"
	CategoryJewelry     = "jewelry"
	CategoryOther       = "other"
)

// Categories lists every accepted category in display order.
var Categories = []string{
	CategoryElectronics,
	CategoryClothing,
	CategoryDocuments,
	CategoryKeys,
	CategoryBags,
	CategoryPets,
	CategoryJewelry,
	CategoryOther,
}

// DefaultCity is used when a finder leaves the city empty.
const DefaultCity = "Unknown"

// Field limits.
const (
	MaxTitleLength    = 120
	MaxLocationLength = 100
)

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ItemStatusAdvances reports whether an item may move from one status to
// another. Status only moves forward: found -> claimed -> returned.
func ItemStatusAdvances(from, to string) bool {
	switch from {
	case ItemStatusFound:
		return to == ItemStatusClaimed
	case ItemStatusClaimed:
		return to == ItemStatusReturned
	default:
		return false
	}
}
