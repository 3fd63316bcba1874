package fortnite

import "time"

// Response shapes for the fortnite-api.com v2 feeds. Optional fields
// (description, images, added date) may be absent and default to
// empty.

type cosmeticsResponse struct {
	Status int            `json:"status"`
	Data   []CosmeticData `json:"data"`
}

type CosmeticData struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        DisplayValue   `json:"type"`
	Rarity      DisplayValue   `json:"rarity"`
	Images      CosmeticImages `json:"images"`
	Added       *time.Time     `json:"added"`
}

type DisplayValue struct {
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
}

// Display prefers the human-readable form when the feed provides one.
func (d DisplayValue) Display() string {
	if d.DisplayValue != "" {
		return d.DisplayValue
	}
	return d.Value
}

type CosmeticImages struct {
	Icon     string `json:"icon"`
	Featured string `json:"featured"`
}

// URL picks the best available image reference, possibly empty.
func (i CosmeticImages) URL() string {
	if i.Icon != "" {
		return i.Icon
	}
	return i.Featured
}

type shopResponse struct {
	Status int      `json:"status"`
	Data   ShopData `json:"data"`
}

type ShopData struct {
	Date    time.Time   `json:"date"`
	Hash    string      `json:"hash"`
	Entries []ShopEntry `json:"entries"`
}

// ShopEntry may bundle several items at one shared final price.
type ShopEntry struct {
	RegularPrice int64          `json:"regularPrice"`
	FinalPrice   int64          `json:"finalPrice"`
	BrItems      []CosmeticData `json:"brItems"`
}
