// Package dto defines data transfer objects for the catalog HTTP API.
package dto

// CardItem represents a catalog record in the API response.
type CardItem struct {
	Name        string  `json:"name"`
	Series      string  `json:"series"`
	BasePrice   float64 `json:"base_price"`
	RarityScore int     `json:"rarity_score"`
}

// RefreshResponse reports the size of the snapshot that was swapped in.
type RefreshResponse struct {
	Cards int `json:"cards"`
}
