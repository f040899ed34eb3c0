// Package dto defines data transfer objects for the appraisal HTTP API.
package dto

// CardItem is the identified catalog record.
type CardItem struct {
	Name        string  `json:"name"`
	Series      string  `json:"series"`
	BasePrice   float64 `json:"base_price"`
	RarityScore int     `json:"rarity_score"`
}

// AppraisalResponse is the result of POST /v1/appraisals.
// Card and the pricing fields are present only when status is "priced".
type AppraisalResponse struct {
	Status         string    `json:"status"`
	Strategy       string    `json:"strategy"`
	Condition      string    `json:"condition"`
	CandidateID    string    `json:"candidate_id,omitempty"`
	Score          int       `json:"score"`
	Threshold      int       `json:"threshold,omitempty"`
	Card           *CardItem `json:"card,omitempty"`
	Multiplier     *float64  `json:"multiplier,omitempty"`
	Method         string    `json:"method,omitempty"`
	EstimatedPrice *float64  `json:"estimated_price,omitempty"`
}
