package domain

// RawRecommendation is one entry emitted by the recommendation engine.
// Engine order is the ranking; it is never re-sorted.
type RawRecommendation struct {
	ArtistID int64   `json:"artistID"`
	Score    float64 `json:"score"`
}

// EnrichedRecommendation carries artist details when the catalogue has a
// matching row, nil otherwise.
type EnrichedRecommendation struct {
	ArtistID int64   `json:"artistID"`
	Score    float64 `json:"score"`
	Artist   *Artist `json:"artistDetails"`
}

const DefaultRecommendationCount = 10
