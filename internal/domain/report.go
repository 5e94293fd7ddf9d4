package domain

import "time"

// TrustAssessment is the scorer's verdict over one review corpus.
type TrustAssessment struct {
	Score     int                `json:"score"` // 0..100
	Reasons   []string           `json:"reasons"`
	Signals   map[string]float64 `json:"signals"`
	Penalties map[string]int     `json:"penalties"`
}

// DropStats counts filtered reviews by the reason they were dropped.
// Each review index is counted under at most one reason.
type DropStats map[string]int

// CleanRating is the average rating recomputed over surviving reviews.
// Avg is nil when no surviving review carries a rating.
type CleanRating struct {
	Count int      `json:"count"`
	Avg   *float64 `json:"avg"`
}

type PricePoint struct {
	TS       time.Time `json:"ts"`
	BasicU   *int64    `json:"basic_u"`
	ProductU *int64    `json:"product_u"`
}

// Report is the full analysis result for one product, as served by the API
// and rendered for humans.
type Report struct {
	Article       int64              `json:"article"`
	RootID        int64              `json:"root_id"`
	Name          string             `json:"name,omitempty"`
	Brand         string             `json:"brand,omitempty"`
	MarketRating  *float64           `json:"market_rating,omitempty"`
	FeedbackCount *int64             `json:"feedback_count,omitempty"`
	ReviewCount   int                `json:"review_count"`
	Trust         TrustAssessment    `json:"trust"`
	Clean         CleanRating        `json:"clean_rating"`
	DropStats     DropStats          `json:"drop_stats"`
	AgeComplaints []string           `json:"age_complaints,omitempty"`
	PriceBasicU   *int64             `json:"price_basic_u,omitempty"`
	PriceProductU *int64             `json:"price_product_u,omitempty"`
	PriceHistory  []PricePoint       `json:"price_history,omitempty"`
}
