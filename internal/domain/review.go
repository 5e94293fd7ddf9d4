package domain

import "time"

// Review is one marketplace review as extracted from a feedback payload.
// Rating and Created are nil when the upstream record lacks them or they
// fail to parse.
type Review struct {
	Rating  *int       `json:"rating"`
	Text    string     `json:"text"`
	Created *time.Time `json:"created"`
}
