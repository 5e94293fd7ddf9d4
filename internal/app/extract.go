package app

import (
	"strconv"
	"strings"
	"time"

	"antifake/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Upstream feedback payloads come in several shapes; these are the known
// spellings, most common first.
var (
	feedbackListPaths = []string{"feedbacks", "data.feedbacks", "feedbacksWithText", "data.feedbacksWithText"}
	ratingPaths       = []string{"productValuation", "valuation", "rating", "stars"}
	textPartKeys      = []string{"text", "review", "comment", "pros", "cons"}
	createdPaths      = []string{"createdDate", "created", "date"}

	cardRatingPaths   = []string{"rating", "reviewRating"}
	cardFeedbackPaths = []string{"feedbacks", "nmFeedbacks"}
)

// maxExtractedReviews bounds extraction on pathological payloads.
const maxExtractedReviews = 4000

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstFloat: number from several paths (float64/int/string like "4,0");
// zero values are treated as absent, matching upstream's habit of sending
// 0 for "no rating".
func firstFloat(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			if v == 0 {
				continue
			}
			f := v
			return &f
		case int:
			if v == 0 {
				continue
			}
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func firstInt64(m map[string]any, paths ...string) *int64 {
	if f := firstFloat(m, paths...); f != nil {
		n := int64(*f)
		return &n
	}
	return nil
}

func asInt64(v any) *int64 {
	switch t := v.(type) {
	case float64:
		n := int64(t)
		return &n
	case int:
		n := int64(t)
		return &n
	case int64:
		n := t
		return &n
	}
	return nil
}

/********** review extraction **********/

// ExtractReviews normalizes a raw feedback payload into review records.
// Records without usable text are discarded; ratings and timestamps that
// fail to parse become absent rather than errors.
func ExtractReviews(payload map[string]any) []domain.Review {
	var items []any
	for _, p := range feedbackListPaths {
		if s, ok := lookupAny(payload, p).([]any); ok {
			items = s
			break
		}
	}
	if len(items) > maxExtractedReviews {
		items = items[:maxExtractedReviews]
	}

	out := make([]domain.Review, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}

		var rating *int
		if f := firstFloat(m, ratingPaths...); f != nil {
			n := int(*f)
			rating = &n
		}

		var parts []string
		for _, k := range textPartKeys {
			if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		text := strings.TrimSpace(strings.Join(parts, "\n"))
		if text == "" {
			continue
		}

		var created *time.Time
		for _, p := range createdPaths {
			if s, ok := lookupAny(m, p).(string); ok {
				if created = parseCreated(s); created != nil {
					break
				}
			}
		}

		out = append(out, domain.Review{Rating: rating, Text: text, Created: created})
	}
	return out
}

var createdLayouts = []string{
	"2006-01-02T15:04:05Z07:00", // RFC 3339
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseCreated(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	// unknown fractional-second or zone suffix: the date+time prefix is enough
	if len(s) >= 19 {
		if t, err := time.Parse("2006-01-02T15:04:05", s[:19]); err == nil {
			return &t
		}
	}
	return nil
}

/********** card probes **********/

// ParsePrice extracts the basic and product price (minor units) from a card
// payload's sizes block.
func ParsePrice(product map[string]any) (basicU, productU *int64) {
	sizes, _ := product["sizes"].([]any)
	for _, s := range sizes {
		size, ok := s.(map[string]any)
		if !ok {
			continue
		}
		price, ok := size["price"].(map[string]any)
		if !ok {
			continue
		}
		b := asInt64(price["basic"])
		p := asInt64(price["product"])
		if b != nil && p != nil {
			return b, p
		}
	}
	return nil, nil
}

// TotalStock sums the stock quantities of a card payload, preferring the
// top-level totalQuantity when present.
func TotalStock(product map[string]any) *int {
	if tq := asInt64(product["totalQuantity"]); tq != nil {
		n := int(*tq)
		return &n
	}
	total, found := 0, false
	sizes, _ := product["sizes"].([]any)
	for _, s := range sizes {
		size, ok := s.(map[string]any)
		if !ok {
			continue
		}
		stocks, _ := size["stocks"].([]any)
		for _, st := range stocks {
			stock, ok := st.(map[string]any)
			if !ok {
				continue
			}
			if qty := asInt64(stock["qty"]); qty != nil {
				total += int(*qty)
				found = true
			}
		}
	}
	if !found {
		return nil
	}
	return &total
}
