package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"antifake/internal/domain"
)

// agePattern matches "через N дней/недель/месяцев" style durability
// complaints ("after N days/weeks/months").
var agePattern = regexp.MustCompile(`(?i)через\s+(\d+)\s*(дн[а-яё]*|недел[а-яё]*|мес[а-яё]*)`)

const (
	maxComplaints      = 3
	complaintFragRunes = 120
)

// AgeComplaints scans low-rated reviews (missing rating counts as 0) in
// input order for time-to-failure phrases and returns up to three excerpts:
// the matched phrase plus a quoted snippet of the review. A bounded,
// best-effort placeholder, not summarization.
func AgeComplaints(reviews []domain.Review) []string {
	var out []string
	for _, r := range reviews {
		rating := 0
		if r.Rating != nil {
			rating = *r.Rating
		}
		if rating > 2 {
			continue
		}
		if m := agePattern.FindString(r.Text); m != "" {
			frag := strings.ReplaceAll(strings.TrimSpace(r.Text), "\n", " ")
			if runes := []rune(frag); len(runes) > complaintFragRunes {
				out = append(out, fmt.Sprintf("%s — «%s…»", m, string(runes[:complaintFragRunes])))
			} else {
				out = append(out, fmt.Sprintf("%s — «%s»", m, frag))
			}
		}
		if len(out) >= maxComplaints {
			break
		}
	}
	return out
}
