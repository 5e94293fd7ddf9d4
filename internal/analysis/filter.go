package analysis

import (
	"math"

	"antifake/internal/domain"
)

// DropDecision marks review indices excluded from the clean rating, with a
// per-reason count. Every index is counted under exactly one reason: the
// first pass that drops it.
type DropDecision struct {
	Dropped map[int]struct{}
	Counts  domain.DropStats
}

func (d DropDecision) IsDropped(i int) bool {
	_, ok := d.Dropped[i]
	return ok
}

// mark drops index i under reason, unless an earlier pass already did.
func (d DropDecision) mark(i int, reason string) {
	if _, ok := d.Dropped[i]; ok {
		return
	}
	d.Dropped[i] = struct{}{}
	d.Counts[reason]++
}

// DetectSuspicious runs the filter passes in a fixed order: too-short,
// sentiment mismatch, exact-duplicate collapse, near-duplicate cluster
// collapse. The near pass only sees the bounded similarity sample and only
// touches clusters of size >= minClusterSize; pairs are left alone.
func DetectSuspicious(reviews []domain.Review) DropDecision {
	drop := DropDecision{
		Dropped: make(map[int]struct{}),
		Counts: domain.DropStats{
			"exact_duplicate": 0,
			"near_duplicate":  0,
			"too_short":       0,
			"mismatch":        0,
		},
	}

	for i, r := range reviews {
		toks := Tokenize(r.Text)
		if len(toks) <= shortTokenLimit {
			drop.mark(i, "too_short")
			continue
		}
		if r.Rating != nil && ratingContradictsText(*r.Rating, toks) {
			drop.mark(i, "mismatch")
		}
	}

	for _, idxs := range exactGroups(reviews) {
		if len(idxs) < 2 {
			continue
		}
		collapseGroup(drop, idxs, "exact_duplicate")
	}

	for _, cluster := range nearClusters(similaritySample(reviews)) {
		if len(cluster) < minClusterSize {
			continue
		}
		collapseGroup(drop, cluster, "near_duplicate")
	}

	return drop
}

// collapseGroup keeps the earliest not-yet-dropped index of the group and
// drops every other member.
func collapseGroup(d DropDecision, idxs []int, reason string) {
	kept := -1
	for _, i := range idxs {
		if !d.IsDropped(i) {
			kept = i
			break
		}
	}
	for _, i := range idxs {
		if i != kept {
			d.mark(i, reason)
		}
	}
}

// CleanAverage averages the rating over reviews that survived the filter
// and carry a rating, rounded to two decimals. Avg stays nil when nothing
// survives.
func CleanAverage(reviews []domain.Review, drop DropDecision) domain.CleanRating {
	sum, count := 0, 0
	for i, r := range reviews {
		if r.Rating == nil || drop.IsDropped(i) {
			continue
		}
		sum += *r.Rating
		count++
	}
	if count == 0 {
		return domain.CleanRating{}
	}
	avg := math.Round(float64(sum)/float64(count)*100) / 100
	return domain.CleanRating{Count: count, Avg: &avg}
}
