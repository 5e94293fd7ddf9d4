package analysis

import "antifake/internal/domain"

// Reason strings, appended in check order.
const (
	reasonNoReviews  = "no reviews to evaluate"
	reasonDuplicates = "many templated/similar reviews"
	reasonTimeSpike  = "noticeable single-day review spike"
	reasonMismatch   = "rating/text sentiment mismatch present"
	reasonTooShort   = "many very short, detail-free reviews"
	reasonNoFlags    = "no obvious red flags under these heuristics"
)

// Score computes the 0..100 trust score over the full review list with
// capped penalties per factor. An empty list is the neutral "insufficient
// data" case: score 50, a single reason, and the no_reviews penalty marker.
func Score(reviews []domain.Review) domain.TrustAssessment {
	if len(reviews) == 0 {
		return domain.TrustAssessment{
			Score:     50,
			Reasons:   []string{reasonNoReviews},
			Signals:   map[string]float64{},
			Penalties: map[string]int{"no_reviews": 0},
		}
	}

	n := len(reviews)
	tokens := make([][]string, n)
	for i, r := range reviews {
		tokens[i] = Tokenize(r.Text)
	}

	exactRatio := exactDupRatio(exactGroups(reviews))

	// near duplicates over the bounded sample
	sampleN := min(n, maxSimilaritySample)
	sample := make([]map[string]struct{}, sampleN)
	for i := 0; i < sampleN; i++ {
		sample[i] = Shingles(tokens[i], shingleSize)
	}
	nearPairs, totalPairs := 0, 0
	for i := 0; i < sampleN; i++ {
		for j := i + 1; j < sampleN; j++ {
			totalPairs++
			if Jaccard(sample[i], sample[j]) >= similarityThreshold {
				nearPairs++
			}
		}
	}
	nearRatio := float64(nearPairs) / float64(max(1, totalPairs))

	// single-day spike among dated reviews
	dated := 0
	byDay := make(map[string]int)
	for _, r := range reviews {
		if r.Created == nil {
			continue
		}
		dated++
		byDay[r.Created.Format("2006-01-02")]++
	}
	spikeShare := 0.0
	if dated > 0 {
		peak := 0
		for _, c := range byDay {
			if c > peak {
				peak = c
			}
		}
		spikeShare = float64(peak) / float64(dated)
	}

	// rating vs text sentiment
	mismatched, rated := 0, 0
	for i, r := range reviews {
		if r.Rating == nil {
			continue
		}
		rated++
		if ratingContradictsText(*r.Rating, tokens[i]) {
			mismatched++
		}
	}
	mismatchRatio := float64(mismatched) / float64(max(1, rated))

	short := 0
	for _, t := range tokens {
		if len(t) <= shortTokenLimit {
			short++
		}
	}
	shortRatio := float64(short) / float64(n)

	penalties := map[string]int{
		"duplicates": capPenalty(40, 40*(0.7*nearRatio+0.3*exactRatio)),
		"time_spike": capPenalty(20, 20*spikeShare),
		"mismatch":   capPenalty(20, 20*mismatchRatio),
		"too_short":  capPenalty(20, 20*shortRatio),
	}

	score := 100
	for _, p := range penalties {
		score -= p
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	// thresholds apply to the raw ratios, not the floored penalty points
	var reasons []string
	if nearRatio > 0.08 || exactRatio > 0.12 {
		reasons = append(reasons, reasonDuplicates)
	}
	if spikeShare > 0.35 {
		reasons = append(reasons, reasonTimeSpike)
	}
	if mismatchRatio > 0.10 {
		reasons = append(reasons, reasonMismatch)
	}
	if shortRatio > 0.35 {
		reasons = append(reasons, reasonTooShort)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, reasonNoFlags)
	}

	return domain.TrustAssessment{
		Score:   score,
		Reasons: reasons,
		Signals: map[string]float64{
			"near_dup_ratio":                 nearRatio,
			"exact_dup_ratio":                exactRatio,
			"spike_share":                    spikeShare,
			"mismatch_ratio":                 mismatchRatio,
			"short_ratio":                    shortRatio,
			"sampled_reviews_for_similarity": float64(sampleN),
			"rated_text_reviews":             float64(rated),
		},
		Penalties: penalties,
	}
}

// capPenalty floors the weighted ratio to whole points, clipped at limit.
func capPenalty(limit int, v float64) int {
	if v > float64(limit) {
		return limit
	}
	return int(v)
}

// ratingContradictsText reports a sentiment mismatch: a high rating over
// negative-lexicon text, or a low rating over positive-lexicon text.
// Literal token membership against the closed sets; no stemming.
func ratingContradictsText(rating int, tokens []string) bool {
	set := tokenSet(tokens)
	if rating >= 4 {
		return containsAny(set, negativeWords)
	}
	if rating <= 2 {
		return containsAny(set, positiveWords)
	}
	return false
}
