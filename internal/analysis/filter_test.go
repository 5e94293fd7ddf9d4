package analysis

import (
	"fmt"
	"reflect"
	"testing"

	"antifake/internal/domain"
)

func TestDetectSuspicious_ShortAndMismatchFirst(t *testing.T) {
	rs := []domain.Review{
		{Rating: pint(5), Text: "Ок"},                                         // too_short
		{Rating: pint(5), Text: "сломалась ручка через неделю очень обидно"},  // mismatch (5 stars, negative text)
		{Rating: pint(1), Text: "хороший понравилось всем членам семьи"},      // mismatch (1 star, positive text)
		{Rating: pint(4), Text: "добротная вещь служит исправно целый месяц"}, // kept
	}
	drop := DetectSuspicious(rs)

	want := domain.DropStats{"too_short": 1, "mismatch": 2, "exact_duplicate": 0, "near_duplicate": 0}
	if !reflect.DeepEqual(drop.Counts, want) {
		t.Fatalf("counts = %v, want %v", drop.Counts, want)
	}
	for _, i := range []int{0, 1, 2} {
		if !drop.IsDropped(i) {
			t.Fatalf("index %d should be dropped", i)
		}
	}
	if drop.IsDropped(3) {
		t.Fatalf("index 3 should survive")
	}
}

func TestDetectSuspicious_ExactCollapseKeepsEarliest(t *testing.T) {
	text := "Супер отличный товар быстро доставили продавцу спасибо"
	rs := []domain.Review{
		{Rating: pint(5), Text: text},
		{Rating: pint(5), Text: text},
		{Rating: pint(5), Text: text},
	}
	drop := DetectSuspicious(rs)

	if drop.IsDropped(0) {
		t.Fatalf("earliest copy should be kept")
	}
	if !drop.IsDropped(1) || !drop.IsDropped(2) {
		t.Fatalf("later copies should be dropped: %v", drop.Dropped)
	}
	if drop.Counts["exact_duplicate"] != 2 {
		t.Fatalf("exact_duplicate = %d, want 2", drop.Counts["exact_duplicate"])
	}
	// an exact cluster is also a near cluster of size 3, but the indices are
	// already dropped and must not be re-counted
	if drop.Counts["near_duplicate"] != 0 {
		t.Fatalf("near_duplicate = %d, want 0", drop.Counts["near_duplicate"])
	}
}

// nearVariant builds long texts that differ only in the trailing word, so
// they are near-duplicates (Jaccard above 0.8) but never exact duplicates.
func nearVariant(i int) string {
	base := ""
	for w := 0; w < 39; w++ {
		base += fmt.Sprintf("слово%d ", w)
	}
	return base + fmt.Sprintf("вариант%d", i)
}

func TestDetectSuspicious_NearPairIsLeftAlone(t *testing.T) {
	rs := []domain.Review{
		{Rating: pint(5), Text: nearVariant(1)},
		{Rating: pint(5), Text: nearVariant(2)},
	}
	drop := DetectSuspicious(rs)

	if len(drop.Dropped) != 0 {
		t.Fatalf("size-2 near cluster must be untouched, dropped %v", drop.Dropped)
	}
}

func TestDetectSuspicious_NearClusterOfThreeCollapses(t *testing.T) {
	rs := []domain.Review{
		{Rating: pint(5), Text: nearVariant(1)},
		{Rating: pint(5), Text: nearVariant(2)},
		{Rating: pint(5), Text: nearVariant(3)},
		{Rating: pint(4), Text: "добротная вещь служит исправно целый месяц"},
	}
	drop := DetectSuspicious(rs)

	if drop.IsDropped(0) {
		t.Fatalf("cluster representative should be kept")
	}
	if !drop.IsDropped(1) || !drop.IsDropped(2) {
		t.Fatalf("cluster members should be dropped: %v", drop.Dropped)
	}
	if drop.IsDropped(3) {
		t.Fatalf("unrelated review dropped")
	}
	if drop.Counts["near_duplicate"] != 2 {
		t.Fatalf("near_duplicate = %d, want 2", drop.Counts["near_duplicate"])
	}
}

func TestDetectSuspicious_NearPassIgnoresReviewsBeyondSample(t *testing.T) {
	rs := make([]domain.Review, 0, 460)
	for i := 0; i < 455; i++ {
		rs = append(rs, domain.Review{
			Rating: pint(4),
			Text:   fmt.Sprintf("обычный отзыв номер %03d владелец остался доволен покупкой", i),
		})
	}
	// a near-duplicate cluster fully outside the 450-review sample
	for i := 0; i < 5; i++ {
		rs = append(rs, domain.Review{Rating: pint(5), Text: nearVariant(i)})
	}
	drop := DetectSuspicious(rs)

	if drop.Counts["near_duplicate"] != 0 {
		t.Fatalf("near_duplicate = %d, want 0 (cluster is beyond the sample)", drop.Counts["near_duplicate"])
	}
	for i := 455; i < 460; i++ {
		if drop.IsDropped(i) {
			t.Fatalf("index %d beyond the sample must not be dropped", i)
		}
	}
}

func TestCleanAverage(t *testing.T) {
	rs := []domain.Review{
		{Rating: pint(5), Text: "Супер отличный товар быстро доставили"},
		{Rating: pint(5), Text: "Супер отличный товар быстро доставили"},
		{Rating: pint(2), Text: "сломался корпус через месяц аккуратного использования"},
		{Text: "пришла целой работает исправно маме понравилась"}, // no rating
	}
	drop := DetectSuspicious(rs)
	clean := CleanAverage(rs, drop)

	// the duplicate pair collapses to one five, the broken-case review stays
	if clean.Count != 2 {
		t.Fatalf("count = %d, want 2", clean.Count)
	}
	if clean.Avg == nil || *clean.Avg != 3.5 {
		t.Fatalf("avg = %v, want 3.5", clean.Avg)
	}

	rated := 0
	for _, r := range rs {
		if r.Rating != nil {
			rated++
		}
	}
	if clean.Count > rated {
		t.Fatalf("count %d exceeds rated reviews %d", clean.Count, rated)
	}
}

func TestCleanAverage_Empty(t *testing.T) {
	rs := []domain.Review{{Text: "Ок"}}
	clean := CleanAverage(rs, DetectSuspicious(rs))
	if clean.Count != 0 || clean.Avg != nil {
		t.Fatalf("clean = %+v, want zero value", clean)
	}
}

func TestCleanAverage_Rounding(t *testing.T) {
	rs := []domain.Review{
		{Rating: pint(5), Text: "товар полностью оправдал ожидания владельца"},
		{Rating: pint(4), Text: "покупка пришла вовремя целой упаковке"},
		{Rating: pint(1), Text: "корпус треснул при первом падении жаль"},
	}
	clean := CleanAverage(rs, DetectSuspicious(rs))
	if clean.Count != 3 {
		t.Fatalf("count = %d, want 3", clean.Count)
	}
	if clean.Avg == nil || *clean.Avg != 3.33 {
		t.Fatalf("avg = %v, want 3.33", clean.Avg)
	}
}
