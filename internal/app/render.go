package app

import (
	"fmt"
	"strings"

	"antifake/internal/domain"
)

// RenderReport turns a report into the user-facing plain-text message.
func RenderReport(rep domain.Report) string {
	var lines []string

	name := rep.Name
	if name == "" {
		name = "Product"
	}
	lines = append(lines, name)
	if rep.Brand != "" {
		lines = append(lines, "Brand: "+rep.Brand)
	}
	lines = append(lines, fmt.Sprintf("Article: %d", rep.Article))

	rating := "n/a"
	if rep.MarketRating != nil {
		rating = fmt.Sprintf("%.1f", *rep.MarketRating)
	}
	fbCnt := "n/a"
	if rep.FeedbackCount != nil {
		fbCnt = fmt.Sprintf("%d", *rep.FeedbackCount)
	}
	lines = append(lines, fmt.Sprintf("Marketplace rating: %s, reviews: %s, with text analyzed: %d",
		rating, fbCnt, rep.ReviewCount))

	if rep.PriceProductU != nil {
		if rep.PriceBasicU != nil && *rep.PriceBasicU != *rep.PriceProductU {
			lines = append(lines, fmt.Sprintf("Price now: %s (basic %s)",
				fmtMoney(rep.PriceProductU), fmtMoney(rep.PriceBasicU)))
		} else {
			lines = append(lines, "Price now: "+fmtMoney(rep.PriceProductU))
		}
	}

	if len(rep.PriceHistory) > 0 {
		lines = append(lines, "", "Price history (collected by this service):")
		// stored newest first; print oldest first
		for i := len(rep.PriceHistory) - 1; i >= 0; i-- {
			p := rep.PriceHistory[i]
			if p.ProductU == nil {
				continue
			}
			ts := p.TS.Format("2006-01-02 15:04")
			if p.BasicU != nil && *p.BasicU != *p.ProductU {
				lines = append(lines, fmt.Sprintf("* %s: %s (basic %s)", ts, fmtMoney(p.ProductU), fmtMoney(p.BasicU)))
			} else {
				lines = append(lines, fmt.Sprintf("* %s: %s", ts, fmtMoney(p.ProductU)))
			}
		}
	}

	t := rep.Trust
	lines = append(lines, "",
		fmt.Sprintf("%s Trust score: %d/100", trafficLight(t.Score), t.Score),
		"Points deducted (heuristics):",
		fmt.Sprintf("* duplicates: -%d (near=%.3f, exact=%.3f)",
			t.Penalties["duplicates"], t.Signals["near_dup_ratio"], t.Signals["exact_dup_ratio"]),
		fmt.Sprintf("* single-day spike: -%d (spike_share=%.3f)",
			t.Penalties["time_spike"], t.Signals["spike_share"]),
		fmt.Sprintf("* sentiment mismatch: -%d (mismatch_ratio=%.3f)",
			t.Penalties["mismatch"], t.Signals["mismatch_ratio"]),
		fmt.Sprintf("* too short: -%d (short_ratio=%.3f)",
			t.Penalties["too_short"], t.Signals["short_ratio"]),
		"")
	for i, r := range t.Reasons {
		if i == 6 {
			break
		}
		lines = append(lines, "* "+r)
	}

	lines = append(lines, "", "Clean rating (suspicious text reviews excluded):")
	if rep.Clean.Avg != nil {
		lines = append(lines, fmt.Sprintf("* average: %.2f/5 (n=%d)", *rep.Clean.Avg, rep.Clean.Count))
	} else {
		lines = append(lines, "* not available (no ratings among surviving reviews)")
	}
	lines = append(lines, fmt.Sprintf("* dropped as suspicious: short=%d, mismatch=%d, exact_dup=%d, near_dup=%d",
		rep.DropStats["too_short"], rep.DropStats["mismatch"],
		rep.DropStats["exact_duplicate"], rep.DropStats["near_duplicate"]))

	if len(rep.AgeComplaints) > 0 {
		lines = append(lines, "", "Durability complaints:")
		for _, c := range rep.AgeComplaints {
			lines = append(lines, "* "+c)
		}
	}

	return strings.Join(lines, "\n")
}

func trafficLight(score int) string {
	switch {
	case score < 50:
		return "🔴"
	case score < 75:
		return "🟡"
	default:
		return "🟢"
	}
}

// fmtMoney renders minor units as rubles, dropping trailing kopecks when
// they are zero.
func fmtMoney(u *int64) string {
	if u == nil {
		return "n/a"
	}
	if *u%100 == 0 {
		return fmt.Sprintf("%d ₽", *u/100)
	}
	return fmt.Sprintf("%.2f ₽", float64(*u)/100)
}
