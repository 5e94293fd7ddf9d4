package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"antifake/internal/analysis"
	"antifake/internal/domain"
)

const priceHistoryDepth = 12

// AnalysisService produces trust reports for products: it fetches the card
// and feedback payloads (read-through cached), records a price snapshot,
// and runs the review-trust engine over the extracted reviews.
type AnalysisService struct {
	market      domain.MarketClient
	prices      domain.PriceRepository
	cache       domain.Cache
	cardTTL     time.Duration
	reviewsTTL  time.Duration
	reviewLimit int
}

func NewAnalysisService(m domain.MarketClient, p domain.PriceRepository, c domain.Cache,
	cardTTL, reviewsTTL time.Duration, reviewLimit int) *AnalysisService {
	return &AnalysisService{
		market:      m,
		prices:      p,
		cache:       c,
		cardTTL:     cardTTL,
		reviewsTTL:  reviewsTTL,
		reviewLimit: reviewLimit,
	}
}

func (s *AnalysisService) AnalyzeProduct(ctx context.Context, article int64) (domain.Report, error) {
	// product card, cache-or-fetch
	cardKey := fmt.Sprintf("card:%d", article)
	var product map[string]any
	if ok, _ := s.cache.Get(ctx, cardKey, &product); !ok || product == nil {
		p, err := s.market.GetProduct(ctx, article)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				_ = s.prices.LogMiss(ctx, article, 404, "card")
			}
			return domain.Report{}, err
		}
		product = p
		_ = s.cache.Set(ctx, cardKey, product, int(s.cardTTL.Seconds()))
	}

	rootID := article
	if v := firstInt64(product, "root"); v != nil && *v != 0 {
		rootID = *v
	}

	// price snapshot; history exists from the moment the service first saw
	// the product
	basicU, productU := ParsePrice(product)
	if err := s.prices.AddSnapshot(ctx, article, basicU, productU); err != nil {
		log.Warn().Int64("article", article).Err(err).Msg("price snapshot failed")
	}
	hist, err := s.prices.History(ctx, article, priceHistoryDepth)
	if err != nil {
		log.Warn().Int64("article", article).Err(err).Msg("price history read failed")
	}

	// feedbacks, cache-or-fetch
	fbKey := fmt.Sprintf("fb:%d:limit=%d", rootID, s.reviewLimit)
	var payload map[string]any
	if ok, _ := s.cache.Get(ctx, fbKey, &payload); !ok || payload == nil {
		fb, ferr := s.market.GetFeedbacks(ctx, rootID, s.reviewLimit)
		if ferr != nil {
			status := 502
			if errors.Is(ferr, domain.ErrNotFound) {
				status = 404
			}
			_ = s.prices.LogMiss(ctx, article, status, "feedbacks")
			return domain.Report{}, ferr
		}
		payload = fb
		_ = s.cache.Set(ctx, fbKey, payload, int(s.reviewsTTL.Seconds()))
	}

	reviews := ExtractReviews(payload)

	trust := analysis.Score(reviews)
	drop := analysis.DetectSuspicious(reviews)

	return domain.Report{
		Article:       article,
		RootID:        rootID,
		Name:          lookupStr(product, "name"),
		Brand:         lookupStr(product, "brand"),
		MarketRating:  firstFloat(product, cardRatingPaths...),
		FeedbackCount: firstInt64(product, cardFeedbackPaths...),
		ReviewCount:   len(reviews),
		Trust:         trust,
		Clean:         analysis.CleanAverage(reviews, drop),
		DropStats:     drop.Counts,
		AgeComplaints: analysis.AgeComplaints(reviews),
		PriceBasicU:   basicU,
		PriceProductU: productU,
		PriceHistory:  hist,
	}, nil
}
