package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"antifake/internal/app"
	"antifake/internal/domain"
)

type Handlers struct {
	A      *app.AnalysisService
	Prices domain.PriceRepository
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// MountHandlers attaches the API routes. The analysis route goes through
// the caller rate limit when one is configured; /healthz never does.
func (s *Server) MountHandlers(h *Handlers, limit func(http.Handler) http.Handler) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Group(func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Get("/v1/products/{article}/report", h.getReport)
		r.Get("/v1/products/{article}/price-history", h.priceHistory)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func parseArticle(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "article"), 10, 64)
}

func (h *Handlers) getReport(w http.ResponseWriter, r *http.Request) {
	article, err := parseArticle(r)
	if err != nil || article <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid article", "article must be a positive number")
		return
	}

	rep, err := h.A.AnalyzeProduct(r.Context(), article)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "product not found on the marketplace")
			return
		}
		log.Error().Int64("article", article).Err(err).Msg("analysis failed")
		writeProblem(w, http.StatusBadGateway, "Upstream Failure", "could not fetch marketplace data")
		return
	}

	resp := struct {
		domain.Report
		Text string `json:"text"`
	}{Report: rep, Text: app.RenderReport(rep)}

	etag, body := calcETagAndBody(resp)
	// If the client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write report body")
	}
}

func (h *Handlers) priceHistory(w http.ResponseWriter, r *http.Request) {
	article, err := parseArticle(r)
	if err != nil || article <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid article", "article must be a positive number")
		return
	}

	limit := 12
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 100 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
			return
		}
		limit = l
	}

	hist, err := h.Prices.History(r.Context(), article, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Storage Failure", "could not read price history")
		return
	}

	etag, body := calcETagAndBody(hist)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write price history body")
	}
}
