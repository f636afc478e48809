package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzBrady/quotecraft/internal/httpx"
	"github.com/BuzzBrady/quotecraft/internal/observability"
	"github.com/BuzzBrady/quotecraft/internal/pricing"
	"github.com/BuzzBrady/quotecraft/internal/quotes"
)

type quoteRequest struct {
	ClientName  string            `json:"clientName"`
	ClientEmail string            `json:"clientEmail"`
	JobTitle    string            `json:"jobTitle"`
	JobAddress  string            `json:"jobAddress"`
	Notes       string            `json:"notes"`
	Lines       []quotes.LineEdit `json:"lines"`
}

func (req quoteRequest) header(userID string) quotes.Quote {
	return quotes.Quote{
		UserID:      userID,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		JobTitle:    req.JobTitle,
		JobAddress:  req.JobAddress,
		Notes:       req.Notes,
	}
}

type previewResponse struct {
	Line quotes.Line `json:"line"`
	Tier string      `json:"tier"`
}

type statusRequest struct {
	Status quotes.Status `json:"status"`
}

type applyKitRequest struct {
	KitID   string `json:"kitId"`
	Section string `json:"section"`
}

func (s *server) handlePricingPreview(w http.ResponseWriter, r *http.Request) {
	var draft quotes.LineDraft
	if err := httpx.Decode(r, &draft); err != nil {
		s.writeBadJSON(w, r)
		return
	}

	snap, err := s.catalog.LoadSnapshot(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	tier := pricing.TierNone
	b := s.builder
	b.OnResolve = func(t pricing.Tier) {
		tier = t
		if s.builder.OnResolve != nil {
			s.builder.OnResolve(t)
		}
	}
	line, err := b.Line(snap, draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, previewResponse{Line: line, Tier: tier.String()})
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	list, err := s.quotes.List(r.Context(), userIDFrom(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []quotes.Summary{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := httpx.Decode(r, &req); err != nil {
		s.writeBadJSON(w, r)
		return
	}

	userID := userIDFrom(r.Context())
	snap, err := s.catalog.LoadSnapshot(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// New quotes have no stored lines, so every edit is priced.
	lines, err := s.builder.Revise(snap, nil, req.Lines)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := req.header(userID)
	q.Lines = lines
	if err := s.quotes.Create(r.Context(), &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	observability.ObserveQuoteSaved("create")
	s.logQuote(r, "quote created", q)
	httpx.JSON(w, http.StatusCreated, q)
}

func (s *server) handleQuoteGet(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Get(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (s *server) handleQuoteUpdate(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := httpx.Decode(r, &req); err != nil {
		s.writeBadJSON(w, r)
		return
	}

	userID := userIDFrom(r.Context())
	stored, err := s.quotes.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if stored.Status.Locked() {
		s.writeError(w, r, quotes.ErrLocked)
		return
	}

	snap, err := s.catalog.LoadSnapshot(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lines, err := s.builder.Revise(snap, stored.Lines, req.Lines)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := req.header(userID)
	q.ID = stored.ID
	q.Lines = lines
	if err := s.quotes.Update(r.Context(), &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	observability.ObserveQuoteSaved("update")
	s.logQuote(r, "quote updated", q)
	httpx.JSON(w, http.StatusOK, q)
}

func (s *server) handleQuoteDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.quotes.Delete(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleQuoteStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.Decode(r, &req); err != nil {
		s.writeBadJSON(w, r)
		return
	}

	userID := userIDFrom(r.Context())
	id := chi.URLParam(r, "id")
	if err := s.quotes.SetStatus(r.Context(), userID, id, req.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := s.quotes.Get(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// handleQuoteApplyKit appends a kit's lines to the end of the quote.
func (s *server) handleQuoteApplyKit(w http.ResponseWriter, r *http.Request) {
	var req applyKitRequest
	if err := httpx.Decode(r, &req); err != nil {
		s.writeBadJSON(w, r)
		return
	}

	userID := userIDFrom(r.Context())
	q, err := s.quotes.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if q.Status.Locked() {
		s.writeError(w, r, quotes.ErrLocked)
		return
	}

	snap, err := s.catalog.LoadSnapshot(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	added, err := s.builder.ApplyKit(snap, req.KitID, req.Section, len(q.Lines))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q.Lines = append(q.Lines, added...)
	if err := s.quotes.Update(r.Context(), &q); err != nil {
		s.writeError(w, r, err)
		return
	}
	observability.ObserveQuoteSaved("apply_kit")
	httpx.JSON(w, http.StatusOK, q)
}

func (s *server) logQuote(r *http.Request, msg string, q quotes.Quote) {
	observability.FromContext(r.Context()).Info(msg,
		zap.String("quote_id", q.ID),
		zap.String("number", q.Number),
		zap.Int("lines", len(q.Lines)),
	)
}
