package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BuzzBrady/quotecraft/internal/export"
	"github.com/BuzzBrady/quotecraft/internal/httpx"
	"github.com/BuzzBrady/quotecraft/internal/observability"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type pdfResponse struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

func (s *server) loadDocument(r *http.Request, level export.Level) (export.Document, error) {
	q, err := s.quotes.Get(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		return export.Document{}, err
	}
	return export.BuildDocument(q, export.Options{
		CompanyName: s.cfg.CompanyName,
		Currency:    s.cfg.Currency,
		Level:       level,
		Now:         s.now(),
	}), nil
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	level, err := export.ParseLevel(r.URL.Query().Get("level"))
	if err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "invalid_level", err.Error())
		return
	}
	doc, err := s.loadDocument(r, level)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	started := time.Now()
	data, err := export.RenderPDF(doc)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("render pdf: %w", err))
		return
	}
	observability.ObserveExport("pdf", started)

	httpx.JSON(w, http.StatusOK, pdfResponse{
		FileName:    doc.FileName("pdf"),
		ContentType: "application/pdf",
		Data:        base64.StdEncoding.EncodeToString(data),
	})
}

func (s *server) handleQuoteXLSX(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDocument(r, export.LevelFull)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	started := time.Now()
	data, err := export.RenderXLSX(doc)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("render xlsx: %w", err))
		return
	}
	observability.ObserveExport("xlsx", started)

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName("xlsx")))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
