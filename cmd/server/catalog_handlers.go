package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BuzzBrady/quotecraft/internal/catalog"
	"github.com/BuzzBrady/quotecraft/internal/httpx"
)

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	snap, err := s.catalog.LoadSnapshot(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap.View())
}

// saveEntry decodes a catalog entry, takes its id from the route (empty on
// POST, so the body cannot pick one) and stores it for the session user.
func saveEntry[T any](s *server, w http.ResponseWriter, r *http.Request, setID func(*T, string), save func(context.Context, string, T) (T, error)) {
	var entry T
	if err := httpx.Decode(r, &entry); err != nil {
		s.writeBadJSON(w, r)
		return
	}
	id := chi.URLParam(r, "id")
	setID(&entry, id)

	saved, err := save(r.Context(), userIDFrom(r.Context()), entry)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, saved)
}

func deleteEntry(s *server, w http.ResponseWriter, r *http.Request, del func(context.Context, string, string) error) {
	if err := del(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSaveTask(w http.ResponseWriter, r *http.Request) {
	saveEntry(s, w, r, func(t *catalog.Task, id string) { t.ID = id }, s.catalog.SaveTask)
}

func (s *server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	deleteEntry(s, w, r, s.catalog.DeleteTask)
}

func (s *server) handleSaveMaterial(w http.ResponseWriter, r *http.Request) {
	saveEntry(s, w, r, func(m *catalog.Material, id string) { m.ID = id }, s.catalog.SaveMaterial)
}

func (s *server) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	deleteEntry(s, w, r, s.catalog.DeleteMaterial)
}

func (s *server) handleSaveArea(w http.ResponseWriter, r *http.Request) {
	saveEntry(s, w, r, func(a *catalog.Area, id string) { a.ID = id }, s.catalog.SaveArea)
}

func (s *server) handleDeleteArea(w http.ResponseWriter, r *http.Request) {
	deleteEntry(s, w, r, s.catalog.DeleteArea)
}

func (s *server) handleSaveRate(w http.ResponseWriter, r *http.Request) {
	saveEntry(s, w, r, func(rt *catalog.Rate, id string) { rt.ID = id }, s.catalog.SaveRate)
}

func (s *server) handleDeleteRate(w http.ResponseWriter, r *http.Request) {
	deleteEntry(s, w, r, s.catalog.DeleteRate)
}

func (s *server) handleSaveKit(w http.ResponseWriter, r *http.Request) {
	saveEntry(s, w, r, func(k *catalog.Kit, id string) { k.ID = id }, s.catalog.SaveKit)
}

func (s *server) handleDeleteKit(w http.ResponseWriter, r *http.Request) {
	deleteEntry(s, w, r, s.catalog.DeleteKit)
}
