package main

import (
	"net/http"
	"testing"

	"github.com/BuzzBrady/quotecraft/internal/catalog"
	"github.com/BuzzBrady/quotecraft/internal/httpx"
	"github.com/BuzzBrady/quotecraft/internal/quotes"
)

// addLabourRate stores a per-hour rate for the seeded labour task.
func addLabourRate(t *testing.T, env *testEnv, cookie *http.Cookie, rate float64) catalog.Rate {
	t.Helper()

	rr := env.do(t, http.MethodPost, "/api/rates", map[string]any{
		"name": "Labour", "taskId": "task-labour", "referenceRate": rate, "unit": "hour", "inputType": "quantity",
	}, cookie)
	expectStatus(t, rr, http.StatusCreated)
	return decodeBody[catalog.Rate](t, rr)
}

func TestPricingPreview(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.addUser(t, "u1")
	addLabourRate(t, env, cookie, 60)

	rr := env.do(t, http.MethodPost, "/api/pricing/preview", map[string]any{"taskId": "task-labour", "quantity": "2.5"}, cookie)
	expectStatus(t, rr, http.StatusOK)
	preview := decodeBody[previewResponse](t, rr)
	if preview.Tier != "task" || preview.Line.LineTotal != 150 || preview.Line.Unit != "hour" {
		t.Fatalf("unexpected preview: %+v", preview)
	}

	rr = env.do(t, http.MethodPost, "/api/pricing/preview", map[string]any{"materialId": "mat-paint", "quantity": "1"}, cookie)
	expectStatus(t, rr, http.StatusBadRequest)
	if body := decodeBody[httpx.ErrorResponse](t, rr); body.Field != "materialOptionId" {
		t.Fatalf("expected materialOptionId field error, got %+v", body)
	}

	rr = env.do(t, http.MethodPost, "/api/pricing/preview", map[string]any{"materialId": "mat-paint", "materialOptionId": "mat-paint-1", "quantity": "2"}, cookie)
	expectStatus(t, rr, http.StatusOK)
	preview = decodeBody[previewResponse](t, rr)
	if preview.Tier != "none" || preview.Line.LineTotal != 24 || preview.Line.DisplayName != "Interior paint (Matte)" {
		t.Fatalf("expected material default pricing, got %+v", preview)
	}
}

func TestQuoteLifecycle(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.addUser(t, "u1")
	rate := addLabourRate(t, env, cookie, 60)

	rr := env.do(t, http.MethodPost, "/api/quotes", map[string]any{
		"clientName": "Ana Lopez",
		"jobTitle":   "Kitchen repaint",
		"lines":      []map[string]any{{"section": "Kitchen", "taskId": "task-labour", "quantity": "2"}},
	}, cookie)
	expectStatus(t, rr, http.StatusCreated)
	created := decodeBody[quotes.Quote](t, rr)
	if created.Number != "Q-0001" || created.Status != quotes.StatusDraft || created.TotalAmount != 120 {
		t.Fatalf("unexpected created quote: %+v", created)
	}

	// A later rate change must not reprice the saved line, but the user's own
	// quantity edit does.
	rr = env.do(t, http.MethodPut, "/api/rates/"+rate.ID, map[string]any{
		"taskId": "task-labour", "referenceRate": 80, "unit": "hour", "inputType": "quantity",
	}, cookie)
	expectStatus(t, rr, http.StatusOK)

	rr = env.do(t, http.MethodPut, "/api/quotes/"+created.ID, map[string]any{
		"clientName": "Ana Lopez",
		"jobTitle":   "Kitchen and bathroom",
		"lines": []map[string]any{
			{"id": created.Lines[0].ID, "section": "Kitchen", "displayName": "Labour (2 trades)", "quantity": "3"},
			{"section": "Bathroom", "taskId": "task-labour", "quantity": "1"},
		},
	}, cookie)
	expectStatus(t, rr, http.StatusOK)

	got := decodeBody[quotes.Quote](t, env.do(t, http.MethodGet, "/api/quotes/"+created.ID, nil, cookie))
	if got.Number != "Q-0001" || got.JobTitle != "Kitchen and bathroom" || len(got.Lines) != 2 {
		t.Fatalf("unexpected updated quote: %+v", got)
	}
	if got.Lines[0].LineTotal != 180 || got.Lines[0].DisplayName != "Labour (2 trades)" || got.Lines[1].LineTotal != 80 || got.TotalAmount != 260 {
		t.Fatalf("unexpected line totals: %v, %v (total %v)", got.Lines[0].LineTotal, got.Lines[1].LineTotal, got.TotalAmount)
	}

	rr = env.do(t, http.MethodPost, "/api/quotes/"+created.ID+"/status", map[string]any{"status": "accepted"}, cookie)
	expectStatus(t, rr, http.StatusOK)
	if accepted := decodeBody[quotes.Quote](t, rr); accepted.Status != quotes.StatusAccepted {
		t.Fatalf("expected accepted quote, got %q", accepted.Status)
	}

	rr = env.do(t, http.MethodPut, "/api/quotes/"+created.ID, map[string]any{"clientName": "Changed"}, cookie)
	expectStatus(t, rr, http.StatusConflict)
	if body := decodeBody[httpx.ErrorResponse](t, rr); body.Error != "quote_locked" {
		t.Fatalf("unexpected error code %q", body.Error)
	}
	expectStatus(t, env.do(t, http.MethodPost, "/api/quotes/"+created.ID+"/status", map[string]any{"status": "draft"}, cookie), http.StatusConflict)
	expectStatus(t, env.do(t, http.MethodPost, "/api/quotes/"+created.ID+"/status", map[string]any{"status": "archived"}, cookie), http.StatusBadRequest)

	list := decodeBody[[]quotes.Summary](t, env.do(t, http.MethodGet, "/api/quotes?q=bathroom", nil, cookie))
	if len(list) != 1 || list[0].ID != created.ID || list[0].TotalAmount != 260 {
		t.Fatalf("unexpected list: %+v", list)
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/api/quotes/"+created.ID, nil, cookie), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodGet, "/api/quotes/"+created.ID, nil, cookie), http.StatusNotFound)
}

func TestQuoteCreateReportsLineField(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.addUser(t, "u1")

	rr := env.do(t, http.MethodPost, "/api/quotes", map[string]any{
		"clientName": "Ana Lopez",
		"lines": []map[string]any{
			{"taskId": "task-labour", "quantity": "1"},
			{"taskId": "no-such-task"},
		},
	}, cookie)
	expectStatus(t, rr, http.StatusBadRequest)
	if body := decodeBody[httpx.ErrorResponse](t, rr); body.Field != "lines[1].taskId" || body.Message != "Unknown task" {
		t.Fatalf("unexpected validation response: %+v", body)
	}

	list := decodeBody[[]quotes.Summary](t, env.do(t, http.MethodGet, "/api/quotes", nil, cookie))
	if len(list) != 0 {
		t.Fatalf("invalid quote should not be saved: %+v", list)
	}
}

func TestQuotesAreScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "u1")
	other := env.addUser(t, "u2")

	created := decodeBody[quotes.Quote](t, env.do(t, http.MethodPost, "/api/quotes", map[string]any{"clientName": "Ana"}, owner))

	expectStatus(t, env.do(t, http.MethodGet, "/api/quotes/"+created.ID, nil, other), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodPut, "/api/quotes/"+created.ID, map[string]any{"clientName": "Bo"}, other), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodDelete, "/api/quotes/"+created.ID, nil, other), http.StatusNotFound)

	// Numbers are sequenced per user.
	second := decodeBody[quotes.Quote](t, env.do(t, http.MethodPost, "/api/quotes", map[string]any{"clientName": "Cy"}, other))
	if second.Number != "Q-0001" {
		t.Fatalf("expected first number for second user, got %q", second.Number)
	}
}

func TestQuoteApplyKit(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.addUser(t, "u1")
	addLabourRate(t, env, cookie, 60)

	rr := env.do(t, http.MethodPost, "/api/kits", map[string]any{
		"name": "Tiling job",
		"lines": []map[string]any{
			{"taskId": "task-tiling", "quantity": 3, "overrideRate": "40", "inputType": "quantity"},
			{"taskId": "task-call-out", "overrideRate": "90", "inputType": "checkbox"},
		},
	}, cookie)
	expectStatus(t, rr, http.StatusCreated)
	kit := decodeBody[catalog.Kit](t, rr)

	created := decodeBody[quotes.Quote](t, env.do(t, http.MethodPost, "/api/quotes", map[string]any{
		"clientName": "&lt;b&gt;Ana&lt;/b&gt; Lee",
		"notes":      "Tom &amp; Jerry's <em>bathroom</em>",
		"lines":      []map[string]any{{"section": "Kitchen", "taskId": "task-labour", "quantity": "1"}},
	}, cookie))
	if created.ClientName != "Ana Lee" || created.Notes != "Tom & Jerry's bathroom" {
		t.Fatalf("header text not cleaned: %q / %q", created.ClientName, created.Notes)
	}

	rr = env.do(t, http.MethodPost, "/api/quotes/"+created.ID+"/kits", applyKitRequest{KitID: kit.ID, Section: "Bathroom"}, cookie)
	expectStatus(t, rr, http.StatusOK)
	updated := decodeBody[quotes.Quote](t, rr)
	if len(updated.Lines) != 3 || updated.TotalAmount != 60+120+90 {
		t.Fatalf("unexpected quote after kit: %+v", updated)
	}
	for _, l := range updated.Lines[1:] {
		if l.Section != "Bathroom" || l.KitTemplateID != kit.ID {
			t.Fatalf("kit line not tagged: %+v", l)
		}
	}
	// Applying a kit saves the stored header again; it must come back unchanged.
	if updated.ClientName != created.ClientName || updated.Notes != created.Notes {
		t.Fatalf("header text changed on re-save: %q / %q", updated.ClientName, updated.Notes)
	}
	if updated.Lines[2].Order != 2 {
		t.Fatalf("kit lines should follow existing lines, got order %d", updated.Lines[2].Order)
	}

	rr = env.do(t, http.MethodPost, "/api/quotes/"+created.ID+"/kits", applyKitRequest{KitID: "missing"}, cookie)
	expectStatus(t, rr, http.StatusBadRequest)
	if body := decodeBody[httpx.ErrorResponse](t, rr); body.Field != "kitId" {
		t.Fatalf("expected kitId field error, got %+v", body)
	}
}
