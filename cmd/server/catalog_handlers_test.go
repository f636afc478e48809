package main

import (
	"net/http"
	"testing"

	"github.com/BuzzBrady/quotecraft/internal/catalog"
	"github.com/BuzzBrady/quotecraft/internal/httpx"
)

func TestCatalogTaskCRUD(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.addUser(t, "u1")

	rr := env.do(t, http.MethodPost, "/api/tasks", map[string]any{"name": "<b>Sanding</b>", "defaultUnit": "m2"}, cookie)
	expectStatus(t, rr, http.StatusCreated)
	task := decodeBody[catalog.Task](t, rr)
	if task.ID == "" || task.Name != "Sanding" || task.Kind != catalog.KindCustom {
		t.Fatalf("unexpected created task: %+v", task)
	}

	rr = env.do(t, http.MethodPut, "/api/tasks/"+task.ID, map[string]any{"name": "Sanding and prep"}, cookie)
	expectStatus(t, rr, http.StatusOK)
	if updated := decodeBody[catalog.Task](t, rr); updated.ID != task.ID || updated.Name != "Sanding and prep" {
		t.Fatalf("unexpected updated task: %+v", updated)
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil, cookie), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil, cookie), http.StatusNotFound)
}

func TestCatalogGlobalEntriesAreReadOnly(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.addUser(t, "u1")

	rr := env.do(t, http.MethodPut, "/api/tasks/task-labour", map[string]any{"name": "Mine now"}, cookie)
	expectStatus(t, rr, http.StatusConflict)
	if body := decodeBody[httpx.ErrorResponse](t, rr); body.Error != "read_only" {
		t.Fatalf("unexpected error code %q", body.Error)
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/api/materials/mat-paint", nil, cookie), http.StatusConflict)
}

func TestCatalogEntriesAreScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "u1")
	other := env.addUser(t, "u2")

	rr := env.do(t, http.MethodPost, "/api/areas", map[string]any{"name": "Garage"}, owner)
	expectStatus(t, rr, http.StatusCreated)
	area := decodeBody[catalog.Area](t, rr)

	expectStatus(t, env.do(t, http.MethodPut, "/api/areas/"+area.ID, map[string]any{"name": "Shed"}, other), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodDelete, "/api/areas/"+area.ID, nil, other), http.StatusNotFound)

	view := decodeBody[catalog.View](t, env.do(t, http.MethodGet, "/api/catalog", nil, other))
	for _, a := range view.Areas {
		if a.ID == area.ID {
			t.Fatalf("other user sees a private area: %+v", a)
		}
	}
}

func TestCatalogRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.addUser(t, "u1")

	tests := []struct {
		name string
		path string
		body any
		want int
		code string
	}{
		{"blank task name", "/api/tasks", map[string]any{"name": "  "}, http.StatusBadRequest, "validation_failed"},
		{"unknown field", "/api/tasks", map[string]any{"name": "Ok", "colour": "red"}, http.StatusBadRequest, "invalid_json"},
		{"rate without target", "/api/rates", map[string]any{"referenceRate": 10, "inputType": "quantity"}, http.StatusBadRequest, "validation_failed"},
		{"rate for foreign option", "/api/rates", map[string]any{
			"materialId": "mat-paint", "materialOptionId": "mat-tile-1", "referenceRate": 10, "inputType": "quantity",
		}, http.StatusBadRequest, "validation_failed"},
		{"rate for unknown task", "/api/rates", map[string]any{"taskId": "nope", "referenceRate": 10, "inputType": "price"}, http.StatusBadRequest, "validation_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, tt.path, tt.body, cookie)
			expectStatus(t, rr, tt.want)
			if body := decodeBody[httpx.ErrorResponse](t, rr); body.Error != tt.code {
				t.Fatalf("expected error code %q, got %q", tt.code, body.Error)
			}
		})
	}
}

func TestCatalogKitRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.addUser(t, "u1")

	rr := env.do(t, http.MethodPost, "/api/kits", map[string]any{
		"name": "Bathroom refresh",
		"lines": []map[string]any{
			{"taskId": "task-tiling", "materialId": "mat-tile", "materialOptionId": "mat-tile-1", "quantity": 4},
			{"taskId": "task-call-out", "inputType": "checkbox", "overrideRate": "90"},
		},
	}, cookie)
	expectStatus(t, rr, http.StatusCreated)
	kit := decodeBody[catalog.Kit](t, rr)

	view := decodeBody[catalog.View](t, env.do(t, http.MethodGet, "/api/catalog", nil, cookie))
	if len(view.Kits) != 1 || view.Kits[0].ID != kit.ID || len(view.Kits[0].Lines) != 2 {
		t.Fatalf("unexpected kits: %+v", view.Kits)
	}
	if view.Kits[0].Lines[1].Order != 1 || view.Kits[0].Lines[1].InputType != "checkbox" {
		t.Fatalf("kit lines not kept in order: %+v", view.Kits[0].Lines)
	}
}
