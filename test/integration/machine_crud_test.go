package integration

import (
	"fmt"
	"net/http"
	"testing"
)

type machineView struct {
	ID       uint   `json:"id"`
	AssetTag string `json:"asset_tag"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

type pageView[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func TestMachineCRUDAndHistory(t *testing.T) {
	env, done := newTestServer(t, nil)
	defer done()
	login(t, env, testAdminEmail, testAdminPassword)

	resp, body := doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/machines", map[string]any{
		"asset_tag": "CNC-100",
		"name":      "CNC Milling Machine",
		"location":  "Hall A",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create machine: expected 201, got %d (%+v)", resp.StatusCode, body.Error)
	}
	created := mustDecode[machineView](t, body.Data)
	if created.ID == 0 || created.Status != "operational" {
		t.Fatalf("unexpected created machine: %+v", created)
	}

	// Duplicate asset tag hits the unique index and maps to a conflict.
	resp, body = doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/machines", map[string]any{
		"asset_tag": "CNC-100",
		"name":      "Duplicate",
	}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate asset tag: expected 409, got %d (%+v)", resp.StatusCode, body.Error)
	}

	url := fmt.Sprintf("%s/api/v1/machines/%d", env.baseURL, created.ID)

	resp, body = doJSON(t, env.client, http.MethodPut, url, map[string]any{
		"location": "Hall B",
		"status":   "maintenance",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update machine: expected 200, got %d (%+v)", resp.StatusCode, body.Error)
	}
	updated := mustDecode[machineView](t, body.Data)
	if updated.Location != "Hall B" || updated.Status != "maintenance" {
		t.Fatalf("update not applied: %+v", updated)
	}

	// Both changed fields show up in the machine history.
	resp, body = doJSON(t, env.client, http.MethodGet, url+"/history", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history: expected 200, got %d (%+v)", resp.StatusCode, body.Error)
	}
	history := mustDecode[[]map[string]any](t, body.Data)
	fields := map[string]bool{}
	for _, h := range history {
		fields[h["field"].(string)] = true
	}
	if !fields["location"] || !fields["status"] {
		t.Fatalf("expected location and status history entries, got %+v", history)
	}

	resp, body = doJSON(t, env.client, http.MethodGet, env.baseURL+"/api/v1/machines?status=maintenance", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list machines: expected 200, got %d (%+v)", resp.StatusCode, body.Error)
	}
	page := mustDecode[pageView[machineView]](t, body.Data)
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != created.ID {
		t.Fatalf("unexpected filtered list: %+v", page)
	}

	resp, _ = doJSON(t, env.client, http.MethodDelete, url, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete machine: expected 200, got %d", resp.StatusCode)
	}
	resp, body = doJSON(t, env.client, http.MethodGet, url, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted machine: expected 404, got %d", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %+v", body.Error)
	}
}

func TestMachineIDParamValidation(t *testing.T) {
	env, done := newTestServer(t, nil)
	defer done()
	login(t, env, testAdminEmail, testAdminPassword)

	for _, bad := range []string{"abc", "-1", "0"} {
		resp, body := doJSON(t, env.client, http.MethodGet, env.baseURL+"/api/v1/machines/"+bad, nil, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("machine id %q: expected 400, got %d", bad, resp.StatusCode)
		}
		if body.Error == nil || body.Error.Code != "VALIDATION_FAILED" {
			t.Fatalf("machine id %q: expected VALIDATION_FAILED, got %+v", bad, body.Error)
		}
	}
}
