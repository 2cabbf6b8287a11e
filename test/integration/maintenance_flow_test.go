package integration

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"
)

type scheduleView struct {
	ID           uint      `json:"id"`
	MachineID    uint      `json:"machine_id"`
	Title        string    `json:"title"`
	IntervalDays int       `json:"interval_days"`
	Priority     string    `json:"priority"`
	NextDueAt    time.Time `json:"next_due_at"`
	Active       bool      `json:"active"`
}

type recordView struct {
	ID            uint      `json:"id"`
	MachineID     uint      `json:"machine_id"`
	ScheduleID    *uint     `json:"schedule_id"`
	PerformedAt   time.Time `json:"performed_at"`
	Cost          float64   `json:"cost"`
	Status        string    `json:"status"`
	AttachmentKey string    `json:"attachment_key"`
}

func createMachine(t *testing.T, env *testEnv, assetTag string) machineView {
	t.Helper()
	resp, body := doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/machines", map[string]any{
		"asset_tag": assetTag,
		"name":      "Machine " + assetTag,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create machine %s: expected 201, got %d (%+v)", assetTag, resp.StatusCode, body.Error)
	}
	return mustDecode[machineView](t, body.Data)
}

func TestScheduleAdvancesAfterCompletedRecord(t *testing.T) {
	env, done := newTestServer(t, nil)
	defer done()
	login(t, env, testAdminEmail, testAdminPassword)

	machine := createMachine(t, env, "PRS-200")

	resp, body := doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/schedules", map[string]any{
		"machine_id":    machine.ID,
		"title":         "Quarterly lubrication",
		"interval_days": 90,
		"priority":      "high",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create schedule: expected 201, got %d (%+v)", resp.StatusCode, body.Error)
	}
	schedule := mustDecode[scheduleView](t, body.Data)
	if schedule.IntervalDays != 90 || !schedule.Active {
		t.Fatalf("unexpected schedule: %+v", schedule)
	}

	performedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	resp, body = doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/records", map[string]any{
		"machine_id":   machine.ID,
		"schedule_id":  schedule.ID,
		"description":  "Lubricated spindle and rails",
		"cost":         1250.50,
		"status":       "completed",
		"performed_at": performedAt.Format(time.RFC3339),
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create record: expected 201, got %d (%+v)", resp.StatusCode, body.Error)
	}
	record := mustDecode[recordView](t, body.Data)
	if record.ScheduleID == nil || *record.ScheduleID != schedule.ID {
		t.Fatalf("record not linked to schedule: %+v", record)
	}

	// Completing the record pushed the schedule forward a full interval.
	resp, body = doJSON(t, env.client, http.MethodGet, fmt.Sprintf("%s/api/v1/schedules/%d", env.baseURL, schedule.ID), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get schedule: expected 200, got %d (%+v)", resp.StatusCode, body.Error)
	}
	after := mustDecode[scheduleView](t, body.Data)
	wantDue := performedAt.AddDate(0, 0, 90)
	if !after.NextDueAt.Equal(wantDue) {
		t.Fatalf("next_due_at = %v, want %v", after.NextDueAt, wantDue)
	}
}

func TestRecordRejectsScheduleOfOtherMachine(t *testing.T) {
	env, done := newTestServer(t, nil)
	defer done()
	login(t, env, testAdminEmail, testAdminPassword)

	m1 := createMachine(t, env, "CNV-301")
	m2 := createMachine(t, env, "CNV-302")

	resp, body := doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/schedules", map[string]any{
		"machine_id":    m1.ID,
		"title":         "Belt inspection",
		"interval_days": 30,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create schedule: expected 201, got %d (%+v)", resp.StatusCode, body.Error)
	}
	schedule := mustDecode[scheduleView](t, body.Data)

	resp, body = doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/records", map[string]any{
		"machine_id":  m2.ID,
		"schedule_id": schedule.ID,
		"description": "Mismatched schedule",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for schedule mismatch, got %d (%+v)", resp.StatusCode, body.Error)
	}
}

func TestRecordAttachmentUploadAndURL(t *testing.T) {
	env, done := newTestServer(t, nil)
	defer done()
	login(t, env, testAdminEmail, testAdminPassword)

	machine := createMachine(t, env, "CNC-400")
	resp, body := doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/records", map[string]any{
		"machine_id":  machine.ID,
		"description": "Replaced coolant pump",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create record: expected 201, got %d (%+v)", resp.StatusCode, body.Error)
	}
	record := mustDecode[recordView](t, body.Data)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="invoice.pdf"`},
		"Content-Type":        {"application/pdf"},
	})
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	uploadURL := fmt.Sprintf("%s/api/v1/records/%d/attachment", env.baseURL, record.ID)
	req, err := http.NewRequest(http.MethodPost, uploadURL, &buf)
	if err != nil {
		t.Fatalf("build upload request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	uploadResp, err := env.client.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	uploadResp.Body.Close()
	if uploadResp.StatusCode != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d", uploadResp.StatusCode)
	}
	if len(env.storage.objects) != 1 {
		t.Fatalf("expected one stored object, got %d", len(env.storage.objects))
	}

	resp, body = doJSON(t, env.client, http.MethodGet, uploadURL, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("attachment url: expected 200, got %d (%+v)", resp.StatusCode, body.Error)
	}
	data := mustDecode[map[string]any](t, body.Data)
	url, _ := data["url"].(string)
	if !strings.HasPrefix(url, "https://storage.local/maintenance-records/") {
		t.Fatalf("unexpected presigned url: %q", url)
	}
}

func TestMonthlyReport(t *testing.T) {
	env, done := newTestServer(t, nil)
	defer done()
	login(t, env, testAdminEmail, testAdminPassword)

	machine := createMachine(t, env, "PMP-500")
	for i, cost := range []float64{300, 700} {
		resp, body := doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/records", map[string]any{
			"machine_id":   machine.ID,
			"description":  fmt.Sprintf("Job %d", i),
			"cost":         cost,
			"performed_at": time.Date(2026, 5, 10+i, 8, 0, 0, 0, time.UTC).Format(time.RFC3339),
		}, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create record %d: expected 201, got %d (%+v)", i, resp.StatusCode, body.Error)
		}
	}
	// Outside the reporting month.
	resp, body := doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/records", map[string]any{
		"machine_id":   machine.ID,
		"description":  "June job",
		"cost":         999,
		"performed_at": time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create june record: expected 201, got %d (%+v)", resp.StatusCode, body.Error)
	}

	resp, body = doJSON(t, env.client, http.MethodGet, env.baseURL+"/api/v1/reports/maintenance?year=2026&month=5", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report: expected 200, got %d (%+v)", resp.StatusCode, body.Error)
	}
	report := mustDecode[struct {
		Year        int     `json:"year"`
		Month       int     `json:"month"`
		RecordCount int64   `json:"record_count"`
		TotalCost   float64 `json:"total_cost"`
	}](t, body.Data)
	if report.Year != 2026 || report.Month != 5 {
		t.Fatalf("unexpected report period: %+v", report)
	}
	if report.RecordCount != 2 || report.TotalCost != 1000 {
		t.Fatalf("unexpected totals: %+v", report)
	}

	// Month out of range fails validation.
	resp, body = doJSON(t, env.client, http.MethodGet, env.baseURL+"/api/v1/reports/maintenance?year=2026&month=13", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for month=13, got %d", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %+v", body.Error)
	}
}
