package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/meetscribe/meetscribe/internal/export"
)

// --- Export download ---

func TestExportHandler_CSVDownload(t *testing.T) {
	ms, id := analysisFixture()
	h := NewExportHandler(ms)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id.String()+"/export", nil)
	r = withURLParams(r, map[string]string{"analysisID": id.String()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, `attachment; filename="action-items-`) || !strings.HasSuffix(cd, `.csv"`) {
		t.Errorf("unexpected content disposition: %s", cd)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, `"Action","Owner","Deadline","Priority","Remarks","Status"`) {
		t.Errorf("missing header row: %q", body)
	}
	if !strings.Contains(body, `"Send report"`) || !strings.Contains(body, `"Fix bug"`) {
		t.Errorf("missing item rows: %q", body)
	}
}

func TestExportHandler_AppliesViewParams(t *testing.T) {
	ms, id := analysisFixture()
	h := NewExportHandler(ms)

	r := httptest.NewRequest(http.MethodGet,
		"/api/v1/analyses/"+id.String()+"/export?show_completed=false", nil)
	r = withURLParams(r, map[string]string{"analysisID": id.String()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, `"Fix bug"`) {
		t.Errorf("completed item should be filtered out: %q", body)
	}
	if !strings.Contains(body, `"Send report"`) {
		t.Errorf("pending item missing: %q", body)
	}
}

func TestExportHandler_InvalidSortParam(t *testing.T) {
	ms, id := analysisFixture()
	h := NewExportHandler(ms)

	r := httptest.NewRequest(http.MethodGet,
		"/api/v1/analyses/"+id.String()+"/export?sort=bogus", nil)
	r = withURLParams(r, map[string]string{"analysisID": id.String()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	status, code := parseErr(t, rec)
	if status != http.StatusBadRequest || code != "INVALID_REQUEST" {
		t.Errorf("expected 400 INVALID_REQUEST, got %d %s", status, code)
	}
}

func TestExportHandler_InvalidID(t *testing.T) {
	ms, _ := analysisFixture()
	h := NewExportHandler(ms)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/bad/export", nil)
	r = withURLParams(r, map[string]string{"analysisID": "bad"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	status, code := parseErr(t, rec)
	if status != http.StatusBadRequest || code != "INVALID_REQUEST" {
		t.Errorf("expected 400 INVALID_REQUEST, got %d %s", status, code)
	}
}

// --- Share ---

type mockShareService struct {
	fn func(ctx context.Context, analysisID uuid.UUID) (string, string, error)
}

func (m *mockShareService) ShareCSV(ctx context.Context, analysisID uuid.UUID) (string, string, error) {
	return m.fn(ctx, analysisID)
}

func shareReq(id string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/share/"+id, nil)
	return withURLParams(r, map[string]string{"analysisID": id})
}

func TestShareHandler_Success(t *testing.T) {
	id := uuid.New()
	h := NewShareHandler(&mockShareService{fn: func(_ context.Context, gotID uuid.UUID) (string, string, error) {
		if gotID != id {
			t.Errorf("unexpected id: %s", gotID)
		}
		return `"Action","Owner","Deadline","Priority","Remarks","Status"`, "action-items-" + id.String()[:8] + ".csv", nil
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, shareReq(id.String()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, id.String()[:8]) {
		t.Errorf("filename should carry the id prefix: %s", cd)
	}
}

func TestShareHandler_NoItems(t *testing.T) {
	h := NewShareHandler(&mockShareService{fn: func(_ context.Context, _ uuid.UUID) (string, string, error) {
		return "", "", export.ErrNoItems
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, shareReq(uuid.NewString()))

	status, code := parseErr(t, rec)
	if status != http.StatusNotFound || code != "NO_ITEMS_FOUND" {
		t.Errorf("expected 404 NO_ITEMS_FOUND, got %d %s", status, code)
	}
}

func TestShareHandler_StoreFailure(t *testing.T) {
	h := NewShareHandler(&mockShareService{fn: func(_ context.Context, _ uuid.UUID) (string, string, error) {
		return "", "", errors.New("connection reset")
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, shareReq(uuid.NewString()))

	status, code := parseErr(t, rec)
	if status != http.StatusInternalServerError || code != "INTERNAL_ERROR" {
		t.Errorf("expected 500 INTERNAL_ERROR, got %d %s", status, code)
	}
}

func TestShareHandler_InvalidID(t *testing.T) {
	h := NewShareHandler(&mockShareService{fn: func(_ context.Context, _ uuid.UUID) (string, string, error) {
		t.Fatal("service should not be called")
		return "", "", nil
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, shareReq("not-a-uuid"))

	status, code := parseErr(t, rec)
	if status != http.StatusBadRequest || code != "INVALID_REQUEST" {
		t.Errorf("expected 400 INVALID_REQUEST, got %d %s", status, code)
	}
}
