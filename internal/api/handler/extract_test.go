package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meetscribe/meetscribe/internal/extract"
	"github.com/meetscribe/meetscribe/internal/review"
	"github.com/meetscribe/meetscribe/pkg/models"
)

// --- shared test helpers ---

// withURLParams injects chi route params into the request context.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonReq(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, _ := json.Marshal(body)
	r := httptest.NewRequest(method, target, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func parseData(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) map[string]any {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("expected %d, got %d: %s", wantStatus, rec.Code, rec.Body.String())
	}
	var env struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func parseErr(t *testing.T, rec *httptest.ResponseRecorder) (int, string) {
	t.Helper()
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, env.Error.Code
}

// --- mock ExtractionService ---

type mockExtractService struct {
	fn func(ctx context.Context, transcript string) (*review.Session, error)
}

func (m *mockExtractService) Extract(ctx context.Context, transcript string) (*review.Session, error) {
	return m.fn(ctx, transcript)
}

func sampleSession() *review.Session {
	return &review.Session{
		ID: "draft-11111111-1111-1111-1111-111111111111",
		Items: []models.DraftItem{
			{ID: "draft-a", Action: "Send report", Owner: "Alice", Deadline: "Friday", Priority: models.PriorityHigh},
		},
		Highlights: []string{"Budget approved."},
		CreatedAt:  time.Now().UTC(),
	}
}

// --- tests ---

func TestExtractHandler_Success(t *testing.T) {
	var gotTranscript string
	h := NewExtractHandler(&mockExtractService{fn: func(_ context.Context, transcript string) (*review.Session, error) {
		gotTranscript = transcript
		return sampleSession(), nil
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/extract",
		map[string]any{"transcript": "Alice: report by Friday."}))

	data := parseData(t, rec, http.StatusOK)
	if gotTranscript != "Alice: report by Friday." {
		t.Errorf("unexpected transcript: %q", gotTranscript)
	}
	if data["draft_id"] != "draft-11111111-1111-1111-1111-111111111111" {
		t.Errorf("unexpected draft_id: %v", data["draft_id"])
	}
	items, ok := data["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("unexpected items: %v", data["items"])
	}
	highlights, ok := data["highlights"].([]any)
	if !ok || len(highlights) != 1 {
		t.Errorf("unexpected highlights: %v", data["highlights"])
	}
}

func TestExtractHandler_InvalidJSON(t *testing.T) {
	h := NewExtractHandler(&mockExtractService{fn: func(_ context.Context, _ string) (*review.Session, error) {
		t.Fatal("service should not be called")
		return nil, nil
	}})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/extract", bytes.NewReader([]byte("{invalid")))
	h.ServeHTTP(rec, r)

	status, code := parseErr(t, rec)
	if status != http.StatusBadRequest || code != "INVALID_REQUEST" {
		t.Errorf("expected 400 INVALID_REQUEST, got %d %s", status, code)
	}
}

func TestExtractHandler_EmptyTranscript(t *testing.T) {
	h := NewExtractHandler(&mockExtractService{fn: func(_ context.Context, _ string) (*review.Session, error) {
		t.Fatal("service should not be called")
		return nil, nil
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/extract", map[string]any{"transcript": "  \n "}))

	status, code := parseErr(t, rec)
	if status != http.StatusBadRequest || code != "EMPTY_TRANSCRIPT" {
		t.Errorf("expected 400 EMPTY_TRANSCRIPT, got %d %s", status, code)
	}
}

func TestExtractHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no action items", extract.ErrNoActionItems, http.StatusUnprocessableEntity, "NO_ACTION_ITEMS"},
		{"provider unavailable", extract.ErrProviderUnavailable, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE"},
		{"timeout", extract.ErrExtractionTimeout, http.StatusGatewayTimeout, "AI_EXTRACTION_TIMEOUT"},
		{"malformed response", extract.ErrMalformedResponse, http.StatusBadGateway, "EXTRACTION_FAILED"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExtractHandler(&mockExtractService{fn: func(_ context.Context, _ string) (*review.Session, error) {
				return nil, tt.err
			}})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/extract", map[string]any{"transcript": "t"}))

			status, code := parseErr(t, rec)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("expected %d %s, got %d %s", tt.wantStatus, tt.wantCode, status, code)
			}
		})
	}
}

func TestExtractHandler_WrappedErrorsStillMap(t *testing.T) {
	wrapped := errors.Join(errors.New("item 2 has priority \"urgent\""), extract.ErrMalformedResponse)
	h := NewExtractHandler(&mockExtractService{fn: func(_ context.Context, _ string) (*review.Session, error) {
		return nil, wrapped
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/api/v1/extract", map[string]any{"transcript": "t"}))

	status, code := parseErr(t, rec)
	if status != http.StatusBadGateway || code != "EXTRACTION_FAILED" {
		t.Errorf("expected 502 EXTRACTION_FAILED, got %d %s", status, code)
	}
}
