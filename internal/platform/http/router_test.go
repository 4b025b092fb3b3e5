package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/weiwei-tsao/tgchecker/internal/business/lookup"
	"github.com/weiwei-tsao/tgchecker/pkg/model"
	"github.com/weiwei-tsao/tgchecker/pkg/tgchecker"
)

type stubChecker struct {
	data       map[model.PhoneNumber]model.Status
	err        error
	configured bool
	got        []string
}

func (s *stubChecker) Check(ctx context.Context, numbers []string) (model.CheckResult, error) {
	s.got = numbers
	if s.err != nil {
		return model.CheckResult{}, s.err
	}
	if _, err := tgchecker.BuildBatch(numbers); err != nil {
		return model.CheckResult{}, err
	}
	return model.CheckResult{Data: s.data, Status: "ok"}, nil
}

func (s *stubChecker) IsConfigured() bool { return s.configured }

func newTestRouter(checker *stubChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(lookup.NewService(checker, nil), "*")
}

func serve(router *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubChecker{configured: true})

	w := serve(router, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["configured"] != true || body["history"] != false {
		t.Errorf("unexpected health body %v", body)
	}
}

func TestCheckQuery(t *testing.T) {
	checker := &stubChecker{configured: true, data: map[model.PhoneNumber]model.Status{
		"+16502530000": model.StatusSession,
		"442070313000": model.StatusFresh,
	}}
	router := newTestRouter(checker)

	w := serve(router, http.MethodGet, "/api/check?numbers=%2B16502530000,442070313000", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var report model.CheckReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Numbers) != 2 {
		t.Fatalf("expected 2 numbers, got %d", len(report.Numbers))
	}
	if report.Numbers[0].Status != model.StatusSession || report.Numbers[1].Status != model.StatusFresh {
		t.Errorf("unexpected statuses: %+v", report.Numbers)
	}
	if len(checker.got) != 2 || checker.got[0] != "+16502530000" {
		t.Errorf("unexpected numbers passed to checker: %v", checker.got)
	}
}

func TestCheckBody(t *testing.T) {
	checker := &stubChecker{configured: true, data: map[model.PhoneNumber]model.Status{"+16502530000": model.StatusBan}}
	router := newTestRouter(checker)

	w := serve(router, http.MethodPost, "/api/check", []byte(`{"numbers":["+1 650 253 0000"]}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = serve(router, http.MethodPost, "/api/check", []byte(`{"nums":[]}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing numbers, got %d", w.Code)
	}
}

func TestCheckErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target string
		want   int
	}{
		{name: "missing key", err: tgchecker.ErrAPIKeyMissing, target: "/api/check?numbers=12345", want: http.StatusServiceUnavailable},
		{name: "upstream failure", err: &tgchecker.RequestError{StatusCode: 500}, target: "/api/check?numbers=12345", want: http.StatusBadGateway},
		{name: "invalid number", target: "/api/check?numbers=abc", want: http.StatusBadRequest},
		{name: "no numbers", target: "/api/check", want: http.StatusBadRequest},
		{name: "not in response", target: "/api/check/12345", want: http.StatusNotFound},
		{name: "history disabled", target: "/api/history", want: http.StatusNotImplemented},
		{name: "latest disabled", target: "/api/numbers/12345/latest", want: http.StatusNotImplemented},
		{name: "unknown failure", err: errors.New("boom"), target: "/api/check?numbers=12345", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &stubChecker{configured: true, err: tt.err, data: map[model.PhoneNumber]model.Status{}}
			router := newTestRouter(checker)

			w := serve(router, http.MethodGet, tt.target, nil)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestCheckNumberRoute(t *testing.T) {
	checker := &stubChecker{configured: true, data: map[model.PhoneNumber]model.Status{"16502530000": "fresh"}}
	router := newTestRouter(checker)

	w := serve(router, http.MethodGet, "/api/check/16502530000", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var status model.NumberStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != model.StatusFresh || status.Region != "US" {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&stubChecker{configured: true})

	w := serve(router, http.MethodOptions, "/api/check", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("expected CORS headers")
	}
}
