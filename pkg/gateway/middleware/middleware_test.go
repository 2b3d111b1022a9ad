package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pathway-finder/webclient/pkg/catalog"
	"github.com/pathway-finder/webclient/pkg/handoff"
	"github.com/pathway-finder/webclient/pkg/workspace"
)

func newRegistry() *workspace.Registry {
	return workspace.NewRegistry(workspace.Deps{
		Backend: handoff.NewMemoryBackend(),
		Catalog: catalog.DefaultCatalog(),
	}, 10, 0)
}

func TestSessionIssuesCookieAndReusesWorkspace(t *testing.T) {
	reg := newRegistry()
	var seen []*workspace.Workspace
	handler := Session(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace.FromContext(r.Context())
		if !ok {
			t.Fatal("expected workspace in context")
		}
		seen = append(seen, ws)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || !cookies[0].HttpOnly {
		t.Fatalf("expected HttpOnly session cookie, got %+v", cookies)
	}
	if !cookies[0].Expires.IsZero() || cookies[0].MaxAge != 0 {
		t.Fatal("session cookie must not persist past the browser session")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("existing session should not be reissued")
	}
	if seen[0] != seen[1] {
		t.Fatal("expected the same workspace for the same cookie")
	}
}

func TestSessionReplacesMalformedCookie(t *testing.T) {
	handler := Session(newRegistry())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "../../etc"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !workspace.ValidSessionID(cookies[0].Value) {
		t.Fatalf("expected a fresh session id, got %+v", cookies)
	}
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	handler := RateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes %v", codes)
	}
}

func TestLoggingEchoesRequestID(t *testing.T) {
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "abc" || rec.Code != http.StatusTeapot {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("X-Request-ID"))
	}
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
