package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(mw func(http.Handler) http.Handler, header, value string) int {
	req := httptest.NewRequest(http.MethodPut, "/api/settings", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireControl_AllowsControlKey_BlocksReadKey(t *testing.T) {
	keys := Keys{Read: []string{"read_key"}, Control: []string{"ctl_key"}}
	mw := RequireControl(keys)

	if code := serve(mw, "X-API-Key", "ctl_key"); code != http.StatusOK {
		t.Fatalf("control key should pass; got %d", code)
	}
	if code := serve(mw, "Authorization", "Bearer ctl_key"); code != http.StatusOK {
		t.Fatalf("bearer control key should pass; got %d", code)
	}
	if code := serve(mw, "X-API-Key", "read_key"); code != http.StatusForbidden {
		t.Fatalf("read key should be forbidden; got %d", code)
	}
	if code := serve(mw, "", ""); code != http.StatusUnauthorized {
		t.Fatalf("missing key should be 401; got %d", code)
	}
}

func TestRequireAny(t *testing.T) {
	keys := Keys{Read: []string{"read_key"}, Control: []string{"ctl_key"}}
	mw := RequireAny(keys)
	for _, k := range []string{"read_key", "ctl_key"} {
		if code := serve(mw, "X-API-Key", k); code != http.StatusOK {
			t.Fatalf("%s should pass; got %d", k, code)
		}
	}
	if code := serve(mw, "X-API-Key", "nope"); code != http.StatusUnauthorized {
		t.Fatalf("unknown key should be 401; got %d", code)
	}
}

func TestNoKeysConfigured_AllowsAll(t *testing.T) {
	if code := serve(RequireControl(Keys{}), "", ""); code != http.StatusOK {
		t.Fatalf("control without keys: %d", code)
	}
	if code := serve(RequireAny(Keys{}), "", ""); code != http.StatusOK {
		t.Fatalf("any without keys: %d", code)
	}
}
