package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hamed0406/urlcheck/internal/domain"
)

func settingsFor(url string, code int, timeout time.Duration) domain.Settings {
	return domain.NewSettings(url, code, 5*time.Second, timeout)
}

func TestHTTPProber_ExpectedCodeSucceeds(t *testing.T) {
	seen := make(chan *http.Request, 1)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Clone(context.Background())
		w.WriteHeader(200)
	}))
	defer s.Close()

	out := NewHTTPProber("", "urlcheck-test").Probe(context.Background(), settingsFor(s.URL, 200, 2*time.Second))
	if !out.Success || out.StatusCode != 200 || out.Reason != "" {
		t.Fatalf("want success, got %+v", out)
	}
	r := <-seen
	if r.Method != http.MethodHead {
		t.Fatalf("want HEAD, got %s", r.Method)
	}
	if r.UserAgent() != "urlcheck-test" {
		t.Fatalf("user agent not set, got %q", r.UserAgent())
	}
	if out.TargetURL != s.URL || out.LatencyMS < 0 || out.Timestamp.IsZero() {
		t.Fatalf("outcome metadata: %+v", out)
	}
}

func TestHTTPProber_MismatchReason(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer s.Close()

	out := NewHTTPProber("HEAD", "").Probe(context.Background(), settingsFor(s.URL, 200, 2*time.Second))
	if out.Success {
		t.Fatalf("want failure, got %+v", out)
	}
	if out.StatusCode != 404 || out.Reason != "404 <> 200" {
		t.Fatalf("want 404 <> 200, got %d %q", out.StatusCode, out.Reason)
	}
}

func TestHTTPProber_NonDefaultExpectedCode(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(204)
	}))
	defer s.Close()

	out := NewHTTPProber("", "").Probe(context.Background(), settingsFor(s.URL, 204, 2*time.Second))
	if !out.Success {
		t.Fatalf("204 expected and received, got %+v", out)
	}
}

func TestHTTPProber_GETDrainsBody(t *testing.T) {
	methods := make(chan string, 1)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods <- r.Method
		w.Write(make([]byte, 4*maxDrain))
	}))
	defer s.Close()

	out := NewHTTPProber("get", "").Probe(context.Background(), settingsFor(s.URL, 200, 2*time.Second))
	if method := <-methods; !out.Success || method != http.MethodGet {
		t.Fatalf("want GET success, got %s %+v", method, out)
	}
}

func TestHTTPProber_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	out := NewHTTPProber("", "").Probe(context.Background(), settingsFor("http://"+addr, 200, time.Second))
	if out.Success || out.StatusCode != 0 {
		t.Fatalf("want transport failure, got %+v", out)
	}
	if out.Reason == "" {
		t.Fatalf("want non-empty reason")
	}
}

func TestHTTPProber_HangingServerTimesOut(t *testing.T) {
	release := make(chan struct{})
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer s.Close()
	defer close(release)

	start := time.Now()
	out := NewHTTPProber("", "").Probe(context.Background(), settingsFor(s.URL, 200, time.Second))
	elapsed := time.Since(start)
	if out.Success || out.Reason == "" {
		t.Fatalf("want timeout failure, got %+v", out)
	}
	if elapsed > 3*time.Second {
		t.Fatalf("probe took %v, want about 1s", elapsed)
	}
}

func TestHTTPProber_MalformedURL(t *testing.T) {
	out := NewHTTPProber("", "").Probe(context.Background(), settingsFor("://not a url", 200, time.Second))
	if out.Success || out.Reason == "" {
		t.Fatalf("want failure with reason, got %+v", out)
	}
}

func TestHostOf(t *testing.T) {
	cases := []struct{ in, want string }{
		{in: "https://www.google.com", want: "www.google.com"},
		{in: "http://127.0.0.1:8080/health", want: "127.0.0.1"},
		{in: "  https://Example.org/x?y=1  ", want: "Example.org"},
		{in: "::::", want: ""},
	}
	for _, c := range cases {
		if got := HostOf(c.in); got != c.want {
			t.Fatalf("HostOf(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCheckDNS_OfflineClasses(t *testing.T) {
	if got := CheckDNS(context.Background(), "https://x").Class; got != DNSInvalidName {
		t.Fatalf("url passed as host: %s", got)
	}
	if got := CheckDNS(context.Background(), "").Class; got != DNSInvalidName {
		t.Fatalf("empty host: %s", got)
	}
	st := CheckDNS(context.Background(), "127.0.0.1")
	if st.Class != DNSIPLiteral || len(st.IPs) != 1 {
		t.Fatalf("ip literal: %+v", st)
	}
}
