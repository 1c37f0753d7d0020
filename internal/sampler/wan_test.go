package sampler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bc-dunia/sysinfo/internal/config"
	"github.com/bc-dunia/sysinfo/internal/sampler"
)

func newLookup(url string, timeout time.Duration, retries int) *sampler.WANLookup {
	return sampler.NewWANLookup(config.WANConfig{
		URL:        url,
		TimeoutMS:  int(timeout / time.Millisecond),
		MaxRetries: retries,
	}, sampler.WithRetryDelay(time.Millisecond))
}

func TestWANLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/plain" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		fmt.Fprint(w, "198.51.100.23\n")
	}))
	defer srv.Close()

	ip, err := newLookup(srv.URL, time.Second, 0).Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ip != "198.51.100.23" {
		t.Errorf("Resolve() = %q", ip)
	}
}

func TestWANLookup_IPv6(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "2001:db8::1")
	}))
	defer srv.Close()

	ip, err := newLookup(srv.URL, time.Second, 0).Resolve(context.Background())
	if err != nil || ip != "2001:db8::1" {
		t.Errorf("Resolve() = %q, %v", ip, err)
	}
}

func TestWANLookup_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "198.51.100.23")
	}))
	defer srv.Close()

	ip, err := newLookup(srv.URL, 2*time.Second, 2).Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ip != "198.51.100.23" {
		t.Errorf("Resolve() = %q", ip)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestWANLookup_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newLookup(srv.URL, 2*time.Second, 1).Resolve(context.Background())
	var statusErr *sampler.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Resolve() error = %v, want 503 status error", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestWANLookup_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newLookup(srv.URL, time.Second, 3).Resolve(context.Background())
	var statusErr *sampler.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("Resolve() error = %v, want 404 status error", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1", got)
	}
}

func TestWANLookup_RejectsNonAddressBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>captive portal</html>")
	}))
	defer srv.Close()

	if _, err := newLookup(srv.URL, time.Second, 3).Resolve(context.Background()); err == nil {
		t.Fatal("Resolve() should reject a body that is not an IP address")
	}
}

func TestWANLookup_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	started := time.Now()
	_, err := newLookup(srv.URL, 100*time.Millisecond, 5).Resolve(context.Background())
	if err == nil {
		t.Fatal("Resolve() should fail when the service hangs")
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Errorf("Resolve() took %v, timeout not enforced", elapsed)
	}
}
