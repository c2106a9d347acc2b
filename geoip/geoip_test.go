package geoip

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) (*Resolver, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewResolver(srv.URL, time.Second, zerolog.Nop()), &calls
}

func TestLookupLocalAddresses(t *testing.T) {
	resolver, calls := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","city":"X","country":"Y","regionName":"Z"}`))
	})

	for _, ip := range []string{"127.0.0.1", "::1", "localhost", "10.0.0.5", "192.168.1.10", "172.16.0.1", "", "Unknown"} {
		loc := resolver.Lookup(ip)
		assert.Equal(t, Location{City: "Local", Country: "Local", Region: "Local"}, loc, "ip %q", ip)
	}
	assert.EqualValues(t, 0, atomic.LoadInt64(calls), "local addresses must not trigger an outbound call")
}

func TestLookupSuccess(t *testing.T) {
	resolver, calls := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/8.8.8.8", r.URL.Path)
		w.Write([]byte(`{"status":"success","city":"Mountain View","country":"United States","regionName":"California"}`))
	})

	loc := resolver.Lookup("8.8.8.8")
	assert.Equal(t, Location{City: "Mountain View", Country: "United States", Region: "California"}, loc)
	assert.EqualValues(t, 1, atomic.LoadInt64(calls))
}

func TestLookupMissingFieldsDefaultToUnknown(t *testing.T) {
	resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","country":"France"}`))
	})

	loc := resolver.Lookup("8.8.8.8")
	assert.Equal(t, Location{City: "Unknown", Country: "France", Region: "Unknown"}, loc)
}

func TestLookupProviderFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-success provider status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"fail","message":"private range"}`))
			},
		},
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, _ := newTestResolver(t, tt.handler)
			loc := resolver.Lookup("8.8.8.8")
			assert.Equal(t, Location{City: "Unknown", Country: "Unknown", Region: "Unknown"}, loc)
		})
	}
}

func TestLookupNetworkFailure(t *testing.T) {
	// Port from a server that was already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	resolver := NewResolver(url, 200*time.Millisecond, zerolog.Nop())
	loc := resolver.Lookup("8.8.8.8")
	assert.Equal(t, Location{City: "Unknown", Country: "Unknown", Region: "Unknown"}, loc)
}
