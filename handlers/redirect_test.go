package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkpulse/geoip"
	"linkpulse/models"
	"linkpulse/services"
)

type stubResolver struct {
	link  *models.ShortLink
	err   error
	calls int32
}

func (s *stubResolver) ResolveCode(_ context.Context, code string) (*models.ShortLink, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	if s.link != nil && (s.link.ShortCode == code || (s.link.CustomAlias != nil && *s.link.CustomAlias == code)) {
		return s.link, nil
	}
	return nil, services.ErrLinkNotFound
}

type stubRecorder struct {
	events chan *models.ClickEvent
	err    error
}

func newStubRecorder() *stubRecorder {
	return &stubRecorder{events: make(chan *models.ClickEvent, 16)}
}

func (s *stubRecorder) Record(_ context.Context, event *models.ClickEvent) error {
	s.events <- event
	return s.err
}

type stubGeo struct {
	loc   geoip.Location
	calls int32
}

func (s *stubGeo) Lookup(string) geoip.Location {
	atomic.AddInt32(&s.calls, 1)
	return s.loc
}

func testLink() *models.ShortLink {
	alias := "mysite"
	return &models.ShortLink{
		ID:          42,
		UserID:      7,
		OriginalURL: "https://example.com/landing",
		ShortCode:   "abc123",
		CustomAlias: &alias,
	}
}

func newRedirectRouter(resolver LinkResolver, recorder ClickRecorder, geo GeoResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRedirectHandler(resolver, recorder, geo, zerolog.Nop())
	router := gin.New()
	router.GET("/:code", h.Redirect)
	router.GET("/api/lookup/:code", h.Lookup)
	return router
}

func waitForClick(t *testing.T, recorder *stubRecorder) *models.ClickEvent {
	t.Helper()
	select {
	case event := <-recorder.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for click event")
		return nil
	}
}

func assertNoClick(t *testing.T, recorder *stubRecorder) {
	t.Helper()
	select {
	case event := <-recorder.events:
		t.Fatalf("unexpected click event recorded: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRedirectKnownCode(t *testing.T) {
	resolver := &stubResolver{link: testLink()}
	recorder := newStubRecorder()
	geo := &stubGeo{loc: geoip.Location{City: "Paris", Country: "France", Region: "IDF"}}
	router := newRedirectRouter(resolver, recorder, geo)

	for _, code := range []string{"abc123", "mysite"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/"+code, nil)
		router.ServeHTTP(rec, req)

		// The response is complete here; the click lands afterwards.
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://example.com/landing", rec.Header().Get("Location"))

		event := waitForClick(t, recorder)
		assert.Equal(t, uint(42), event.ShortLinkID)
	}
}

func TestRedirectRecordsRequestMetadata(t *testing.T) {
	resolver := &stubResolver{link: testLink()}
	recorder := newStubRecorder()
	geo := &stubGeo{loc: geoip.Location{City: "Paris", Country: "France", Region: "IDF"}}
	router := newRedirectRouter(resolver, recorder, geo)

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Mobile Safari/537.36")
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	req.Header.Set("Referer", "https://twitter.com/somepost")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)

	event := waitForClick(t, recorder)
	assert.Equal(t, "mobile", event.DeviceType)
	assert.Equal(t, "Chrome", event.Browser)
	assert.Equal(t, "Android", event.OS)
	assert.Equal(t, "1.2.3.4", event.IPAddress)
	assert.Equal(t, "https://twitter.com/somepost", event.Referrer)
	assert.Equal(t, "Paris", event.City)
	assert.Equal(t, "France", event.Country)
	assert.Equal(t, "IDF", event.Region)
}

func TestRedirectGeoFailureStillRecords(t *testing.T) {
	resolver := &stubResolver{link: testLink()}
	recorder := newStubRecorder()
	geo := &stubGeo{loc: geoip.Location{City: "Unknown", Country: "Unknown", Region: "Unknown"}}
	router := newRedirectRouter(resolver, recorder, geo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abc123", nil))

	require.Equal(t, http.StatusFound, rec.Code)

	event := waitForClick(t, recorder)
	assert.Equal(t, uint(42), event.ShortLinkID)
	assert.Equal(t, "Unknown", event.City)
	assert.Equal(t, "Unknown", event.Country)
	assert.Equal(t, "Unknown", event.Region)
}

func TestRedirectUnknownCode(t *testing.T) {
	resolver := &stubResolver{}
	recorder := newStubRecorder()
	router := newRedirectRouter(resolver, recorder, &stubGeo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nosuch", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.EqualValues(t, 1, atomic.LoadInt32(&resolver.calls))
	assertNoClick(t, recorder)
}

func TestRedirectReservedPrefixSkipsResolver(t *testing.T) {
	resolver := &stubResolver{link: testLink()}
	recorder := newStubRecorder()
	router := newRedirectRouter(resolver, recorder, &stubGeo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.EqualValues(t, 0, atomic.LoadInt32(&resolver.calls))
	assertNoClick(t, recorder)
}

func TestRedirectResolveFault(t *testing.T) {
	resolver := &stubResolver{err: errors.New("connection refused")}
	recorder := newStubRecorder()
	router := newRedirectRouter(resolver, recorder, &stubGeo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abc123", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assertNoClick(t, recorder)
}

func TestRedirectEachRequestRecordsOneClick(t *testing.T) {
	resolver := &stubResolver{link: testLink()}
	recorder := newStubRecorder()
	router := newRedirectRouter(resolver, recorder, &stubGeo{})

	const n = 5
	for i := 0; i < n; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abc123", nil))
		require.Equal(t, http.StatusFound, rec.Code)
	}
	for i := 0; i < n; i++ {
		waitForClick(t, recorder)
	}
	assertNoClick(t, recorder)
}

func TestRedirectRecorderFailureIsSwallowed(t *testing.T) {
	resolver := &stubResolver{link: testLink()}
	recorder := newStubRecorder()
	recorder.err = errors.New("insert failed")
	router := newRedirectRouter(resolver, recorder, &stubGeo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abc123", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	waitForClick(t, recorder)
}

func TestLookupKnownCode(t *testing.T) {
	resolver := &stubResolver{link: testLink()}
	recorder := newStubRecorder()
	router := newRedirectRouter(resolver, recorder, &stubGeo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lookup/abc123", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":42,"original_url":"https://example.com/landing"}}`, rec.Body.String())
	assertNoClick(t, recorder)
}

func TestLookupUnknownCode(t *testing.T) {
	resolver := &stubResolver{}
	recorder := newStubRecorder()
	router := newRedirectRouter(resolver, recorder, &stubGeo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lookup/nosuch", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Short link not found"}`, rec.Body.String())
	assertNoClick(t, recorder)
}
