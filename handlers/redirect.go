package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"linkpulse/clientip"
	"linkpulse/geoip"
	"linkpulse/models"
	"linkpulse/services"
	"linkpulse/useragent"
)

// LinkResolver resolves a path segment against short codes and aliases.
type LinkResolver interface {
	ResolveCode(ctx context.Context, code string) (*models.ShortLink, error)
}

// ClickRecorder persists one click event.
type ClickRecorder interface {
	Record(ctx context.Context, event *models.ClickEvent) error
}

// GeoResolver maps an IP to a location, never failing.
type GeoResolver interface {
	Lookup(ip string) geoip.Location
}

// reservedPaths are path segments that must never be treated as short
// codes. They short-circuit to 404 before any store lookup.
var reservedPaths = map[string]bool{
	"api":         true,
	"uploads":     true,
	"favicon.ico": true,
	"health":      true,
}

const recordTimeout = 10 * time.Second

// RedirectHandler serves the redirect endpoint. The redirect response is
// bounded by the store lookup only; geolocation and click persistence run
// in a detached goroutine after the response is sent.
type RedirectHandler struct {
	links  LinkResolver
	clicks ClickRecorder
	geo    GeoResolver
	log    zerolog.Logger
}

func NewRedirectHandler(links LinkResolver, clicks ClickRecorder, geo GeoResolver, log zerolog.Logger) *RedirectHandler {
	return &RedirectHandler{links: links, clicks: clicks, geo: geo, log: log}
}

// Redirect handles GET /:code.
func (h *RedirectHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	if reservedPaths[code] {
		c.String(http.StatusNotFound, "Short link not found")
		return
	}

	link, err := h.links.ResolveCode(c.Request.Context(), code)
	if errors.Is(err, services.ErrLinkNotFound) {
		c.String(http.StatusNotFound, "Short link not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("short code resolve failed")
		c.String(http.StatusInternalServerError, "Something went wrong")
		return
	}

	// Request data must be captured before the handler returns; gin may
	// reuse the request afterwards.
	ua := c.Request.UserAgent()
	ip := clientip.FromRequest(c.Request)
	referrer := c.Request.Referer()

	c.Redirect(http.StatusFound, link.OriginalURL)

	go h.recordClick(link.ID, ua, ip, referrer)
}

// recordClick enriches and persists one click. It runs detached from the
// request lifecycle: every failure is logged and dropped, nothing here can
// reach the visitor who was already redirected.
func (h *RedirectHandler) recordClick(linkID uint, ua, ip, referrer string) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Uint("link_id", linkID).Msg("click recording panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	info := useragent.Classify(ua)
	loc := h.geo.Lookup(ip)

	event := &models.ClickEvent{
		ShortLinkID: linkID,
		City:        loc.City,
		Country:     loc.Country,
		Region:      loc.Region,
		DeviceType:  info.DeviceType,
		Browser:     info.Browser,
		OS:          info.OS,
		IPAddress:   ip,
		Referrer:    referrer,
	}

	if err := h.clicks.Record(ctx, event); err != nil {
		h.log.Error().Err(err).Uint("link_id", linkID).Msg("failed to record click")
	}
}

// Lookup handles GET /api/lookup/:code — the destination as JSON, without
// a redirect and without recording a click.
func (h *RedirectHandler) Lookup(c *gin.Context) {
	code := c.Param("code")

	link, err := h.links.ResolveCode(c.Request.Context(), code)
	if errors.Is(err, services.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Short link not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("short code lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":           link.ID,
			"original_url": link.OriginalURL,
		},
	})
}
