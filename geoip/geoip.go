// Package geoip resolves an IP address to a coarse location through an
// external lookup service. The lookup is best-effort: every failure mode
// degrades to Unknown values and no error ever reaches the caller, since
// the result only enriches analytics recorded after a redirect was already
// served.
package geoip

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Location is the resolved geolocation of a caller.
type Location struct {
	City    string
	Country string
	Region  string
}

var (
	unknownLocation = Location{City: "Unknown", Country: "Unknown", Region: "Unknown"}
	localLocation   = Location{City: "Local", Country: "Local", Region: "Local"}
)

// Resolver queries an ip-api.com compatible JSON endpoint.
type Resolver struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewResolver builds a Resolver against the given base URL. The timeout
// bounds the external call so background click recording cannot pile up
// goroutines behind a slow provider.
func NewResolver(baseURL string, timeout time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type lookupResponse struct {
	Status  string `json:"status"`
	City    string `json:"city"`
	Country string `json:"country"`
	Region  string `json:"regionName"`
}

// Lookup resolves ip to a Location. Loopback and private addresses
// short-circuit to Local values without a network call.
func (r *Resolver) Lookup(ip string) Location {
	if isLocalAddress(ip) {
		return localLocation
	}

	resp, err := r.client.Get(fmt.Sprintf("%s/json/%s", r.baseURL, ip))
	if err != nil {
		r.log.Warn().Err(err).Str("ip", ip).Msg("geolocation lookup failed")
		return unknownLocation
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Warn().Int("status", resp.StatusCode).Str("ip", ip).Msg("geolocation lookup returned non-OK status")
		return unknownLocation
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		r.log.Warn().Err(err).Str("ip", ip).Msg("geolocation response malformed")
		return unknownLocation
	}
	if body.Status != "success" {
		return unknownLocation
	}

	loc := Location{City: body.City, Country: body.Country, Region: body.Region}
	if loc.City == "" {
		loc.City = "Unknown"
	}
	if loc.Country == "" {
		loc.Country = "Unknown"
	}
	if loc.Region == "" {
		loc.Region = "Unknown"
	}
	return loc
}

func isLocalAddress(ip string) bool {
	if ip == "" || ip == "localhost" || ip == "Unknown" {
		return true
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() || parsed.IsUnspecified()
}
