package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClickEventApplyDefaults(t *testing.T) {
	event := &ClickEvent{ShortLinkID: 1}
	event.ApplyDefaults()

	assert.Equal(t, "Unknown", event.City)
	assert.Equal(t, "Unknown", event.Country)
	assert.Equal(t, "Unknown", event.Region)
	assert.Equal(t, "desktop", event.DeviceType)
	assert.Equal(t, "Direct", event.Referrer)
}

func TestClickEventApplyDefaultsKeepsValues(t *testing.T) {
	event := &ClickEvent{
		ShortLinkID: 1,
		City:        "Berlin",
		Country:     "Germany",
		Region:      "BE",
		DeviceType:  "mobile",
		Referrer:    "https://example.com",
	}
	event.ApplyDefaults()

	assert.Equal(t, "Berlin", event.City)
	assert.Equal(t, "Germany", event.Country)
	assert.Equal(t, "BE", event.Region)
	assert.Equal(t, "mobile", event.DeviceType)
	assert.Equal(t, "https://example.com", event.Referrer)
}
