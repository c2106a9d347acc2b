package models

import (
	"time"
)

// ClickEvent is one recorded visit to a resolved short link. Rows are
// append-only and removed only when the owning ShortLink is deleted.
type ClickEvent struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ShortLinkID uint      `json:"short_link_id" gorm:"index;not null"`
	City        string    `json:"city" gorm:"size:100;default:'Unknown'"`
	Country     string    `json:"country" gorm:"size:100;default:'Unknown'"`
	Region      string    `json:"region" gorm:"size:100;default:'Unknown'"`
	DeviceType  string    `json:"device_type" gorm:"size:20;default:'desktop'"`
	Browser     string    `json:"browser" gorm:"size:50"`
	OS          string    `json:"os" gorm:"size:50"`
	IPAddress   string    `json:"ip_address" gorm:"size:45"`
	Referrer    string    `json:"referrer" gorm:"size:255;default:'Direct'"`
	CreatedAt   time.Time `json:"created_at"`
}

// ApplyDefaults fills empty analytics fields with their fallback values.
func (e *ClickEvent) ApplyDefaults() {
	if e.City == "" {
		e.City = "Unknown"
	}
	if e.Country == "" {
		e.Country = "Unknown"
	}
	if e.Region == "" {
		e.Region = "Unknown"
	}
	if e.DeviceType == "" {
		e.DeviceType = "desktop"
	}
	if e.Referrer == "" {
		e.Referrer = "Direct"
	}
}
