package models

import (
	"time"
)

// ShortLink maps a generated short code (and an optional user-chosen alias)
// to a destination URL. CustomAlias is a pointer so that links without an
// alias store NULL, keeping the unique index satisfiable for many rows.
type ShortLink struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index;not null"`
	Title       string    `json:"title"`
	OriginalURL string    `json:"original_url" gorm:"not null"`
	ShortCode   string    `json:"short_code" gorm:"uniqueIndex;not null"`
	CustomAlias *string   `json:"custom_alias,omitempty" gorm:"uniqueIndex"`
	QRCodeURL   string    `json:"qr_code_url"`
	CreatedAt   time.Time `json:"created_at"`

	ClickEvents []ClickEvent `json:"-" gorm:"foreignKey:ShortLinkID;constraint:OnDelete:CASCADE"`
}
