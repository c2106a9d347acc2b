package services

import (
	"context"

	"gorm.io/gorm"

	"linkpulse/models"
)

// ClickService persists click events. Inserts happen on the background path
// after the redirect response was already sent, so callers log failures
// instead of surfacing them.
type ClickService struct {
	db *gorm.DB
}

func NewClickService(db *gorm.DB) *ClickService {
	return &ClickService{db: db}
}

// Record inserts one click event, filling any empty field with its default.
func (s *ClickService) Record(ctx context.Context, event *models.ClickEvent) error {
	event.ApplyDefaults()
	return s.db.WithContext(ctx).Create(event).Error
}

// LinkAnalytics aggregates a link's recorded clicks.
type LinkAnalytics struct {
	TotalClicks int64               `json:"total_clicks"`
	Devices     map[string]int64    `json:"devices"`
	Browsers    map[string]int64    `json:"browsers"`
	Countries   map[string]int64    `json:"countries"`
	Events      []models.ClickEvent `json:"events"`
}

// Analytics returns the most recent click events for a link plus
// device/browser/country breakdowns.
func (s *ClickService) Analytics(ctx context.Context, linkID uint, limit int) (*LinkAnalytics, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	out := &LinkAnalytics{
		Devices:   make(map[string]int64),
		Browsers:  make(map[string]int64),
		Countries: make(map[string]int64),
	}

	err := s.db.WithContext(ctx).
		Model(&models.ClickEvent{}).
		Where("short_link_id = ?", linkID).
		Count(&out.TotalClicks).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Where("short_link_id = ?", linkID).
		Order("created_at desc").
		Limit(limit).
		Find(&out.Events).Error
	if err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}
	aggregate := func(column string, into map[string]int64) error {
		var rows []bucket
		err := s.db.WithContext(ctx).
			Model(&models.ClickEvent{}).
			Select(column+" as key, count(*) as count").
			Where("short_link_id = ?", linkID).
			Group(column).
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, row := range rows {
			into[row.Key] = row.Count
		}
		return nil
	}

	if err := aggregate("device_type", out.Devices); err != nil {
		return nil, err
	}
	if err := aggregate("browser", out.Browsers); err != nil {
		return nil, err
	}
	if err := aggregate("country", out.Countries); err != nil {
		return nil, err
	}
	return out, nil
}

// CountForLink returns the number of clicks recorded for one link.
func (s *ClickService) CountForLink(ctx context.Context, linkID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ClickEvent{}).
		Where("short_link_id = ?", linkID).
		Count(&count).Error
	return count, err
}
