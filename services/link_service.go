package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"gorm.io/gorm"

	"linkpulse/models"
)

const (
	charset    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength = 6
)

var (
	ErrLinkNotFound = errors.New("short link not found")
	ErrAliasTaken   = errors.New("custom alias already in use")
	ErrEmptyURL     = errors.New("original URL cannot be empty")
)

// LinkService owns ShortLink persistence.
type LinkService struct {
	db *gorm.DB
}

func NewLinkService(db *gorm.DB) *LinkService {
	return &LinkService{db: db}
}

// ResolveCode finds a link whose generated short code or custom alias equals
// the given path segment. The only expected negative outcome is
// ErrLinkNotFound.
func (s *LinkService) ResolveCode(ctx context.Context, code string) (*models.ShortLink, error) {
	var link models.ShortLink
	err := s.db.WithContext(ctx).
		Where("short_code = ? OR custom_alias = ?", code, code).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Create stores a new short link for userID. When customAlias is non-empty
// it must not collide with any existing code or alias.
func (s *LinkService) Create(ctx context.Context, userID uint, title, originalURL, customAlias string) (*models.ShortLink, error) {
	if originalURL == "" {
		return nil, ErrEmptyURL
	}

	if customAlias != "" {
		var existing models.ShortLink
		err := s.db.WithContext(ctx).
			Where("short_code = ? OR custom_alias = ?", customAlias, customAlias).
			First(&existing).Error
		if err == nil {
			return nil, ErrAliasTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	shortCode, err := generateShortCode()
	if err != nil {
		return nil, err
	}

	link := models.ShortLink{
		UserID:      userID,
		Title:       title,
		OriginalURL: originalURL,
		ShortCode:   shortCode,
	}
	if customAlias != "" {
		link.CustomAlias = &customAlias
	}

	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// SetQRCodeURL stores the uploaded QR image location on an existing link.
func (s *LinkService) SetQRCodeURL(ctx context.Context, linkID uint, url string) error {
	return s.db.WithContext(ctx).
		Model(&models.ShortLink{}).
		Where("id = ?", linkID).
		Update("qr_code_url", url).Error
}

// List returns a page of the user's links, newest first, optionally
// filtered by a case-insensitive title search.
func (s *LinkService) List(ctx context.Context, userID uint, page, pageSize int, search string) ([]models.ShortLink, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	query := s.db.WithContext(ctx).Model(&models.ShortLink{}).Where("user_id = ?", userID)
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var links []models.ShortLink
	err := query.
		Order("created_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&links).Error
	if err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// GetByID returns the user's link or ErrLinkNotFound. Links of other users
// are indistinguishable from missing ones.
func (s *LinkService) GetByID(ctx context.Context, linkID, userID uint) (*models.ShortLink, error) {
	var link models.ShortLink
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", linkID, userID).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Delete removes the user's link. Click events go with it via the cascade
// on the foreign key.
func (s *LinkService) Delete(ctx context.Context, linkID, userID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", linkID, userID).
		Delete(&models.ShortLink{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func generateShortCode() (string, error) {
	code := make([]byte, codeLength)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := 0; i < codeLength; i++ {
		randomIndex, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			return "", err
		}
		code[i] = charset[randomIndex.Int64()]
	}
	return string(code), nil
}
