package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"linkpulse/auth"
	"linkpulse/qrcode"
	"linkpulse/services"
	"linkpulse/storage"
)

type CreateLinkRequest struct {
	Title       string `json:"title"`
	OriginalURL string `json:"original_url" binding:"required,url"`
	CustomAlias string `json:"custom_alias"`
}

// LinkHandler serves the authenticated CRUD surface over short links.
type LinkHandler struct {
	links   *services.LinkService
	clicks  *services.ClickService
	uploads storage.Uploader
	baseURL string
	log     zerolog.Logger
}

func NewLinkHandler(links *services.LinkService, clicks *services.ClickService, uploads storage.Uploader, baseURL string, log zerolog.Logger) *LinkHandler {
	return &LinkHandler{links: links, clicks: clicks, uploads: uploads, baseURL: baseURL, log: log}
}

// Create handles POST /api/urls. The QR image is generated and uploaded as
// part of creation; a failed upload leaves the link usable without a QR.
func (h *LinkHandler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.links.Create(c.Request.Context(), userID, req.Title, req.OriginalURL, req.CustomAlias)
	if errors.Is(err, services.ErrAliasTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Custom alias already in use"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shortURL := h.baseURL + "/" + link.ShortCode

	if png, err := qrcode.Generate(shortURL, 0); err != nil {
		h.log.Warn().Err(err).Uint("link_id", link.ID).Msg("QR generation failed")
	} else {
		key := fmt.Sprintf("qr/%s.png", uuid.NewString())
		url, err := h.uploads.Upload(c.Request.Context(), key, "image/png", png)
		if err != nil {
			h.log.Warn().Err(err).Uint("link_id", link.ID).Msg("QR upload failed")
		} else if err := h.links.SetQRCodeURL(c.Request.Context(), link.ID, url); err != nil {
			h.log.Warn().Err(err).Uint("link_id", link.ID).Msg("QR url save failed")
		} else {
			link.QRCodeURL = url
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           link.ID,
		"title":        link.Title,
		"original_url": link.OriginalURL,
		"short_code":   link.ShortCode,
		"custom_alias": link.CustomAlias,
		"short_url":    shortURL,
		"qr_code_url":  link.QRCodeURL,
		"created_at":   link.CreatedAt,
	})
}

// List handles GET /api/urls with pagination and title search.
func (h *LinkHandler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	search := c.Query("q")

	links, total, err := h.links.List(c.Request.Context(), userID, page, pageSize, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list links"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"links": links,
		"total": total,
		"page":  page,
		"size":  pageSize,
	})
}

// Get handles GET /api/urls/:id.
func (h *LinkHandler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	linkID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID"})
		return
	}

	link, err := h.links.GetByID(c.Request.Context(), uint(linkID), userID)
	if errors.Is(err, services.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load link"})
		return
	}

	clickCount, err := h.clicks.CountForLink(c.Request.Context(), link.ID)
	if err != nil {
		h.log.Warn().Err(err).Uint("link_id", link.ID).Msg("click count failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           link.ID,
		"title":        link.Title,
		"original_url": link.OriginalURL,
		"short_code":   link.ShortCode,
		"custom_alias": link.CustomAlias,
		"short_url":    h.baseURL + "/" + link.ShortCode,
		"qr_code_url":  link.QRCodeURL,
		"click_count":  clickCount,
		"created_at":   link.CreatedAt,
	})
}

// Delete handles DELETE /api/urls/:id. Click events cascade with the link.
func (h *LinkHandler) Delete(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	linkID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID"})
		return
	}

	err = h.links.Delete(c.Request.Context(), uint(linkID), userID)
	if errors.Is(err, services.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}

// Analytics handles GET /api/urls/:id/analytics.
func (h *LinkHandler) Analytics(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	linkID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID"})
		return
	}

	link, err := h.links.GetByID(c.Request.Context(), uint(linkID), userID)
	if errors.Is(err, services.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load link"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	analytics, err := h.clicks.Analytics(c.Request.Context(), link.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"link_id":   link.ID,
		"analytics": analytics,
	})
}
