package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/giglink/backend/internal/middleware"
	"github.com/giglink/backend/internal/services"
	"github.com/giglink/backend/pkg/response"
)

type MusicianHandler struct {
	musicianService *services.MusicianService
	reviewService   *services.ReviewService
}

func NewMusicianHandler(db *gorm.DB) *MusicianHandler {
	return &MusicianHandler{
		musicianService: services.NewMusicianService(db),
		reviewService:   services.NewReviewService(db),
	}
}

// List is the public discovery endpoint
// GET /api/musicians
func (h *MusicianHandler) List(c *gin.Context) {
	var req services.MusicianListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.musicianService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "ok", resp)
}

// Get returns one public profile
// GET /api/musicians/:id
func (h *MusicianHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid profile id")
		return
	}

	profile, err := h.musicianService.GetByID(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "ok", profile)
}

// Reviews lists the reviews written about a musician
// GET /api/musicians/:id/reviews
func (h *MusicianHandler) Reviews(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid profile id")
		return
	}

	profile, err := h.musicianService.GetByID(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	reviews, err := h.reviewService.ListForMusician(profile.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "ok", reviews)
}

// UpdateProfile edits the caller's own profile
// PUT /api/musicians/me
func (h *MusicianHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.musicianService.UpdateProfile(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "profile updated", profile)
}

// AddPortfolioItem appends a work sample
// POST /api/musicians/me/portfolio
func (h *MusicianHandler) AddPortfolioItem(c *gin.Context) {
	var req services.PortfolioItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.musicianService.AddPortfolioItem(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "portfolio item added", item)
}

// DeletePortfolioItem removes a work sample
// DELETE /api/musicians/me/portfolio/:id
func (h *MusicianHandler) DeletePortfolioItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid portfolio item id")
		return
	}

	if err := h.musicianService.DeletePortfolioItem(middleware.GetUserID(c), uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "portfolio item deleted", nil)
}

// Instruments returns the instrument catalogue
// GET /api/instruments
func (h *MusicianHandler) Instruments(c *gin.Context) {
	instruments, err := h.musicianService.ListInstruments()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "ok", instruments)
}

// Genres returns the genre catalogue
// GET /api/genres
func (h *MusicianHandler) Genres(c *gin.Context) {
	genres, err := h.musicianService.ListGenres()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "ok", genres)
}
