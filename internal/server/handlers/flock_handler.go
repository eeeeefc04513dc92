package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/service/flock"
)

const maxImageBytes = 10 << 20

type intakeRequest struct {
	flock.IntakeInput
	Analysis models.AnalysisResult `json:"analysis"`
	ImageURL string                `json:"imageUrl"`
}

// ListBreeders returns the breeders of the signed-in user.
func (h *Handler) ListBreeders(c *gin.Context) {
	breeders, err := h.svc.Flock.ListBreeders(c.Request.Context(), current(c).User.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, breeders)
}

// AddBreeder creates a breeder.
func (h *Handler) AddBreeder(c *gin.Context) {
	var in flock.BreederInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	b, err := h.svc.Flock.AddBreeder(c.Request.Context(), current(c).User.ID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.svc.Session.Invalidate()
	c.JSON(http.StatusCreated, b)
}

// DeleteBreeder removes a breeder of the signed-in user.
func (h *Handler) DeleteBreeder(c *gin.Context) {
	ctx := c.Request.Context()
	s := current(c)
	id := c.Param("id")

	breeders, err := h.svc.Flock.ListBreeders(ctx, s.User.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	owned := false
	for _, b := range breeders {
		if b.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		h.fail(c, fmt.Errorf("%w: breeder %s", models.ErrNotFound, id))
		return
	}

	if err := h.svc.Flock.DeleteBreeder(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	if s.BreederID == id {
		if _, err := h.svc.Session.SwitchBreeder(ctx, ""); err != nil {
			h.fail(c, err)
			return
		}
	}
	h.svc.Session.Invalidate()
	c.Status(http.StatusNoContent)
}

// Analyze reads the uploaded photo and returns the analysis without saving.
func (h *Handler) Analyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		h.badRequest(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		h.badRequest(c, err)
		return
	}
	if len(data) == 0 || len(data) > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be between 1 byte and 10 MB"})
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(data)
	}

	req := models.AnalysisRequest{
		Image:     data,
		MediaType: mediaType,
		Mode:      models.AnalysisMode(strings.ToUpper(c.PostForm("mode"))),
		Breed:     models.Race(strings.ToUpper(c.PostForm("breed"))),
		Reference: models.ReferenceObjectType(strings.ToUpper(c.PostForm("reference"))),
	}
	result, err := h.svc.Flock.Analyze(c.Request.Context(), current(c).User.ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Intake saves an analysed animal in the selected breeder.
func (h *Handler) Intake(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	sheep, err := h.svc.Flock.Intake(c.Request.Context(), current(c).Scope(), req.IntakeInput, req.Analysis, req.ImageURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.svc.Session.Invalidate()
	c.JSON(http.StatusCreated, sheep)
}

// ListSheep returns the animals visible in the current scope.
func (h *Handler) ListSheep(c *gin.Context) {
	sheep, err := h.svc.Flock.ListSheep(c.Request.Context(), current(c).Scope())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sheep)
}

// GetSheep returns one animal.
func (h *Handler) GetSheep(c *gin.Context) {
	sheep, err := h.svc.Flock.GetSheep(c.Request.Context(), current(c).Scope(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sheep)
}

// UpdateSheep overwrites an animal.
func (h *Handler) UpdateSheep(c *gin.Context) {
	var sheep models.Sheep
	if err := c.ShouldBindJSON(&sheep); err != nil {
		h.badRequest(c, err)
		return
	}
	sheep.ID = c.Param("id")
	updated, err := h.svc.Flock.UpdateSheep(c.Request.Context(), current(c).Scope(), sheep)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.svc.Session.Invalidate()
	c.JSON(http.StatusOK, updated)
}

// DeleteSheep removes an animal of the signed-in user.
func (h *Handler) DeleteSheep(c *gin.Context) {
	ctx := c.Request.Context()
	sheep, err := h.svc.Flock.GetSheep(ctx, current(c).Scope(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Flock.DeleteSheep(ctx, sheep.ID); err != nil {
		h.fail(c, err)
		return
	}
	h.svc.Session.Invalidate()
	c.Status(http.StatusNoContent)
}

// Conformity compares an animal with its breed standard.
func (h *Handler) Conformity(c *gin.Context) {
	sheep, err := h.svc.Flock.GetSheep(c.Request.Context(), current(c).Scope(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, flock.Conformity(sheep))
}
