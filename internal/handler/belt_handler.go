package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dojokai/dojo-api/internal/service"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
	"github.com/dojokai/dojo-api/pkg/response"
)

// BeltHandler exposes belt catalog endpoints.
type BeltHandler struct {
	belts *service.BeltService
}

// NewBeltHandler constructs BeltHandler.
func NewBeltHandler(belts *service.BeltService) *BeltHandler {
	return &BeltHandler{belts: belts}
}

// List godoc
// @Summary List belts in rank order
// @Tags Belts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /belts [get]
func (h *BeltHandler) List(c *gin.Context) {
	belts, err := h.belts.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, belts, nil)
}

// Get godoc
// @Summary Get belt
// @Tags Belts
// @Produce json
// @Param id path string true "Belt ID"
// @Success 200 {object} response.Envelope
// @Router /belts/{id} [get]
func (h *BeltHandler) Get(c *gin.Context) {
	belt, err := h.belts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, belt, nil)
}

// Create godoc
// @Summary Create belt
// @Tags Belts
// @Accept json
// @Produce json
// @Param payload body service.BeltRequest true "Belt payload"
// @Success 201 {object} response.Envelope
// @Router /belts [post]
func (h *BeltHandler) Create(c *gin.Context) {
	var req service.BeltRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	belt, err := h.belts.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, belt)
}

// Update godoc
// @Summary Update belt
// @Tags Belts
// @Accept json
// @Produce json
// @Param id path string true "Belt ID"
// @Param payload body service.BeltRequest true "Belt payload"
// @Success 200 {object} response.Envelope
// @Router /belts/{id} [put]
func (h *BeltHandler) Update(c *gin.Context) {
	var req service.BeltRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	belt, err := h.belts.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, belt, nil)
}

// Delete godoc
// @Summary Delete belt
// @Tags Belts
// @Produce json
// @Param id path string true "Belt ID"
// @Success 204
// @Router /belts/{id} [delete]
func (h *BeltHandler) Delete(c *gin.Context) {
	if err := h.belts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
