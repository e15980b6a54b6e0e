package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dojokai/dojo-api/internal/service"
	"github.com/dojokai/dojo-api/pkg/response"
)

// SeedHandler exposes the demo-data endpoint.
type SeedHandler struct {
	seeds *service.SeedService
}

// NewSeedHandler constructs SeedHandler.
func NewSeedHandler(seeds *service.SeedService) *SeedHandler {
	return &SeedHandler{seeds: seeds}
}

// Run godoc
// @Summary Load demo data
// @Description Seeds demo categories, guardians and students. Refused when
// the roster is not empty.
// @Tags Seed
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /seed/demo [post]
func (h *SeedHandler) Run(c *gin.Context) {
	result, err := h.seeds.Run(c.Request.Context(), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, nil)
}
