package controllers

import (
	"net/http"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

type BadgeController struct {
	Engine domain.BadgeEngine
}

func NewBadgeController(engine domain.BadgeEngine) *BadgeController {
	return &BadgeController{Engine: engine}
}

// Catalog godoc
// @Summary List all earnable badges
// @Tags badges
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the badge catalog"
// @Router /badges [get]
func (c *BadgeController) Catalog(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, c.Engine.Catalog())
}
