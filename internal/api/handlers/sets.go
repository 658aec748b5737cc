package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/booster-value/internal/services"
)

type SetHandler struct {
	catalog *services.SetCatalog
}

func NewSetHandler(catalog *services.SetCatalog) *SetHandler {
	return &SetHandler{catalog: catalog}
}

// SearchSets backs the set picker autocomplete
func (h *SetHandler) SearchSets(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	sets := h.catalog.Search(c.Query("q"), limit)
	def, _ := h.catalog.Default()
	c.JSON(http.StatusOK, gin.H{
		"sets":    sets,
		"default": def.Code,
	})
}
