package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/booster-value/internal/services"
)

type RefreshHandler struct {
	refresher *services.CacheRefresher
}

func NewRefreshHandler(refresher *services.CacheRefresher) *RefreshHandler {
	return &RefreshHandler{
		refresher: refresher,
	}
}

// GetRefreshStatus returns the outcome of the most recent cache refresh
func (h *RefreshHandler) GetRefreshStatus(c *gin.Context) {
	if h.refresher == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled": true,
		"status":  h.refresher.GetStatus(),
	})
}
