package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codyseavey/booster-value/internal/metrics"
	"github.com/codyseavey/booster-value/internal/models"
	"github.com/codyseavey/booster-value/internal/services"
)

// ClientIDHeader scopes the stale-response check to one browser tab.
// Requests without it are never reported as stale.
const ClientIDHeader = "X-Client-ID"

type LookupHandler struct {
	lookupService *services.LookupService
	catalog       *services.SetCatalog
	gate          *services.RequestGate
}

func NewLookupHandler(lookupService *services.LookupService, catalog *services.SetCatalog, gate *services.RequestGate) *LookupHandler {
	return &LookupHandler{
		lookupService: lookupService,
		catalog:       catalog,
		gate:          gate,
	}
}

// Lookup answers GET /api/lookup?set=&booster=&min=&foils=&rares=&extras=
func (h *LookupHandler) Lookup(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clientID := strings.TrimSpace(c.GetHeader(ClientIDHeader))
	var requestID string
	if clientID != "" {
		requestID = h.gate.Begin(clientID)
	} else {
		requestID = uuid.New().String()
	}

	result, err := h.lookupService.Lookup(c.Request.Context(), params)

	if clientID != "" && !h.gate.Finish(clientID, requestID) {
		metrics.StaleResponsesTotal.Inc()
		c.JSON(http.StatusConflict, gin.H{
			"error":      "superseded by a newer request",
			"request_id": requestID,
		})
		return
	}

	if err != nil {
		if errors.Is(err, services.ErrSourcesExhausted) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Card prices could not be loaded right now. Please try again in a moment.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result.RequestID = requestID
	c.JSON(http.StatusOK, result)
}

func (h *LookupHandler) parseParams(c *gin.Context) (models.LookupParams, error) {
	setCode := strings.ToLower(strings.TrimSpace(c.Query("set")))
	if setCode == "" {
		def, ok := h.catalog.Default()
		if !ok {
			return models.LookupParams{}, errors.New("query parameter 'set' is required")
		}
		setCode = def.Code
	}
	set, ok := h.catalog.Get(setCode)
	if !ok {
		return models.LookupParams{}, fmt.Errorf("unknown set %q", setCode)
	}
	setCode = strings.ToLower(set.Code)

	var minPrice float64
	if raw := strings.TrimSpace(c.Query("min")); raw != "" {
		v, err := strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64)
		if err != nil || v < 0 {
			return models.LookupParams{}, errors.New("query parameter 'min' must be a non-negative number")
		}
		minPrice = v
	}

	return models.LookupParams{
		SetCode: setCode,
		Booster: models.ParseBooster(c.Query("booster")),
		Filter: models.DisplayFilter{
			MinPrice:     minPrice,
			ExcludeRares: !includeMode(c.Query("rares")),
			ExcludeFoils: !includeMode(c.Query("foils")),
		},
		IncludeExtras: includeMode(c.Query("extras")),
	}, nil
}

// includeMode treats an absent or unrecognized value as "include"
func includeMode(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "exclude", "false", "0", "no", "off", "hide":
		return false
	default:
		return true
	}
}
