package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FreeosDAO/cronacle-backend/service"
)

// AdminHandler serves the admin queue and price tick endpoints
type AdminHandler struct {
	admin  service.AdminService
	ticker service.TickerService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin service.AdminService, ticker service.TickerService) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		ticker: ticker,
	}
}

// HandleEnqueueItem handles POST /admin/items
func (h *AdminHandler) HandleEnqueueItem(c *gin.Context) {
	var req EnqueueItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.admin.EnqueueItem(c.Request.Context(), req.ActorID, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, QueueItemResponse{
		Position: item.Position,
		ItemID:   item.ItemID,
	})
}

// HandleListQueue handles GET /admin/items
func (h *AdminHandler) HandleListQueue(c *gin.Context) {
	items, err := h.admin.ListQueue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := []QueueItemResponse{}
	for _, item := range items {
		resp = append(resp, QueueItemResponse{
			Position: item.Position,
			ItemID:   item.ItemID,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// HandleRecordTick handles POST /admin/ticks
func (h *AdminHandler) HandleRecordTick(c *gin.Context) {
	var req RecordTickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tick, err := h.ticker.RecordTick(c.Request.Context(), req.ActorID, req.USDPrice)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"tick_time": tick.TickTime,
		"usd_price": tick.USDPrice,
	})
}
