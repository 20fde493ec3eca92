package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FreeosDAO/cronacle-backend/service"
)

// AuctionHandler serves the bid and claim endpoints
type AuctionHandler struct {
	auctions service.AuctionService
}

// NewAuctionHandler creates a new auction handler
func NewAuctionHandler(auctions service.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctions: auctions}
}

// HandlePlaceBid handles POST /bids
func (h *AuctionHandler) HandlePlaceBid(c *gin.Context) {
	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	bid, err := h.auctions.PlaceBid(c.Request.Context(), req.AccountID, req.ItemID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBidResponse(bid))
}

// HandleClaim handles POST /claims
func (h *AuctionHandler) HandleClaim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.auctions.Claim(c.Request.Context(), req.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuctionResponse(record, nil))
}

// HandleGetAuction handles GET /auction
func (h *AuctionHandler) HandleGetAuction(c *gin.Context) {
	record, bids, err := h.auctions.CurrentAuction(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no auction on record"})
		return
	}

	c.JSON(http.StatusOK, newAuctionResponse(record, bids))
}
