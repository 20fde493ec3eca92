package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/FreeosDAO/cronacle-backend/config"
	"github.com/FreeosDAO/cronacle-backend/service"
)

// CreditHandler serves the credit ledger endpoints
type CreditHandler struct {
	credits  service.CreditService
	registry service.RegistryService
	cfg      *config.Config
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(credits service.CreditService, registry service.RegistryService, cfg *config.Config) *CreditHandler {
	return &CreditHandler{
		credits:  credits,
		registry: registry,
		cfg:      cfg,
	}
}

// HandleDeposit handles POST /deposits, the ledger transfer notification.
// Transfers not addressed to the system account are acknowledged but
// ignored; a wrong currency is a caller error.
func (h *CreditHandler) HandleDeposit(c *gin.Context) {
	var req DepositNotification
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if req.To != h.cfg.SystemAccount {
		log.WithFields(log.Fields{
			"from": req.From,
			"to":   req.To,
		}).Debug("Ignoring transfer not addressed to system account")
		c.JSON(http.StatusOK, gin.H{"ignored": true})
		return
	}

	amount, symbol, err := parseQuantity(req.Quantity)
	if err != nil {
		respondBindError(c, err)
		return
	}
	if symbol != h.cfg.CreditSymbol {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported currency: " + symbol})
		return
	}

	account, err := h.credits.Deposit(c.Request.Context(), req.From, amount, req.Memo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(account))
}

// HandleWithdraw handles POST /withdrawals
func (h *CreditHandler) HandleWithdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.credits.Withdraw(c.Request.Context(), req.AccountID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(account))
}

// HandleGetCredit handles GET /accounts/:account_id/credit
func (h *CreditHandler) HandleGetCredit(c *gin.Context) {
	accountID := c.Param("account_id")

	available, err := h.credits.AvailableCredit(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id":       accountID,
		"available_credit": available,
	})
}

// HandleStoreIdentity handles POST /accounts/:account_id/identity
func (h *CreditHandler) HandleStoreIdentity(c *gin.Context) {
	accountID := c.Param("account_id")

	var req StoreIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.registry.StoreIdentity(c.Request.Context(), accountID, req.Principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id": account.AccountID,
		"principal":  account.Principal,
	})
}
