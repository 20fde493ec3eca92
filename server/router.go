package server

import (
	"github.com/gin-gonic/gin"

	"github.com/FreeosDAO/cronacle-backend/config"
	"github.com/FreeosDAO/cronacle-backend/service"
)

// Services bundles everything the HTTP surface depends on
type Services struct {
	Credits  service.CreditService
	Auctions service.AuctionService
	Registry service.RegistryService
	Admin    service.AdminService
	Ticker   service.TickerService
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc Services, cfg *config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware)

	creditHandler := NewCreditHandler(svc.Credits, svc.Registry, cfg)
	auctionHandler := NewAuctionHandler(svc.Auctions)
	adminHandler := NewAdminHandler(svc.Admin, svc.Ticker)

	router.POST("/deposits", creditHandler.HandleDeposit)
	router.POST("/withdrawals", creditHandler.HandleWithdraw)
	router.POST("/bids", auctionHandler.HandlePlaceBid)
	router.POST("/claims", auctionHandler.HandleClaim)
	router.GET("/auction", auctionHandler.HandleGetAuction)

	accounts := router.Group("/accounts")
	{
		accounts.GET("/:account_id/credit", creditHandler.HandleGetCredit)
		accounts.POST("/:account_id/identity", creditHandler.HandleStoreIdentity)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/items", adminHandler.HandleEnqueueItem)
		admin.GET("/items", adminHandler.HandleListQueue)
		admin.POST("/ticks", adminHandler.HandleRecordTick)
	}

	return router
}
