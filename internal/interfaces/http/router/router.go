package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"veg_market/internal/interfaces/http/handler"
)

func RegisterRoutes(r *gin.Engine, market *handler.MarketHandler, admin *handler.AdminHandler, metricsHandler http.Handler) {
	api := r.Group("/api")
	{
		api.GET("/vegetables", market.ListVegetables)
		api.POST("/vegetables", market.AddVegetable)
		api.PATCH("/vegetables/:name", market.UpdateVegetable)
		api.DELETE("/vegetables/:name", market.RemoveVegetable)

		api.POST("/orders", market.PlaceOrder)
		api.GET("/orders", market.ListOrders)
		api.GET("/statistics", market.Statistics)

		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/backup", admin.Backup)
			adminGroup.GET("/backups", admin.ListBackups)
			adminGroup.POST("/restore", admin.Restore)
			adminGroup.POST("/clear", admin.ClearAll)
		}
	}

	r.GET("/healthz", admin.Health)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}
}
