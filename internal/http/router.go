// README: HTTP route registration and middleware wiring.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parcelbid/internal/http/handlers"
	"parcelbid/internal/http/middleware"
	"parcelbid/internal/infra"
	"parcelbid/internal/modules/location"
	"parcelbid/internal/modules/matching"
	"parcelbid/internal/modules/notification"
	"parcelbid/internal/modules/order"
)

type RouterDeps struct {
	Order        *order.Service
	Matching     *matching.Service
	Location     *location.Service
	Notification *notification.Service
	Verifier     infra.TokenVerifier
}

func NewRouter(deps RouterDeps) http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Verifier))

	orderHandler := handlers.NewOrderHandler(deps.Order)
	driverHandler := handlers.NewDriverHandler(deps.Order, deps.Matching)
	locationHandler := handlers.NewLocationHandler(deps.Location)
	notificationHandler := handlers.NewNotificationHandler(deps.Notification)

	// Any authenticated user.
	api.GET("/orders/:id", orderHandler.Get)
	api.GET("/orders/:id/tracking", locationHandler.Tracking)
	api.GET("/orders/:id/bids", orderHandler.ListBids)
	api.GET("/notifications", notificationHandler.List)
	api.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	api.POST("/notifications/:id/read", notificationHandler.MarkRead)

	customer := api.Group("", middleware.RequireRole(middleware.RoleCustomer))
	customer.POST("/orders", orderHandler.Create)
	customer.GET("/orders", orderHandler.ListMine)
	customer.POST("/orders/:id/cancel", orderHandler.Cancel)
	customer.POST("/orders/:id/bids/:driverId/accept", orderHandler.AcceptBid)

	driver := api.Group("/drivers", middleware.RequireRole(middleware.RoleDriver))
	driver.GET("/orders", driverHandler.ListAvailable)
	driver.GET("/deliveries", driverHandler.MyDeliveries)
	driver.POST("/orders/:id/bids", driverHandler.PlaceBid)
	driver.POST("/orders/:id/pickup", driverHandler.Pickup)
	driver.POST("/orders/:id/transit", driverHandler.Transit)
	driver.POST("/orders/:id/deliver", driverHandler.Deliver)
	driver.POST("/orders/:id/location", locationHandler.Report)

	return r
}
