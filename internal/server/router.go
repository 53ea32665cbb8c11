package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agamariel/orderdesk/internal/server/handlers"
	"github.com/agamariel/orderdesk/internal/server/middlewares"
)

// NewRouter собирает HTTP-сервер с маршрутами REST-контракта.
func NewRouter(orderHandler *handlers.OrderHandler, productHandler *handlers.ProductHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))
	e.Use(middlewares.Prometheus())

	e.GET("/orders", orderHandler.ListOrders)
	e.POST("/orders", orderHandler.CreateOrder)
	e.GET("/orders/:id", orderHandler.GetOrder)
	e.PUT("/orders/:id", orderHandler.UpdateOrder)
	e.DELETE("/orders/:id", orderHandler.DeleteOrder)
	e.GET("/products", productHandler.ListProducts)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
