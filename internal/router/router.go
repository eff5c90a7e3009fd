// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/linqiu/bookmarket/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers or monitoring systems to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterUser registers the user endpoints under /api/user.  None of them
// require a token; login and code sending are the abuse-prone ones, so the
// caller may pass a rate limiter to guard them (nil skips it).
func RegisterUser(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/user")
	g.POST("/register", a.Register)
	g.GET("/name/:id", a.GetUserName)
	g.POST("/reset", a.ResetPassword)

	if limiter != nil {
		g.POST("/login", a.Login, limiter)
		g.POST("/code", a.SendCode, limiter)
	} else {
		g.POST("/login", a.Login)
		g.POST("/code", a.SendCode)
	}
}

// RegisterBook registers the book endpoints under /api/book.  Browsing is
// public; publishing and managing listings require a valid token.  The
// optional cache middleware wraps the read-only browse routes.
func RegisterBook(e *echo.Echo, b *handler.BookHandler, auth echo.MiddlewareFunc, cache echo.MiddlewareFunc) {
	g := e.Group("/api/book")

	if cache != nil {
		g.GET("/list", b.List, cache)
		g.GET("/search", b.Search, cache)
		g.GET("/:id", b.Detail, cache)
	} else {
		g.GET("/list", b.List)
		g.GET("/search", b.Search)
		g.GET("/:id", b.Detail)
	}

	p := e.Group("/api/book", auth)
	p.POST("/publish", b.Publish)
	p.POST("/update/:id", b.Update)
	p.DELETE("/delete/:id", b.Delete)
	p.GET("/published", b.Published)
	p.GET("/sold", b.Sold)
}

// RegisterOrder registers the order endpoints under /api/order.  Every
// order operation acts on behalf of the caller, so the whole group sits
// behind the token middleware.
func RegisterOrder(e *echo.Echo, o *handler.OrderHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/api/order", auth)
	g.POST("/buy", o.Buy)
	g.GET("/list", o.List)
	g.GET("/:id", o.Detail)
	g.POST("/pay", o.Pay)
	g.POST("/cancel", o.Cancel)
}
