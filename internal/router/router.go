package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-seat-booking/internal/handler"
    "github.com/iliyamo/venue-seat-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Used by load balancers and monitoring to verify the service is up.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes.  Unauthenticated
// operations live under /v1/auth; the protected /v1/me endpoint is wrapped
// with the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Refresh rotates the refresh token; logout revokes it.  Neither needs
    // an access token, the refresh token in the body is the credential.
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
}

// RegisterBooking registers the seat booking routes.  The layout endpoint
// is public and wrapped with the response cache (the layout never changes
// after startup); the seat operations require a valid access token.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, cache echo.MiddlewareFunc) {
    if cache != nil {
        e.GET("/v1/layout", b.GetLayout, cache)
    } else {
        e.GET("/v1/layout", b.GetLayout)
    }

    g := e.Group("/v1/seats")
    g.Use(middleware.JWTAuth(jwtSecret))
    // Full snapshot, ordered by (row, position).
    g.GET("", b.ListSeats)
    // Book seats for a party; the engine decides which ones.
    g.POST("/book", b.BookSeats)
    // Administrative reset: frees every seat.
    g.POST("/reset", b.ResetSeats)
}
