// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"restapi/internal/delivery/api/middleware"
	"restapi/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	OAuthHandler        *handler.OAuthHandler
	UserHandler         *handler.UserHandler
	AddressHandler      *handler.AddressHandler
	ActivityHandler     *handler.ActivityHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	oauthHandler        *handler.OAuthHandler
	userHandler         *handler.UserHandler
	addressHandler      *handler.AddressHandler
	activityHandler     *handler.ActivityHandler
	authMiddleware      *middleware.AuthMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		oauthHandler:        params.OAuthHandler,
		userHandler:         params.UserHandler,
		addressHandler:      params.AddressHandler,
		activityHandler:     params.ActivityHandler,
		authMiddleware:      params.AuthMiddleware,
		rateLimitMiddleware: params.RateLimitMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	apiV1 := e.Group("/api/v1")

	isLoggedIn := r.authMiddleware.IsLoggedIn
	isAdmin := r.authMiddleware.IsAdmin
	limited := r.rateLimitMiddleware.Limit

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup, limited)
		authGroup.POST("/signin", r.authHandler.Signin, limited)
		authGroup.POST("/reactivate", r.authHandler.Reactivate, limited)
		authGroup.POST("/refresh", r.authHandler.Refresh, limited)
		authGroup.POST("/forgot", r.authHandler.Forgot, limited)
		authGroup.POST("/reset", r.authHandler.Reset, limited)
		authGroup.GET("/activate/:token", r.authHandler.Activate)
		authGroup.POST("/logout", r.authHandler.Logout, isLoggedIn)

		// Static routes win over /:provider.
		authGroup.GET("/providers", r.oauthHandler.Providers)
		authGroup.Match([]string{echo.GET, echo.POST}, "/:provider", r.oauthHandler.Begin)
		authGroup.Match([]string{echo.GET, echo.POST}, "/:provider/callback", r.oauthHandler.Callback)
	}

	usersGroup := apiV1.Group("/users")
	{
		usersGroup.GET("", r.userHandler.List, isAdmin)
		usersGroup.POST("", r.userHandler.Create, isAdmin)
		usersGroup.GET("/profile", r.userHandler.Profile, isLoggedIn)
		usersGroup.GET("/:id", r.userHandler.Get, isAdmin)
		usersGroup.PUT("/:id", r.userHandler.Update, isLoggedIn)
		usersGroup.DELETE("/:id", r.userHandler.Delete, isAdmin)
	}

	addressGroup := apiV1.Group("/address", isLoggedIn)
	{
		addressGroup.GET("", r.addressHandler.List)
		addressGroup.POST("", r.addressHandler.Create)
		addressGroup.GET("/:id", r.addressHandler.Get)
		addressGroup.PUT("/:id", r.addressHandler.Update)
		addressGroup.DELETE("/:id", r.addressHandler.Delete)
	}

	activitiesGroup := apiV1.Group("/activities", isLoggedIn)
	{
		activitiesGroup.GET("", r.activityHandler.List)
		activitiesGroup.GET("/:id", r.activityHandler.Get)
		activitiesGroup.DELETE("/:id", r.activityHandler.Delete, isAdmin)
	}
}
