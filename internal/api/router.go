// Package api assembles the HTTP surface: middleware chain and route registration.
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	iauth "github.com/dolapkampus/backend/internal/auth"
	"github.com/dolapkampus/backend/internal/handlers"
	"github.com/dolapkampus/backend/internal/middleware"
	"github.com/dolapkampus/backend/internal/services"
)

// Dependencies bundles the services the router wires into handlers.
type Dependencies struct {
	JWT           *iauth.JWTService
	Registrations *services.RegistrationService
	Universities  *services.UniversityService
	Users         *services.UserService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Registrations == nil {
		return nil, fmt.Errorf("registration service must be provided")
	}
	if deps.Universities == nil {
		return nil, fmt.Errorf("university service must be provided")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.Registrations, deps.Universities, deps.Users)
	universityHandler := handlers.NewUniversityHandler(deps.Universities)
	profileHandler := handlers.NewProfileHandler(deps.Users)

	requireAuth := middleware.Auth(deps.JWT)

	auth := r.Group("/auth")
	{
		auth.GET("/detect-university", authHandler.DetectUniversity)
		auth.POST("/register", authHandler.Register)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.POST("/resend-code", authHandler.ResendCode)
		auth.POST("/login", authHandler.Login)
		auth.POST("/admin-login", authHandler.AdminLogin)
		auth.GET("/verify", requireAuth, authHandler.Verify)
	}

	universities := r.Group("/universities")
	{
		universities.GET("", universityHandler.List)
		universities.GET("/search", universityHandler.Search)
		universities.GET("/departments", universityHandler.Departments)
	}

	profile := r.Group("/profile")
	profile.Use(requireAuth)
	{
		profile.GET("", profileHandler.Get)
		profile.PUT("", profileHandler.Update)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
