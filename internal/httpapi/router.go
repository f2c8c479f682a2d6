package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"meetingRoomBooking/internal/booking"
	"meetingRoomBooking/internal/config"
	"meetingRoomBooking/repository"
)

// Dependencies bundles everything the router needs.
type Dependencies struct {
	Config    *config.Config
	Users     repository.UserRepositoryI
	Bookings  booking.Store
	Scheduler *booking.Service
	Logger    *slog.Logger
}

// NewRouter wires middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger(deps.Logger))
	router.Use(gin.Recovery())

	authHandler := NewAuthHandler(deps.Users, deps.Config)
	bookingHandler := NewBookingHandler(deps.Scheduler, deps.Bookings)
	userHandler := NewUserHandler(deps.Users)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)

	session := api.Group("")
	session.Use(Auth(deps.Config.Auth.JWTSecret))
	// Password rotation stays reachable while everything else is locked
	// behind RequirePasswordChanged.
	session.POST("/auth/change-password", authHandler.ChangePassword)

	app := session.Group("")
	app.Use(RequirePasswordChanged())
	{
		app.GET("/bookings/day/:date", bookingHandler.Day)
		app.GET("/bookings", bookingHandler.List)
		app.POST("/bookings", bookingHandler.Create)
		app.PUT("/bookings/:id", bookingHandler.Update)
		app.DELETE("/bookings/:id", bookingHandler.Delete)
	}

	admin := app.Group("/admin")
	admin.Use(RequireAdmin())
	{
		admin.GET("/users", userHandler.List)
		admin.POST("/users", userHandler.Create)
		admin.DELETE("/users/:id", userHandler.Delete)
		admin.PUT("/users/:id/role", userHandler.UpdateRole)
		admin.POST("/users/:id/reset-password", userHandler.ResetPassword)
	}

	return router
}
