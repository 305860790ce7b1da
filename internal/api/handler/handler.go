// Package handler exposes the room service over HTTP.
package handler

import (
	"context"
	"net/http"

	"roompad/backend/internal/api/middleware"
	"roompad/backend/internal/models"
	"roompad/backend/internal/roomhub"
	"roompad/backend/internal/rooms"

	"github.com/gin-gonic/gin"
)

// RoomService is the part of rooms.Service the handlers call.
type RoomService interface {
	Read(ctx context.Context, slug string, cred rooms.Credential, ip string) (*models.Room, error)
	Create(ctx context.Context, in rooms.CreateInput) (*models.Room, error)
	Write(ctx context.Context, slug string, patch rooms.Patch, cred rooms.Credential) (*models.Room, error)
	Verify(ctx context.Context, slug, password string) (*rooms.VerifyResult, error)
	Authorize(ctx context.Context, slug string, cred rooms.Credential) (*models.Room, error)
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	Rooms RoomService
	Hub   *roomhub.Manager
	Env   string
}

func NewHandler(svc RoomService, hub *roomhub.Manager, env string) *Handler {
	return &Handler{Rooms: svc, Hub: hub, Env: env}
}

// RegisterRoutes mounts the API under /api. A nil limiter disables
// password attempt limiting.
func RegisterRoutes(r gin.IRouter, h *Handler, limiter *middleware.RateLimiter) {
	var guard gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if limiter != nil {
		guard = limiter.Limit("password", middleware.FailedAccess)
	}

	api := r.Group("/api")
	api.GET("/health", h.Health)

	roomsGroup := api.Group("/rooms")
	roomsGroup.POST("", h.CreateRoom)
	roomsGroup.GET("/:slug", guard, h.GetRoom)
	roomsGroup.PUT("/:slug", guard, h.UpdateRoom)
	roomsGroup.POST("/:slug/verify", guard, h.VerifyRoom)
	if h.Hub != nil {
		roomsGroup.GET("/:slug/events", guard, h.ServeRoomEvents)
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "env": h.Env})
}
