package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/imob-crm/internal/domain"
)

// Streamer registers a socket and blocks until it closes.
type Streamer interface {
	Serve(conn *websocket.Conn, actor *domain.Actor)
}

// EventsHandler upgrades /ws/events so the back office can follow domain events live.
type EventsHandler struct {
	hub Streamer
	log *zap.Logger
}

func NewEventsHandler(hub Streamer, log *zap.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, log: log}
}

// Upgrade rejects plain HTTP requests and stores the caller for Stream. The
// hub only forwards events the caller's permissions let them view.
func (h *EventsHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.ErrUnauthorized
	}
	c.Locals("actor", user.Actor())
	return c.Next()
}

func (h *EventsHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		actor, _ := conn.Locals("actor").(*domain.Actor)
		if actor == nil {
			conn.Close()
			return
		}
		h.log.Debug("Event stream opened", zap.String("user_id", actor.ID))
		h.hub.Serve(conn, actor)
	})
}
