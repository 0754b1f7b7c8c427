package realtime

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
	pkgRealtime "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/realtime"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

type Session interface {
	Status() pkgWhatsApp.Status
}

type Handler struct {
	hub     *pkgRealtime.Hub
	session Session
}

func New(hub *pkgRealtime.Hub, session Session) *Handler {
	return &Handler{hub: hub, session: session}
}

// Upgrade rejects plain HTTP requests on the realtime route.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Snapshot is what a new listener receives before any broadcast: the
// current status and the pending QR code, if any.
func Snapshot(status pkgWhatsApp.Status) []pkgRealtime.Event {
	events := []pkgRealtime.Event{{
		Event: pkgWhatsApp.EventStatus,
		Data: map[string]interface{}{
			"status":        status.State,
			"needsOperator": status.NeedsOperator,
		},
	}}
	if status.QR != nil {
		events = append(events, pkgRealtime.Event{
			Event: pkgWhatsApp.EventQR,
			Data:  map[string]interface{}{"qr": status.QR.DataURL},
		})
	}
	return events
}

func (h *Handler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		listener := h.hub.SubscribeSnapshot(func() []pkgRealtime.Event {
			return Snapshot(h.session.Status())
		})
		defer h.hub.Unsubscribe(listener)

		entry := log.Logger().WithField("component", "realtime").WithField("listener", listener.ID)
		entry.Debug("Realtime listener connected")

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case <-closed:
				entry.Debug("Realtime listener disconnected")
				return
			case evt, ok := <-listener.C:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeTimeout))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(evt); err != nil {
					entry.WithError(err).Debug("Realtime write failed")
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					return
				}
			}
		}
	})
}
