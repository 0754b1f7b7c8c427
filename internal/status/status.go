package status

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	typWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/internal/types"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

// Session is the connection state surface used by the status endpoints.
type Session interface {
	Status() pkgWhatsApp.Status
	Relink(ctx context.Context) error
}

type Handler struct {
	session Session
}

func New(session Session) *Handler {
	return &Handler{session: session}
}

// GetStatus
// @Summary     Connection status
// @Description Current connection state and whether a QR code is waiting to be scanned
// @Tags        Status
// @Produce     json
// @Success     200
// @Router      /api/status [get]
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	status := h.session.Status()

	return router.ResponseSuccessWithData(c, "Success", typWhatsApp.ResponseStatus{
		Status:          string(status.State),
		QRCodeAvailable: status.QR != nil,
		NeedsOperator:   status.NeedsOperator,
		Attempts:        status.Attempts,
		LastError:       status.LastError,
		Timestamp:       typWhatsApp.Timestamp(time.Now()),
	})
}

// GetHealth
// @Summary     Health check
// @Description Always healthy while the process serves requests
// @Tags        Status
// @Produce     json
// @Success     200
// @Router      /api/health [get]
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return router.ResponseSuccessWithData(c, "Success", typWhatsApp.ResponseHealth{
		Status:         "healthy",
		Timestamp:      typWhatsApp.Timestamp(time.Now()),
		WhatsAppStatus: string(h.session.Status().State),
	})
}

// GetQR
// @Summary     Pending QR code
// @Description PNG data URL of the pairing code, 404 when none is pending
// @Tags        Status
// @Produce     json
// @Success     200
// @Failure     404
// @Router      /api/qr [get]
func (h *Handler) GetQR(c *fiber.Ctx) error {
	status := h.session.Status()
	if status.QR == nil {
		return router.ResponseNotFound(c, "No QR code available")
	}
	return router.ResponseSuccessWithData(c, "Success", typWhatsApp.ResponseQR{QR: status.QR.DataURL})
}

// Relink
// @Summary     Relink the WhatsApp session
// @Description Clears the operator flag, reloads the device and reconnects
// @Tags        Status
// @Produce     json
// @Param       X-Admin-Secret header string true "Admin secret key"
// @Success     200
// @Failure     500
// @Router      /api/relink [post]
func (h *Handler) Relink(c *fiber.Ctx) error {
	log.Session("relink").Info("Relink requested over HTTP")

	if err := h.session.Relink(c.UserContext()); err != nil {
		return router.ResponseInternalErrorWithDetails(c, "Failed to relink session", err)
	}
	return router.ResponseSuccessWithData(c, "Relink started", fiber.Map{
		"status": string(h.session.Status().State),
	})
}
