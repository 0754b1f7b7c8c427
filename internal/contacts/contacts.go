package contacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

type Roster interface {
	Contacts(ctx context.Context) ([]pkgWhatsApp.ContactSummary, error)
}

type Handler struct {
	roster Roster
}

func New(roster Roster) *Handler {
	return &Handler{roster: roster}
}

// List
// @Summary     List contacts
// @Description Stored contacts without groups, sorted by name
// @Tags        Roster
// @Produce     json
// @Success     200
// @Failure     400
// @Failure     500
// @Router      /api/contacts [get]
func (h *Handler) List(c *fiber.Ctx) error {
	contacts, err := h.roster.Contacts(c.UserContext())
	if errors.Is(err, pkgWhatsApp.ErrNotReady) {
		return router.ResponseBadRequest(c, "WhatsApp client is not ready")
	}
	if err != nil {
		log.Print(c).WithError(err).Error("Failed to fetch contacts")
		return router.ResponseInternalErrorWithDetails(c, "Failed to fetch contacts", err)
	}

	return router.ResponseSuccessWithData(c, fmt.Sprintf("Success get %d contacts", len(contacts)), fiber.Map{
		"contacts": contacts,
	})
}
