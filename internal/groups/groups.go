package groups

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
	Groups(ctx context.Context) ([]pkgWhatsApp.GroupSummary, error)
}

type Handler struct {
	roster Roster
}

func New(roster Roster) *Handler {
	return &Handler{roster: roster}
}

// List
// @Summary     List joined groups
// @Tags        Roster
// @Produce     json
// @Success     200
// @Failure     400
// @Failure     500
// @Router      /api/groups [get]
func (h *Handler) List(c *fiber.Ctx) error {
	groups, err := h.roster.Groups(c.UserContext())
	if errors.Is(err, pkgWhatsApp.ErrNotReady) {
		return router.ResponseBadRequest(c, "WhatsApp client is not ready")
	}
	if err != nil {
		log.Print(c).WithError(err).Error("Failed to fetch groups")
		return router.ResponseInternalErrorWithDetails(c, "Failed to fetch groups", err)
	}

	return router.ResponseSuccessWithData(c, fmt.Sprintf("Success get %d groups", len(groups)), fiber.Map{
		"groups": groups,
	})
}
