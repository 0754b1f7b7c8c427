package admin

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	typWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/internal/types"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/auth"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

type VersionRefresher interface {
	Status() pkgWhatsApp.VersionStatus
	Refresh(ctx context.Context, force bool) (pkgWhatsApp.VersionStatus, bool, error)
}

type Handler struct {
	versions VersionRefresher
}

func New(versions VersionRefresher) *Handler {
	return &Handler{versions: versions}
}

// IssueToken
// @Summary     Issue a caller token
// @Description Signs a JWT that external systems present as Bearer token
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Param       X-Admin-Secret header string true "Admin secret key"
// @Param       body body typWhatsApp.RequestIssueToken true "Caller name and optional ttl"
// @Success     200 {object} typWhatsApp.ResponseToken
// @Failure     400
// @Failure     401
// @Failure     500
// @Router      /admin/tokens [post]
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	var req typWhatsApp.RequestIssueToken
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Invalid request body")
	}

	req.Caller = strings.TrimSpace(req.Caller)
	if req.Caller == "" {
		return router.ResponseBadRequest(c, "caller is required")
	}

	ttl := auth.TokenTTL
	if raw := strings.TrimSpace(req.TTL); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			return router.ResponseBadRequest(c, "ttl must be a non-negative duration such as 720h")
		}
		ttl = parsed
	}

	token, expiresAt, err := auth.GenerateCallerToken(req.Caller, ttl)
	if err != nil {
		return router.ResponseInternalErrorWithDetails(c, "Failed to issue token", err)
	}

	log.Print(c).WithField("caller", req.Caller).Info("Caller token issued")

	resp := typWhatsApp.ResponseToken{Token: token, Caller: req.Caller}
	if !expiresAt.IsZero() {
		resp.ExpiresAt = &expiresAt
	}
	return router.ResponseSuccessWithData(c, "Token issued", resp)
}

// GetWhatsAppWebVersion
// @Summary     Advertised WhatsApp Web version
// @Tags        Admin
// @Produce     json
// @Param       X-Admin-Secret header string true "Admin secret key"
// @Success     200
// @Router      /admin/whatsapp/version [get]
func (h *Handler) GetWhatsAppWebVersion(c *fiber.Ctx) error {
	return router.ResponseSuccessWithData(c, "Success", h.versions.Status())
}

// RefreshWhatsAppWebVersion
// @Summary     Refresh the WhatsApp Web version
// @Description Pass force=true to bypass the minimum refresh interval
// @Tags        Admin
// @Produce     json
// @Param       X-Admin-Secret header string true "Admin secret key"
// @Param       force query bool false "Ignore the minimum interval"
// @Success     200
// @Failure     500
// @Router      /admin/whatsapp/version/refresh [post]
func (h *Handler) RefreshWhatsAppWebVersion(c *fiber.Ctx) error {
	force := c.QueryBool("force", false)

	status, refreshed, err := h.versions.Refresh(c.UserContext(), force)
	if err != nil {
		return router.ResponseInternalErrorWithDetails(c, "Failed to refresh WhatsApp Web version", err)
	}

	return router.ResponseSuccessWithData(c, "Success", fiber.Map{
		"refreshed": refreshed,
		"version":   status,
	})
}
