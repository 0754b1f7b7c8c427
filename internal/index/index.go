package index

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
)

//go:embed index.html
var page string

// Index
// @Summary     Operator page
// @Description Live connection status and QR code over the realtime channel
// @Tags        Root
// @Produce     html
// @Success     200
// @Router      / [get]
func Index(c *fiber.Ctx) error {
	return router.ResponseSuccessWithHTML(c, page)
}
