package internal

import (
	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/auth"
	pkgRealtime "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/realtime"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/upload"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"

	ctlAdmin "github.com/gdbrns/go-whatsapp-relay-gateway/internal/admin"
	ctlContacts "github.com/gdbrns/go-whatsapp-relay-gateway/internal/contacts"
	ctlGroups "github.com/gdbrns/go-whatsapp-relay-gateway/internal/groups"
	ctlIndex "github.com/gdbrns/go-whatsapp-relay-gateway/internal/index"
	ctlMessaging "github.com/gdbrns/go-whatsapp-relay-gateway/internal/messaging"
	ctlOTP "github.com/gdbrns/go-whatsapp-relay-gateway/internal/otp"
	ctlRealtime "github.com/gdbrns/go-whatsapp-relay-gateway/internal/realtime"
	ctlReservation "github.com/gdbrns/go-whatsapp-relay-gateway/internal/reservation"
	ctlStatus "github.com/gdbrns/go-whatsapp-relay-gateway/internal/status"
)

// Dependencies are the long-lived components the handlers are bound to.
type Dependencies struct {
	Session  *pkgWhatsApp.Session
	Hub      *pkgRealtime.Hub
	Uploads  *upload.Store
	Versions *pkgWhatsApp.VersionRefresher
}

func Routes(app *fiber.App, deps Dependencies) {
	// Configure OpenAPI / Swagger
	specURL := router.BaseURL + "/docs/swagger.json"
	swaggerHandler := swagger.New(swagger.Config{
		URL: specURL,
	})

	status := ctlStatus.New(deps.Session)
	groups := ctlGroups.New(deps.Session)
	contacts := ctlContacts.New(deps.Session)
	messaging := ctlMessaging.New(deps.Session, deps.Uploads)
	otp := ctlOTP.New(deps.Session)
	reservation := ctlReservation.New(deps.Session)
	realtime := ctlRealtime.New(deps.Hub, deps.Session)
	admin := ctlAdmin.New(deps.Versions)

	// Route for Index
	// ---------------------------------------------
	if router.BaseURL == "" {
		app.Get("/", ctlIndex.Index)
	} else {
		app.Get(router.BaseURL, ctlIndex.Index)
		app.Get(router.BaseURL+"/", ctlIndex.Index)
	}

	// Route for OpenAPI / Swagger
	// ---------------------------------------------
	app.Get(router.BaseURL+"/docs/swagger.json", func(c *fiber.Ctx) error {
		return c.SendFile("docs/swagger.json")
	})
	app.Get(router.BaseURL+"/docs/*", swaggerHandler)

	// Route for Realtime
	// ---------------------------------------------
	app.Get(router.BaseURL+"/ws", realtime.Upgrade, realtime.Serve())

	// Route for Status and Roster
	// ---------------------------------------------
	app.Get(router.BaseURL+"/api/status", status.GetStatus)
	app.Get(router.BaseURL+"/api/health", status.GetHealth)
	app.Get(router.BaseURL+"/api/qr", status.GetQR)
	app.Get(router.BaseURL+"/api/groups", groups.List)
	app.Get(router.BaseURL+"/api/contacts", contacts.List)

	// Route for Messaging
	// ---------------------------------------------
	callerMiddleware := auth.CallerAuth()

	app.Post(router.BaseURL+"/api/send-message", messaging.SendMessage)
	app.Post(router.BaseURL+"/api/external/send-message", callerMiddleware, messaging.SendExternal)
	app.Post(router.BaseURL+"/otp", callerMiddleware, otp.Send)
	app.Post(router.BaseURL+"/initiate", callerMiddleware, reservation.Initiate)

	// Route for Operator
	// ---------------------------------------------
	adminMiddleware := auth.AdminAuth()

	app.Post(router.BaseURL+"/api/relink", adminMiddleware, status.Relink)
	app.Post(router.BaseURL+"/admin/tokens", adminMiddleware, admin.IssueToken)
	app.Get(router.BaseURL+"/admin/whatsapp/version", adminMiddleware, admin.GetWhatsAppWebVersion)
	app.Post(router.BaseURL+"/admin/whatsapp/version/refresh", adminMiddleware, admin.RefreshWhatsAppWebVersion)
}
