package main

// @title Go WhatsApp Relay Gateway
// @version 1.0.0
// @description Single-session WhatsApp relay: REST send endpoints, OTP and reservation webhooks, realtime status and QR, and a chat command router for the JomRewards marketing API

// @contact.name gdbrns
// @contact.url https://github.com/gdbrns/go-whatsapp-relay-gateway

// @license.name MIT
// @license.url https://github.com/gdbrns/go-whatsapp-relay-gateway/blob/main/LICENSE

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey AdminAuth
// @in header
// @name X-Admin-Secret
// @description Admin secret key for operator endpoints

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token for external callers

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cron "github.com/robfig/cron/v3"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/env"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/jomrewards"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
	pkgRealtime "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/realtime"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/upload"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"

	"github.com/gdbrns/go-whatsapp-relay-gateway/internal"
	"github.com/gdbrns/go-whatsapp-relay-gateway/internal/command"
)

const realtimeBuffer = 16

type Server struct {
	Address string
	Port    string
}

func main() {
	var err error

	// Intialize Cron
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DiscardLogger),
	), cron.WithSeconds())

	// Initialize WhatsApp Session
	waConfig, err := pkgWhatsApp.LoadConfig()
	if err != nil {
		log.Print(nil).Fatal(err.Error())
	}

	datastore, err := pkgWhatsApp.OpenDatastore(context.Background(), waConfig.DatastoreType, waConfig.DatastoreURI, waConfig.LogLevel)
	if err != nil {
		log.Print(nil).Fatal(err.Error())
	}
	defer datastore.Close()

	hub := pkgRealtime.NewHub(realtimeBuffer)
	session := pkgWhatsApp.NewSession(pkgWhatsApp.Options{
		ClientFactory: pkgWhatsApp.NewClientFactory(datastore, waConfig),
		Policy:        waConfig.Reconnect,
		Publisher:     hub,
		Media:         pkgWhatsApp.NewMediaLoader(waConfig.MediaFetchTimeout),
		RosterTTL:     waConfig.RosterCacheTTL,
		QRTerminal:    waConfig.QRTerminal,
	})

	uploads, err := upload.NewStore(env.GetEnvStringOrDefault("UPLOAD_DIR", "uploads"))
	if err != nil {
		log.Print(nil).Fatal(err.Error())
	}

	marketing := jomrewards.New(jomrewards.LoadConfig())
	session.OnMessage(command.NewFromEnv(marketing, session).Handle)

	deps := internal.Dependencies{
		Session:  session,
		Hub:      hub,
		Uploads:  uploads,
		Versions: pkgWhatsApp.NewVersionRefresher(env.GetEnvDurationOrDefault("WHATSAPP_WAVERSION_REFRESH_MIN_INTERVAL", 6*time.Hour)),
	}

	// Initialize Fiber
	app := fiber.New(fiber.Config{
		ErrorHandler:   router.HttpErrorHandler,
		BodyLimit:      router.BodyLimitBytes(),
		ReadBufferSize: 8192,
	})

	// Request ID + panic recovery (structured JSON)
	app.Use(router.HttpRequestID())
	app.Use(router.RecoveryMiddleware())

	// Router Compression
	app.Use(compress.New(compress.Config{
		Level: compress.Level(router.GZipLevel),
		Next: func(c *fiber.Ctx) bool {
			return strings.Contains(c.Path(), "docs") || strings.HasSuffix(c.Path(), "/ws")
		},
	}))

	// Router CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins: router.CORSOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Secret",
		AllowMethods: "GET,POST",
	}))

	// Router Security
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))

	// Router RealIP + request context enrichment
	app.Use(router.HttpRealIP())

	// Router Default Handler
	app.Get("/favicon.ico", router.ResponseNoContent)

	// Load Internal Routes
	internal.Routes(app, deps)

	// Running Startup Tasks
	internal.Startup(deps)

	// Running Routines Tasks
	internal.Routines(c, deps)

	// Get Server Configuration with defaults
	var serverConfig Server
	serverConfig.Address = env.GetEnvStringOrDefault("SERVER_ADDRESS", "0.0.0.0")
	serverConfig.Port = env.GetEnvStringOrDefault("SERVER_PORT", "8080")

	// Start Server
	go func() {
		if err := app.Listen(serverConfig.Address + ":" + serverConfig.Port); err != nil {
			log.Print(nil).Fatal(err.Error())
		}
	}()

	// Watch for Shutdown Signal
	sigShutdown := make(chan os.Signal, 1)
	signal.Notify(sigShutdown, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-sigShutdown

	// Wait 5 Seconds Before Graceful Shutdown
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	// Close realtime listeners first so their handlers return
	hub.Close()

	// Try To Shutdown Server
	err = app.ShutdownWithContext(ctxShutdown)
	if err != nil {
		log.Print(nil).Error(err.Error())
	}

	// Try To Shutdown Cron
	c.Stop()

	// Disconnect WhatsApp
	session.Stop()
}
