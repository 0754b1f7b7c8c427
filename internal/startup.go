package internal

import (
	"context"
	"time"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/env"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
)

const startupVersionRefreshTimeout = 30 * time.Second

// Startup refreshes the advertised WhatsApp Web version when asked to and
// starts the session. Connection failures are left to the reconnect policy.
func Startup(deps Dependencies) {
	log.Print(nil).Info("Running Startup Tasks")

	if env.GetEnvBoolOrDefault("WHATSAPP_WAVERSION_REFRESH_ON_START", false) {
		ctx, cancel := context.WithTimeout(context.Background(), startupVersionRefreshTimeout)
		status, _, err := deps.Versions.Refresh(ctx, true)
		cancel()
		if err != nil {
			log.Print(nil).WithField("version", status.CurrentVersion).WithError(err).Warn("WA Web version refresh on start failed")
		} else {
			log.Print(nil).WithField("version", status.CurrentVersion).Info("WA Web version refreshed on start")
		}
	}

	if err := deps.Session.Start(context.Background()); err != nil {
		log.Print(nil).WithError(err).Error("Failed to start WhatsApp session")
	}
}
