package internal

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/env"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
)

const (
	healthCheckSpec           = "0 */5 * * * *"
	defaultVersionRefreshSpec = "0 0 3 * * *"
	defaultUploadSweepSpec    = "0 */15 * * * *"
	defaultUploadSweepMaxAge  = time.Hour
	cronVersionRefreshTimeout = 30 * time.Second
)

func Routines(cron *cron.Cron, deps Dependencies) {
	log.Print(nil).Info("Running Routine Tasks")

	if env.GetEnvBoolOrDefault("WHATSAPP_ENABLE_HEALTH_CHECK_CRON", true) {
		_, err := cron.AddFunc(healthCheckSpec, func() {
			status := deps.Session.Status()
			entry := log.Session("health").
				WithField("state", status.State).
				WithField("needs_operator", status.NeedsOperator).
				WithField("listeners", deps.Hub.Count())
			if status.NeedsOperator {
				entry.Warn("Session needs an operator to relink")
				return
			}
			entry.Info("Session health")
		})
		if err != nil {
			log.Print(nil).WithField("error", err.Error()).Error("Failed to add health check cron job")
		}
	} else {
		log.Print(nil).Info("Health check cron disabled; relying on whatsmeow event handlers")
	}

	if env.GetEnvBoolOrDefault("WHATSAPP_ENABLE_WAVERSION_REFRESH_CRON", false) {
		spec := env.GetEnvStringOrDefault("WHATSAPP_WAVERSION_REFRESH_CRON_SPEC", defaultVersionRefreshSpec)
		force := env.GetEnvBoolOrDefault("WHATSAPP_WAVERSION_REFRESH_CRON_FORCE", false)
		_, err := cron.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), cronVersionRefreshTimeout)
			defer cancel()
			status, refreshed, err := deps.Versions.Refresh(ctx, force)
			if err != nil {
				log.Print(nil).WithField("version", status.CurrentVersion).WithField("force", force).Error("WA Web version refresh failed: " + err.Error())
				return
			}
			log.Print(nil).WithField("version", status.CurrentVersion).WithField("refreshed", refreshed).WithField("force", force).Info("WA Web version refresh completed")
		})
		if err != nil {
			log.Print(nil).WithField("error", err.Error()).Error("Failed to add WA Web version refresh cron job")
		} else {
			log.Print(nil).WithField("spec", spec).WithField("force", force).Info("WA Web version refresh cron enabled")
		}
	}

	sweepSpec := env.GetEnvStringOrDefault("UPLOAD_SWEEP_CRON_SPEC", defaultUploadSweepSpec)
	maxAge := env.GetEnvDurationOrDefault("UPLOAD_SWEEP_MAX_AGE", defaultUploadSweepMaxAge)
	_, err := cron.AddFunc(sweepSpec, func() {
		removed, err := deps.Uploads.Sweep(maxAge)
		if err != nil {
			log.Print(nil).WithField("dir", deps.Uploads.Dir()).WithError(err).Warn("Upload sweep failed")
			return
		}
		if removed > 0 {
			log.Print(nil).WithField("dir", deps.Uploads.Dir()).WithField("removed", removed).Info("Removed stale uploads")
		}
	})
	if err != nil {
		log.Print(nil).WithField("error", err.Error()).Error("Failed to add upload sweep cron job")
	}

	cron.Start()
}
