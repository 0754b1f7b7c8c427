package log

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/env"
)

var logger = logrus.New()

func init() {
	logger.Formatter = &logrus.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
		DisableColors:   false,
		ForceColors:     true,
	}

	level, err := logrus.ParseLevel(env.GetEnvStringOrDefault("LOG_LEVEL", "info"))
	if err == nil {
		logger.SetLevel(level)
	}
}

// Logger exposes the shared logger for components that need a *logrus.Logger.
func Logger() *logrus.Logger {
	return logger
}

func Print(c *fiber.Ctx) *logrus.Entry {
	if c == nil {
		return logger.WithFields(logrus.Fields{})
	}

	remoteIP := c.IP()
	if v := c.Locals("remote_ip"); v != nil {
		if ip, ok := v.(string); ok && ip != "" {
			remoteIP = ip
		}
	}
	fields := logrus.Fields{
		"remote_ip": remoteIP,
		"method":    c.Method(),
		"uri":       c.OriginalURL(),
	}
	if v, ok := c.Locals("request_id").(string); ok && v != "" {
		fields["request_id"] = v
	}
	return logger.WithFields(fields)
}

// Session tags connection manager entries.
func Session(op string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"component": "session",
		"op":        op,
	})
}

// Send tags outbound message entries with the masked recipient.
func Send(c *fiber.Ctx, op string, recipient string) *logrus.Entry {
	return Print(c).WithFields(logrus.Fields{
		"op":        op,
		"recipient": MaskJID(recipient),
	})
}

// Command tags inbound command router entries.
func Command(chat string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"component": "command",
		"chat":      MaskJID(chat),
	})
}

// MaskJID hides the last four characters of the user part.
func MaskJID(jid string) string {
	user, server, hasServer := strings.Cut(jid, "@")
	if len(user) >= 4 {
		user = user[0:len(user)-4] + "xxxx"
	}
	if hasServer {
		return user + "@" + server
	}
	return user
}
