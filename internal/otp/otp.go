package otp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	typWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/internal/types"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

const defaultSessionID = "test-session"

// otpPath locates the code inside a Cloud API template message.
var otpPath = []string{"extendedMessage", "whatsappCloudApiTemplateMessageObject", "components", "0", "parameters", "0", "text"}

type Sender interface {
	Ready() bool
	Send(ctx context.Context, msg pkgWhatsApp.OutboundMessage) (pkgWhatsApp.SendResult, error)
}

type Handler struct {
	sender Sender
}

func New(sender Sender) *Handler {
	return &Handler{sender: sender}
}

func Message(code string) string {
	return "*" + code + "* is your verification code. For your security, do not share this code."
}

// Send
// @Summary     Relay an OTP
// @Description Accepts a Cloud API template webhook and sends its first body parameter as the code
// @Tags        Webhooks
// @Accept      json
// @Produce     json
// @Param       Authorization header string false "Bearer token when caller auth is enabled"
// @Success     200
// @Failure     400
// @Failure     500
// @Router      /otp [post]
func (h *Handler) Send(c *fiber.Ctx) error {
	body := map[string]interface{}{}
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			log.Print(c).WithError(err).Warn("Failed to parse body request")
			return router.ResponseBadRequest(c, "Failed parse body request")
		}
	}

	phoneNumber, hasPhone := typWhatsApp.Field(body, "to")
	rawCode, _ := typWhatsApp.Path(body, otpPath...)
	code, hasCode := typWhatsApp.Text(rawCode)
	sessionID := typWhatsApp.FieldOrDefault(body, "sessionId", defaultSessionID)

	if !hasPhone || !hasCode {
		debug := fiber.Map{
			"phoneNumber":  nil,
			"otp":          nil,
			"receivedBody": body,
		}
		if v, ok := body["to"]; ok {
			debug["phoneNumber"] = v
		}
		if rawCode != nil {
			debug["otp"] = rawCode
		}
		return router.ResponseBadRequestWithData(c, "Invalid testOTP structure - missing to or OTP text", fiber.Map{
			"debug": debug,
		})
	}

	if !h.sender.Ready() {
		return router.ResponseBadRequest(c, "WhatsApp client is not ready")
	}

	to := pkgWhatsApp.NormalizeRecipient(phoneNumber)
	result, err := h.sender.Send(c.UserContext(), pkgWhatsApp.TextMessage(to, Message(code)))
	if err != nil {
		log.Send(c, "SendOTP", to.String()).WithError(err).Error("Failed to send OTP message")
		return router.ResponseInternalErrorWithDetails(c, "Failed to send OTP message", err)
	}

	log.Send(c, "SendOTP", to.String()).WithField("session_id", sessionID).WithField("message_id", result.MessageID).Info("OTP message sent")

	return router.ResponseSuccessWithData(c, "OTP message sent", typWhatsApp.ResponseOTP{
		MessageID:   result.MessageID,
		SessionID:   sessionID,
		OTP:         code,
		PhoneNumber: phoneNumber,
		Timestamp:   typWhatsApp.Timestamp(time.Now()),
	})
}
