package messaging

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	typWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/internal/types"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

// Sender is the part of the session the messaging endpoints need.
type Sender interface {
	Ready() bool
	Send(ctx context.Context, msg pkgWhatsApp.OutboundMessage) (pkgWhatsApp.SendResult, error)
}

// Uploads keeps attachments on disk between receipt and dispatch.
type Uploads interface {
	Save(header *multipart.FileHeader) (string, error)
	Remove(paths ...string) error
}

type Handler struct {
	sender  Sender
	uploads Uploads
}

func New(sender Sender, uploads Uploads) *Handler {
	return &Handler{sender: sender, uploads: uploads}
}

// SendMessage
// @Summary     Send text and images
// @Description Sends the text first, then every uploaded image without caption
// @Tags        Messaging
// @Accept      multipart/form-data
// @Produce     json
// @Param       number  formData string true  "Phone number, group or newsletter id"
// @Param       message formData string false "Text message"
// @Param       images  formData file   false "Images"
// @Success     200
// @Failure     400
// @Failure     500
// @Router      /api/send-message [post]
func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req typWhatsApp.RequestSendMessage
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		log.Print(c).WithError(err).Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["images"]
	}

	if strings.TrimSpace(req.Number) == "" {
		return router.ResponseBadRequest(c, "Number is required")
	}
	if req.Message == "" && len(files) == 0 {
		return router.ResponseBadRequest(c, "Message or images are required")
	}
	if !h.sender.Ready() {
		return router.ResponseBadRequest(c, "WhatsApp client is not ready")
	}

	to := pkgWhatsApp.NormalizeRecipient(req.Number)
	ctx := c.UserContext()

	paths := make([]string, 0, len(files))
	for _, file := range files {
		path, err := h.uploads.Save(file)
		if err != nil {
			_ = h.uploads.Remove(paths...)
			return router.ResponseInternalErrorWithDetails(c, "Failed to send message", err)
		}
		paths = append(paths, path)
	}

	log.Send(c, "SendMessage", to.String()).WithField("images", len(paths)).Info("Sending message")

	messageIDs := make([]string, 0, len(paths)+1)
	if req.Message != "" {
		result, err := h.sender.Send(ctx, pkgWhatsApp.TextMessage(to, req.Message))
		if err != nil {
			_ = h.uploads.Remove(paths...)
			log.Send(c, "SendMessage", to.String()).WithError(err).Error("Failed to send text")
			return router.ResponseInternalErrorWithDetails(c, "Failed to send message", err)
		}
		messageIDs = append(messageIDs, result.MessageID)
	}

	for i, path := range paths {
		result, err := h.sender.Send(ctx, pkgWhatsApp.ImageMessage(to, path, ""))
		if err != nil {
			_ = h.uploads.Remove(paths[i:]...)
			log.Send(c, "SendMessage", to.String()).WithError(err).WithField("sent", len(messageIDs)).Error("Failed to send image")
			return router.ResponseInternalErrorWithDetails(c, "Failed to send message", err)
		}
		messageIDs = append(messageIDs, result.MessageID)
		if err := h.uploads.Remove(path); err != nil {
			log.Send(c, "SendMessage", to.String()).WithError(err).Warn("Failed to remove sent upload")
		}
	}

	return router.ResponseSuccessWithData(c, sentSummary(req.Message != "", len(paths)), fiber.Map{
		"recipient":  to.String(),
		"messageIds": messageIDs,
	})
}

func sentSummary(text bool, images int) string {
	switch {
	case text && images > 0:
		return fmt.Sprintf("Successfully sent message and %d image(s)", images)
	case images > 0:
		return fmt.Sprintf("Successfully sent %d image(s)", images)
	default:
		return "Successfully sent message"
	}
}

// SendExternal
// @Summary     Send a text message
// @Description Entry point for external systems
// @Tags        Messaging
// @Accept      json
// @Produce     json
// @Param       Authorization header string false "Bearer token when caller auth is enabled"
// @Param       body body typWhatsApp.RequestExternalSendMessage true "Recipient and text"
// @Success     200
// @Failure     400
// @Failure     500
// @Router      /api/external/send-message [post]
func (h *Handler) SendExternal(c *fiber.Ctx) error {
	var req typWhatsApp.RequestExternalSendMessage
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		log.Print(c).WithError(err).Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	if strings.TrimSpace(req.Number) == "" {
		return router.ResponseBadRequest(c, "Number is required")
	}
	if req.Message == "" {
		return router.ResponseBadRequest(c, "Message is required")
	}
	if !h.sender.Ready() {
		return router.ResponseBadRequest(c, "WhatsApp client is not ready")
	}

	to := pkgWhatsApp.NormalizeRecipient(req.Number)
	log.Send(c, "SendExternal", to.String()).Info("Sending external message")

	result, err := h.sender.Send(c.UserContext(), pkgWhatsApp.TextMessage(to, req.Message))
	if err != nil {
		log.Send(c, "SendExternal", to.String()).WithError(err).Error("Failed to send message")
		return router.ResponseInternalErrorWithDetails(c, "Failed to send message", err)
	}

	return router.ResponseSuccessWithData(c, "Message sent successfully", typWhatsApp.ResponseSent{
		MessageID: result.MessageID,
		Recipient: req.Number,
		Timestamp: typWhatsApp.Timestamp(time.Now()),
	})
}
