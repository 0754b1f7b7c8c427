package reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	typWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/internal/types"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/validation"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

const (
	defaultSessionID   = "test-session"
	defaultMessageType = "text"
	notAvailable       = "N/A"
)

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

// Details are the reservation fields rendered into the confirmation text.
type Details struct {
	FullName        string
	BPID            string
	BookingID       string
	MerchantName    string
	CommissionRate  string
	ReservationDate string
	ReservationTime string
	NumberOfGuests  string
	Remarks         string
}

// DetailsFromBody applies the fallbacks for absent fields.
func DetailsFromBody(body map[string]interface{}) Details {
	return Details{
		FullName:        typWhatsApp.FieldOrDefault(body, "BP_fullname", "Guest"),
		BPID:            typWhatsApp.FieldOrDefault(body, "BP_ID", notAvailable),
		BookingID:       typWhatsApp.FieldOrDefault(body, "booking_id", notAvailable),
		MerchantName:    typWhatsApp.FieldOrDefault(body, "merchant_name", notAvailable),
		CommissionRate:  typWhatsApp.FieldOrDefault(body, "commission_rate", notAvailable),
		ReservationDate: typWhatsApp.FieldOrDefault(body, "reservation_date", notAvailable),
		ReservationTime: typWhatsApp.FieldOrDefault(body, "reservation_time", notAvailable),
		NumberOfGuests:  typWhatsApp.FieldOrDefault(body, "number_of_guests", notAvailable),
		Remarks:         typWhatsApp.FieldOrDefault(body, "remarks", "No special requests"),
	}
}

func (d Details) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Hi, %s (ID: %s)*\n\n", d.FullName, d.BPID)
	b.WriteString("Thank you for choosing Jio8 😎\n\n")
	b.WriteString("To confirm the details of your reservation, please review the information below:\n\n")
	fmt.Fprintf(&b, "• Booking ID: %s\n", d.BookingID)
	fmt.Fprintf(&b, "• Merchant: %s\n", d.MerchantName)
	fmt.Fprintf(&b, "• Commission Rate: %s\n", d.CommissionRate)
	fmt.Fprintf(&b, "• Reservation Date: %s\n", d.ReservationDate)
	fmt.Fprintf(&b, "• Reservation Time: %s\n", d.ReservationTime)
	fmt.Fprintf(&b, "• Number of Guests: %s\n", d.NumberOfGuests)
	fmt.Fprintf(&b, "• Remarks: %s\n\n", d.Remarks)
	b.WriteString("If the information above is correct, please reply \"*Yes*\" to proceed.\n\n")
	b.WriteString("Jio8 Customer Support")
	return b.String()
}

// Initiate
// @Summary     Send a reservation confirmation
// @Description Renders the reservation template and sends it as text, image caption or document caption
// @Tags        Webhooks
// @Accept      json
// @Produce     json
// @Param       Authorization header string false "Bearer token when caller auth is enabled"
// @Success     200
// @Failure     400
// @Failure     500
// @Router      /initiate [post]
func (h *Handler) Initiate(c *fiber.Ctx) error {
	body := map[string]interface{}{}
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			log.Print(c).WithError(err).Warn("Failed to parse body request")
			return router.ResponseBadRequest(c, "Failed parse body request")
		}
	}

	phoneNumber, ok := typWhatsApp.Field(body, "phone_number")
	if !ok {
		return router.ResponseBadRequest(c, "Phone number is required")
	}
	if !h.sender.Ready() {
		return router.ResponseBadRequest(c, "WhatsApp client is not ready")
	}

	sessionID := typWhatsApp.FieldOrDefault(body, "sessionId", defaultSessionID)
	messageType := typWhatsApp.FieldOrDefault(body, "messageType", defaultMessageType)
	mediaURL, _ := typWhatsApp.Field(body, "message")
	details := DetailsFromBody(body)

	to := pkgWhatsApp.NormalizeRecipient(phoneNumber)
	text := details.Message()

	var msg pkgWhatsApp.OutboundMessage
	switch kind := pkgWhatsApp.ParseMessageKind(messageType); kind {
	case pkgWhatsApp.KindImage, pkgWhatsApp.KindDocument:
		if err := validation.ValidateMediaURL(mediaURL); err != nil {
			return router.ResponseBadRequest(c, fmt.Sprintf("A valid media URL in message is required for %s type: %s", kind, err.Error()))
		}
		if kind == pkgWhatsApp.KindImage {
			msg = pkgWhatsApp.ImageMessage(to, strings.TrimSpace(mediaURL), text)
		} else {
			msg = pkgWhatsApp.DocumentMessage(to, strings.TrimSpace(mediaURL), text)
		}
	default:
		msg = pkgWhatsApp.TextMessage(to, text)
	}

	log.Send(c, "Initiate", to.String()).WithField("message_type", msg.Kind).WithField("session_id", sessionID).Info("Sending reservation confirmation")

	result, err := h.sender.Send(c.UserContext(), msg)
	if err != nil {
		log.Send(c, "Initiate", to.String()).WithError(err).Error("Failed to send initiate message")
		return router.ResponseInternalErrorWithDetails(c, "Failed to send initiate message", err)
	}

	var bookingID *string
	if v, ok := typWhatsApp.Field(body, "booking_id"); ok {
		bookingID = &v
	}

	return router.ResponseSuccessWithData(c, "Initiate message sent", typWhatsApp.ResponseInitiate{
		MessageID:   result.MessageID,
		SessionID:   sessionID,
		MessageType: messageType,
		BookingID:   bookingID,
		Timestamp:   typWhatsApp.Timestamp(time.Now()),
	})
}
