// Package command reacts to operator commands typed into WhatsApp chats.
package command

import (
	"context"
	"errors"
	"strings"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/env"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/jomrewards"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

const DefaultPrefix = "/postdesmond"

// Marketing delivers a templated message through the marketing API.
type Marketing interface {
	Send(ctx context.Context, payload jomrewards.SendRequest) (map[string]interface{}, error)
}

// Replier sends the outcome back to the chat the command came from.
type Replier interface {
	Send(ctx context.Context, msg pkgWhatsApp.OutboundMessage) (pkgWhatsApp.SendResult, error)
}

// Template is a marketing message selectable by name.
type Template struct {
	Body    string
	Buttons []jomrewards.Button
}

var templates = map[string]Template{
	"template1": {
		Body: "Hello 👋 Thanks for reaching out JOMRewards.\n\n" +
			"We help F&B businesses bring old customers back automatically using WhatsApp loyalty & automation (no app download needed).\n" +
			"Before I share any details — are you currently running a business?",
		Buttons: []jomrewards.Button{
			jomrewards.QuickReply("Yes, I own / manage a business", "yes"),
			jomrewards.QuickReply("Planning to start", "planning"),
			jomrewards.QuickReply("Just browsing", "browsing"),
		},
	},
}

// LookupTemplate matches name case-insensitively.
func LookupTemplate(name string) (Template, bool) {
	tmpl, ok := templates[strings.ToLower(name)]
	return tmpl, ok
}

type Router struct {
	prefix    string
	marketing Marketing
	replier   Replier
}

func New(prefix string, marketing Marketing, replier Replier) *Router {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &Router{prefix: prefix, marketing: marketing, replier: replier}
}

// NewFromEnv reads COMMAND_PREFIX.
func NewFromEnv(marketing Marketing, replier Replier) *Router {
	return New(env.GetEnvStringOrDefault("COMMAND_PREFIX", DefaultPrefix), marketing, replier)
}

// Text is the user-visible text of a message: the plain body, the extended
// text or an image caption.
func Text(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return text
	}
	if text := msg.GetExtendedTextMessage().GetText(); text != "" {
		return text
	}
	return msg.GetImageMessage().GetCaption()
}

// Command is a parsed "{prefix} {template} {phone}" line.
type Command struct {
	Template string
	Phone    string
}

// Parse reports ok=false for text without the prefix or with fewer than
// two words after the trigger. The trigger spans as many words as the
// prefix, so "/postdesmondX t 601" still parses. Extra words are ignored.
func (r *Router) Parse(text string) (Command, bool) {
	if !strings.HasPrefix(text, r.prefix) {
		return Command{}, false
	}
	trigger := len(strings.Fields(r.prefix))
	words := strings.Fields(text)
	if len(words) < trigger+2 {
		return Command{}, false
	}
	return Command{Template: words[trigger], Phone: words[trigger+1]}, true
}

// Handle is registered with Session.OnMessage.
func (r *Router) Handle(ctx context.Context, evt *events.Message) {
	if evt == nil || evt.Info.IsFromMe {
		return
	}
	text := Text(evt.Message)
	if text == "" || !strings.HasPrefix(text, r.prefix) {
		return
	}

	entry := log.Command(evt.Info.Chat.String())
	cmd, ok := r.Parse(text)
	if !ok {
		entry.Warn("Invalid format. Expected: " + r.prefix + " {template} {phone}")
		return
	}

	tmpl, ok := LookupTemplate(cmd.Template)
	if !ok {
		entry.WithField("template", cmd.Template).Warn("Template not recognized")
		return
	}

	entry = entry.WithField("template", cmd.Template).WithField("phone", log.MaskJID(cmd.Phone))
	entry.Info("Processing command")

	var reply string
	_, err := r.marketing.Send(ctx, jomrewards.SendRequest{
		RecipientPhone: cmd.Phone,
		Type:           jomrewards.TypeBodyWithButtons,
		MessageBody:    tmpl.Body,
		Buttons:        tmpl.Buttons,
	})
	if err != nil {
		entry.WithError(err).Error("Marketing API call failed")
		reply = "❌ Error sending message: " + errorMessage(err)
	} else {
		entry.Info("Marketing API call succeeded")
		reply = "✅ Message sent successfully to " + cmd.Phone + " using " + cmd.Template + "."
	}

	to := pkgWhatsApp.RecipientFromJID(evt.Info.Chat)
	if _, err := r.replier.Send(ctx, pkgWhatsApp.TextMessage(to, reply)); err != nil {
		entry.WithError(err).Error("Failed to send command reply")
	}
}

func errorMessage(err error) string {
	var apiErr *jomrewards.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}
