package whatsapp

import (
	"strings"

	"go.mau.fi/whatsmeow/types"
)

const (
	ContactSuffix    = "@" + types.DefaultUserServer
	GroupSuffix      = "@" + types.GroupServer
	NewsletterSuffix = "@" + types.NewsletterServer
)

type RecipientKind string

const (
	RecipientContact    RecipientKind = "contact"
	RecipientGroup      RecipientKind = "group"
	RecipientNewsletter RecipientKind = "newsletter"
)

// Recipient is a canonical chat address.
type Recipient string

// NormalizeRecipient maps caller input onto a canonical recipient. Group and
// newsletter addresses pass through; anything else is reduced to its digits
// and addressed as a contact. It never rejects input and never infers a
// country code.
func NormalizeRecipient(raw string) Recipient {
	id := strings.TrimSpace(raw)
	if strings.HasSuffix(id, GroupSuffix) || strings.HasSuffix(id, NewsletterSuffix) {
		return Recipient(id)
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)

	return Recipient(digits + ContactSuffix)
}

// RecipientFromJID addresses a chat exactly as the network reported it.
func RecipientFromJID(jid types.JID) Recipient {
	return Recipient(jid.String())
}

func (r Recipient) String() string {
	return string(r)
}

func (r Recipient) Kind() RecipientKind {
	switch {
	case strings.HasSuffix(string(r), GroupSuffix):
		return RecipientGroup
	case strings.HasSuffix(string(r), NewsletterSuffix):
		return RecipientNewsletter
	default:
		return RecipientContact
	}
}

func (r Recipient) JID() (types.JID, error) {
	return types.ParseJID(string(r))
}

// Number is the user part of a contact address.
func (r Recipient) Number() string {
	user, _, _ := strings.Cut(string(r), "@")
	return user
}
