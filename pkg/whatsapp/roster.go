package whatsapp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"
	"go.mau.fi/whatsmeow/types"
)

const (
	rosterGroupsKey   = "groups"
	rosterContactsKey = "contacts"
)

type GroupSummary struct {
	ID                      string `json:"id"`
	Subject                 string `json:"subject"`
	IsCommunity             bool   `json:"isCommunity"`
	IsCommunityAnnouncement bool   `json:"isCommunityAnnouncement"`
}

type ContactSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Groups lists joined groups. Results are cached for the roster TTL and
// flushed whenever the session becomes ready.
func (s *Session) Groups(ctx context.Context) ([]GroupSummary, error) {
	client, err := s.readyClient()
	if err != nil {
		return nil, err
	}
	if cached, ok := s.roster.Get(rosterGroupsKey); ok {
		return cached.([]GroupSummary), nil
	}

	groups, err := client.GetJoinedGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("get joined groups: %w", err)
	}

	summaries := make([]GroupSummary, 0, len(groups))
	for _, group := range groups {
		if group == nil {
			continue
		}
		summaries = append(summaries, SummarizeGroup(*group))
	}

	s.roster.Set(rosterGroupsKey, summaries, cache.DefaultExpiration)
	return summaries, nil
}

// Contacts lists stored contacts except groups, sorted by display name.
func (s *Session) Contacts(ctx context.Context) ([]ContactSummary, error) {
	client, err := s.readyClient()
	if err != nil {
		return nil, err
	}
	if cached, ok := s.roster.Get(rosterContactsKey); ok {
		return cached.([]ContactSummary), nil
	}

	contacts, err := client.GetAllContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get contacts: %w", err)
	}

	summaries := SummarizeContacts(contacts)
	s.roster.Set(rosterContactsKey, summaries, cache.DefaultExpiration)
	return summaries, nil
}

func SummarizeGroup(group types.GroupInfo) GroupSummary {
	return GroupSummary{
		ID:                      group.JID.String(),
		Subject:                 group.Name,
		IsCommunity:             group.IsParent,
		IsCommunityAnnouncement: group.IsDefaultSubGroup,
	}
}

func SummarizeContacts(contacts map[types.JID]types.ContactInfo) []ContactSummary {
	summaries := make([]ContactSummary, 0, len(contacts))
	for jid, info := range contacts {
		if jid.Server == types.GroupServer {
			continue
		}
		summaries = append(summaries, ContactSummary{
			ID:     jid.String(),
			Name:   contactName(info),
			Number: jid.User,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := strings.ToLower(summaries[i].Name), strings.ToLower(summaries[j].Name)
		if a == b {
			return summaries[i].ID < summaries[j].ID
		}
		return a < b
	})
	return summaries
}

func contactName(info types.ContactInfo) string {
	for _, name := range []string{info.FullName, info.PushName, info.BusinessName} {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return "Unknown"
}
