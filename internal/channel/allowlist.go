package channel

import "strings"

// AllowList controls which users and chats may use a channel. An inline bot
// is public by default, so an empty or nil AllowList allows everyone.
type AllowList struct {
	users  map[string]struct{}
	groups map[string]struct{}
}

// NewAllowList creates an AllowList with O(1) lookups. Users may be listed
// by numeric ID or by username, with or without the leading "@". Keys are
// normalized at construction time so that IsAllowed can use direct map lookups.
func NewAllowList(users, groups []string) *AllowList {
	a := &AllowList{
		users:  make(map[string]struct{}, len(users)),
		groups: make(map[string]struct{}, len(groups)),
	}
	for _, u := range users {
		if k := normalize(u); k != "" {
			a.users[k] = struct{}{}
		}
	}
	for _, g := range groups {
		if k := normalize(g); k != "" {
			a.groups[k] = struct{}{}
		}
	}
	return a
}

// Restricted reports whether the list filters anyone.
func (a *AllowList) Restricted() bool {
	return a != nil && (len(a.users) > 0 || len(a.groups) > 0)
}

// IsAllowed reports whether the sender is permitted.
//
// Rules:
//   - If both maps are empty → allow.
//   - If the sender's ID or username matches a user entry → allow.
//   - If the chat's ID matches a group entry → allow.
//   - Otherwise → deny.
func (a *AllowList) IsAllowed(s Sender) bool {
	if !a.Restricted() {
		return true
	}

	if _, ok := a.users[normalize(s.ID)]; ok {
		return true
	}
	if s.Username != "" {
		if _, ok := a.users[normalize(s.Username)]; ok {
			return true
		}
	}
	if s.ChatID != "" {
		if _, ok := a.groups[normalize(s.ChatID)]; ok {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "@")
}
