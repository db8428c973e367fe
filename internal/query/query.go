// Package query turns raw inline-query text into a typed search intent.
package query

import (
	"regexp"
	"strings"
)

// Kind identifies which lookup an intent resolves to.
type Kind int

// Intent kinds.
const (
	// KindUser lists the repositories owned by a user.
	KindUser Kind = iota
	// KindRepo runs a free-text repository search. Parse never produces
	// it; callers still handle it.
	KindRepo
	// KindExact fetches a single owner/name repository.
	KindExact
)

// String returns a short label suitable for logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindRepo:
		return "repo"
	case KindExact:
		return "exact"
	default:
		return "unknown"
	}
}

// Intent is the parsed form of one inline query.
type Intent struct {
	Raw   string
	Valid bool
	Kind  Kind

	// Owner is the username for KindUser and the repository owner for KindExact.
	Owner string
	// Repo is the repository name for KindExact. It may contain "/".
	Repo string

	// Query is the GitHub search expression equivalent to the intent.
	Query string
}

var (
	spaceRun      = regexp.MustCompile(`\s+`)
	slashRun      = regexp.MustCompile(`/+`)
	spaceAtSlashL = regexp.MustCompile(`\s*/`)
	spaceAtSlashR = regexp.MustCompile(`/\s*`)
)

// Parse interprets raw inline-query text. It never fails: malformed input
// yields an Intent with Valid set to false.
func Parse(raw string) Intent {
	in := Intent{Raw: raw, Kind: KindUser}

	text := strings.TrimSpace(raw)
	if text == "" {
		return in
	}
	text = normalize(text)

	if !strings.Contains(text, "/") {
		in.Valid = true
		in.Owner = text
		in.Query = "user:" + text
		return in
	}

	parts := make([]string, 0, 2)
	for _, p := range strings.Split(text, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return in
	}

	in.Valid = true
	in.Kind = KindExact
	in.Owner = parts[0]
	in.Repo = strings.Join(parts[1:], "/")
	in.Query = in.Repo + " user:" + in.Owner
	return in
}

func normalize(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	s = slashRun.ReplaceAllString(s, "/")
	s = spaceAtSlashL.ReplaceAllString(s, "/")
	s = spaceAtSlashR.ReplaceAllString(s, "/")
	return s
}
