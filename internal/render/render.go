// Package render turns GitHub repositories into inline query results.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flemzord/ghinline/internal/github"
)

const (
	// MaxResults bounds the number of results in one answer.
	MaxResults = 10
	// MaxDescription bounds the short description, in runes.
	MaxDescription = 100

	noDescription = "No description"
	dateLayout    = "2006-01-02"
)

// Result is one display-ready inline result. MessageText is Telegram HTML.
type Result struct {
	ID           string
	Title        string
	Description  string
	ThumbnailURL string
	MessageText  string
}

// BuildResults renders the first MaxResults repositories in order. Result
// IDs are positions and are only unique within one answer.
func BuildResults(repos []github.Repository) []Result {
	if len(repos) > MaxResults {
		repos = repos[:MaxResults]
	}

	results := make([]Result, 0, len(repos))
	for i, repo := range repos {
		results = append(results, Result{
			ID:           strconv.Itoa(i),
			Title:        Sanitize(repo.FullName),
			Description:  shortDescription(repo.Description),
			ThumbnailURL: repo.Owner.AvatarURL,
			MessageText:  messageText(repo),
		})
	}
	return results
}

func shortDescription(desc string) string {
	clean := Sanitize(desc)
	if clean == "" {
		return noDescription
	}
	return truncate(clean, MaxDescription)
}

func messageText(repo github.Repository) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>%s</b>\n", Sanitize(repo.FullName))
	fmt.Fprintf(&b, "Stars: %d\n", repo.Stars)
	fmt.Fprintf(&b, "Forks: %d\n", repo.Forks)
	if lang := Sanitize(repo.Language); lang != "" {
		fmt.Fprintf(&b, "Language: %s\n", lang)
	}
	if !repo.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "Updated: %s\n", repo.UpdatedAt.UTC().Format(dateLayout))
	}

	desc := Sanitize(repo.Description)
	if desc == "" {
		desc = noDescription
	}
	b.WriteString(desc)
	b.WriteByte('\n')

	fmt.Fprintf(&b, `<a href="%s">Open repository</a>`, Sanitize(repo.HTMLURL))
	return b.String()
}
