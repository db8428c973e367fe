package render

import (
	"regexp"
	"strings"
)

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#039;",
	)

	// The patterns below run on already escaped text, so tags appear as
	// &lt;name ...&gt;. A tag is a known element name followed only by
	// name=value attributes, which keeps text such as Result<T, E> or
	// a<b and c>d intact.
	blockTag   = tagPattern(`kbd|code|pre|span|div|script|style|h[1-6]`)
	lineBreak  = regexp.MustCompile(`(?i)&lt;br\s*/?&gt;`)
	anyTag     = tagPattern(`a|abbr|article|b|big|blockquote|center|cite|del|details|dd|dl|dt|em|font|footer|header|hr|i|iframe|img|input|ins|label|li|mark|nav|ol|p|picture|q|s|section|small|source|strike|strong|sub|summary|sup|table|tbody|td|th|thead|tr|tt|u|ul|video`)
	whitespace = regexp.MustCompile(`\s+`)
)

// tagPattern matches an escaped opening, closing or self-closing tag whose
// name is one of names.
func tagPattern(names string) *regexp.Regexp {
	const attr = `\s+[a-z][a-z0-9-]*=(?:&quot;[^\n]*?&quot;|&#039;[^\n]*?&#039;|[^\s&]+)`
	return regexp.MustCompile(`(?i)&lt;/?(?:` + names + `)(?:` + attr + `)*\s*/?&gt;`)
}

// Sanitize makes external text safe to embed in Telegram HTML. It escapes
// the five markup characters, drops tags (formatting tags first), turns
// <br> into newlines, collapses whitespace and trims the result.
// A whitespace run that contains a newline collapses to a single newline.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = htmlEscaper.Replace(s)
	s = blockTag.ReplaceAllString(s, "")
	s = lineBreak.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllStringFunc(s, func(run string) string {
		if strings.Contains(run, "\n") {
			return "\n"
		}
		return " "
	})
	return strings.TrimSpace(s)
}

// truncate cuts s to at most limit runes and appends "..." when it did.
// A cut that would split an entity drops the partial entity.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if amp := strings.LastIndexByte(cut, '&'); amp >= 0 && !strings.Contains(cut[amp:], ";") {
		cut = cut[:amp]
	}
	return cut + "..."
}
