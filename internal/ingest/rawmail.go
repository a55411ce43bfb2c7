package ingest

import (
	"io"
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"
)

// ParsedRawMessage is the subset of an RFC 822 message the lifecycle needs
type ParsedRawMessage struct {
	SenderEmail string
	SenderName  string
	Subject     string
	BodyText    string
}

// ParseRawMessage parses an RFC 822 message source. HTML-only messages are
// reduced to plain text since classification and drafting work on text.
func ParseRawMessage(r io.Reader) (*ParsedRawMessage, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedRawMessage{
		Subject:  env.GetHeader("Subject"),
		BodyText: strings.TrimSpace(env.Text),
	}

	if parsed.BodyText == "" && env.HTML != "" {
		parsed.BodyText = strings.TrimSpace(stripHTMLTags(env.HTML))
	}

	parsed.SenderName, parsed.SenderEmail = parseFromHeader(env.GetHeader("From"))

	return parsed, nil
}

var fromPattern = regexp.MustCompile(`^(?:"?([^"<]*)"?\s*)?<?([^<>]+@[^<>]+)>?$`)

// parseFromHeader extracts name and address from a From header
func parseFromHeader(from string) (name, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	matches := fromPattern.FindStringSubmatch(from)
	if len(matches) >= 3 {
		name = strings.Trim(strings.TrimSpace(matches[1]), `"`)
		email = strings.TrimSpace(matches[2])
		return name, email
	}

	return "", from
}

var (
	scriptStylePattern = regexp.MustCompile(`(?i)<(script|style)[^>]*>[\s\S]*?</(script|style)>`)
	tagPattern         = regexp.MustCompile(`<[^>]*>`)
)

// stripHTMLTags reduces an HTML body to whitespace-normalized text
func stripHTMLTags(html string) string {
	html = scriptStylePattern.ReplaceAllString(html, "")
	html = tagPattern.ReplaceAllString(html, " ")

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	html = replacer.Replace(html)

	return strings.Join(strings.Fields(html), " ")
}
