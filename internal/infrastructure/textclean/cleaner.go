package textclean

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

type CleanConfig struct {
	TagsToRemove  []string
	MaxOutputSize int
}

// DefaultCleanConfig keeps observations small enough for a 3B-parameter
// model's context window.
var DefaultCleanConfig = CleanConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "title",
	},
	MaxOutputSize: 20_000,
}

const truncationMarker = "\n... (truncated)"

// CleanObservation turns tool output into plain text: markup is stripped,
// whitespace collapsed, and the result truncated to cfg.MaxOutputSize runes.
func CleanObservation(raw string, cfg *CleanConfig) string {
	if cfg == nil {
		cfg = &DefaultCleanConfig
	}

	text := raw
	if strings.ContainsAny(raw, "<&") {
		text = stripMarkup(raw, cfg)
	}

	return Truncate(collapseWhitespace(text), cfg.MaxOutputSize)
}

// Truncate cuts s to at most max runes, appending a marker when it does.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + truncationMarker
}

func stripMarkup(raw string, cfg *CleanConfig) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	body := findBodyNode(doc)
	if body == nil {
		body = doc
	}

	var sb strings.Builder
	collectText(body, cfg, &sb)
	return sb.String()
}

func findBodyNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}

func collectText(n *html.Node, cfg *CleanConfig, sb *strings.Builder) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if isOneOf(n.Data, cfg.TagsToRemove...) {
			return
		}
		if isBlock(n.Data) {
			sb.WriteString("\n")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, cfg, sb)
	}

	if n.Type == html.ElementNode && isBlock(n.Data) {
		sb.WriteString("\n")
	}
}

func isBlock(tag string) bool {
	return isOneOf(tag, "p", "div", "br", "li", "ul", "ol", "tr", "table", "section", "article",
		"h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre")
}

// collapseWhitespace squeezes runs of spaces and keeps at most one blank line.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
