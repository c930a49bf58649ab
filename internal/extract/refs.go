// Package extract pulls external references out of raw item payloads.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// References extracts outbound http/https links from an item body. HTML
// bodies are walked for anchors; plain text falls back to pattern matching.
// Results are deduplicated in order of first appearance.
func References(body string) []string {
	if body == "" {
		return nil
	}

	var refs []string
	if looksLikeHTML(body) {
		refs = anchorRefs(body)
	}
	if len(refs) == 0 {
		refs = urlPattern.FindAllString(body, -1)
	}

	seen := make(map[string]bool, len(refs))
	var out []string
	for _, r := range refs {
		r = strings.TrimRight(r, ".,;")
		if r == "" || seen[r] {
			continue
		}
		if !validRef(r) {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func looksLikeHTML(body string) bool {
	return strings.Contains(body, "<a ") || strings.Contains(body, "<A ") ||
		strings.Contains(body, "href=")
}

func anchorRefs(body string) []string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					refs = append(refs, strings.TrimSpace(attr.Val))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs
}

func validRef(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
