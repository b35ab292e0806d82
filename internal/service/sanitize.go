package service

import "github.com/microcosm-cc/bluemonday"

// htmlPolicy is a concurrency-safe bluemonday policy for sanitizing message
// content (spec §4.4 "Send/update message: content is sanitized before
// storage and broadcast"). Grounded on the teacher's internal/ws/client.go
// htmlPolicy.
var htmlPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "strong", "b", "em", "i", "s", "del",
		"code", "pre", "a", "ul", "ol", "li", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6", "hr",
	)
	p.AllowAttrs("href", "rel").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

// sanitizeContent strips disallowed HTML from message content before it is
// persisted or broadcast.
func sanitizeContent(content string) string {
	return htmlPolicy.Sanitize(content)
}
