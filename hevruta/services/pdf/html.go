package pdf

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var strippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"iframe": true, "object": true, "embed": true,
}

var voidElements = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true,
	"meta": true, "link": true, "area": true, "col": true,
}

// SanitizeHTML strips active content (script/style/iframe/noscript and
// inline event handlers) from editor HTML before it reaches the
// renderer. The editor output is trusted-ish, but exports get shared.
func SanitizeHTML(input string) string {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return ""
	}
	body := findBody(doc)
	if body == nil {
		return ""
	}
	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		renderNode(&sb, c)
	}
	return strings.TrimSpace(sb.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

func renderNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(html.EscapeString(n.Data))
	case html.ElementNode:
		if strippedElements[n.Data] {
			return
		}
		sb.WriteString("<" + n.Data)
		for _, a := range n.Attr {
			if strings.HasPrefix(strings.ToLower(a.Key), "on") {
				continue
			}
			if a.Key == "href" && strings.HasPrefix(strings.TrimSpace(strings.ToLower(a.Val)), "javascript:") {
				continue
			}
			// html.EscapeString, not %q: Go quoting leaves a literal
			// quote as \" which an HTML parser reads as end-of-attribute.
			sb.WriteString(fmt.Sprintf(" %s=\"%s\"", a.Key, html.EscapeString(a.Val)))
		}
		if voidElements[n.Data] {
			sb.WriteString("/>")
			return
		}
		sb.WriteString(">")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderNode(sb, c)
		}
		sb.WriteString("</" + n.Data + ">")
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderNode(sb, c)
		}
	}
}

// ExtractTitle pulls a document title out of editor HTML: <title> first,
// then the first heading, then the caller's fallback.
func ExtractTitle(input, fallback string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return fallback
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	for _, sel := range []string{"h1", "h2", "h3"} {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return fallback
}

// printShell wraps sanitized editor content in an RTL Hebrew print
// document. The font stack must cover Hebrew glyphs or Chromium falls
// back to tofu boxes in the PDF.
func printShell(body, title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html dir="rtl" lang="he">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
  body {
    direction: rtl;
    text-align: right;
    font-family: "David Libre", "Frank Ruhl Libre", "Noto Sans Hebrew", Arial, sans-serif;
    font-size: 12pt;
    line-height: 1.6;
    color: #1a1a1a;
  }
  h1, h2, h3 { font-weight: 700; }
  blockquote { border-right: 3px solid #ccc; border-left: none; margin-right: 0; padding-right: 12px; }
  ul, ol { padding-right: 24px; padding-left: 0; }
  table { border-collapse: collapse; width: 100%%; }
  td, th { border: 1px solid #999; padding: 4px 8px; }
</style>
</head>
<body>
%s
</body>
</html>`, html.EscapeString(title), body)
}
