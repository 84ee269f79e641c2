package view

import (
	"html"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	nethtml "golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "ul": true, "ol": true, "table": true, "tr": true,
	"figure": true, "figcaption": true, "hr": true,
}

var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "img": true, "iframe": true,
	"video": true, "audio": true, "svg": true, "head": true,
}

type summaryWriter struct {
	paragraphs []string
	cur        strings.Builder
}

func (w *summaryWriter) flush() {
	lines := strings.Split(w.cur.String(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) > 0 {
		w.paragraphs = append(w.paragraphs, strings.Join(kept, "\n"))
	}
	w.cur.Reset()
}

func (w *summaryWriter) walk(node *nethtml.Node) {
	switch node.Type {
	case nethtml.TextNode:
		w.cur.WriteString(strings.Map(flattenSpace, node.Data))
		return
	case nethtml.ElementNode:
		tag := strings.ToLower(node.Data)
		switch {
		case skippedTags[tag]:
			return
		case tag == "br":
			w.cur.WriteString("\n")
			return
		case tag == "li":
			w.flush()
			w.cur.WriteString("• ")
			w.children(node)
			w.flush()
			return
		case tag == "a":
			before := w.cur.Len()
			w.children(node)
			if strings.TrimSpace(w.cur.String()[before:]) == "" {
				w.cur.WriteString(nodeAttr(node, "href"))
			}
			return
		case blockTags[tag]:
			w.flush()
			w.children(node)
			w.flush()
			return
		}
	}
	w.children(node)
}

func flattenSpace(r rune) rune {
	if r == '\n' || r == '\r' || r == '\t' {
		return ' '
	}
	return r
}

func (w *summaryWriter) children(node *nethtml.Node) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		w.walk(child)
	}
}

func nodeAttr(node *nethtml.Node, name string) string {
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

// SummaryParagraphs flattens an HTML or plain-text summary into paragraphs.
// Line breaks inside a paragraph are kept as "\n".
func SummaryParagraphs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	doc, err := nethtml.Parse(strings.NewReader(raw))
	if err != nil {
		text := strings.Join(strings.Fields(html.UnescapeString(raw)), " ")
		if text == "" {
			return nil
		}
		return []string{text}
	}
	w := &summaryWriter{}
	w.walk(doc)
	w.flush()
	return w.paragraphs
}

// SummaryLines wraps the summary to width, breaking words longer than a line.
func SummaryLines(raw string, width int) []string {
	paragraphs := SummaryParagraphs(raw)
	out := make([]string, 0, len(paragraphs)*3)
	for i, p := range paragraphs {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, wrapText(p, width)...)
	}
	return out
}

func wrapText(text string, width int) []string {
	if width < 1 {
		return strings.Split(text, "\n")
	}
	lines := strings.Split(wrap.String(wordwrap.String(text, width), width), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return lines
}
