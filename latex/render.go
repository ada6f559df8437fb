package latex

import (
	"strconv"
	"strings"
)

// Inline styles keep the fragment renderable without an external stylesheet.
const (
	ContainerStyle = "font-family: 'Segoe UI', 'Calibri', 'Arial', sans-serif; line-height: 1.5; color: #333; padding: 15px; font-size: 10px;"
	FallbackStyle  = "font-family: serif; line-height: 1.5; padding: 15px; font-size: 10px; color: #333;"

	h2Style   = "font-size: 16px; font-weight: bold; margin-top: 15px; margin-bottom: 8px; border-bottom: 2px solid #333; padding-bottom: 5px;"
	h3Style   = "font-size: 13px; font-weight: bold; margin-top: 10px; margin-bottom: 6px;"
	h4Style   = "font-size: 12px; font-weight: bold; margin-top: 8px; margin-bottom: 4px;"
	listStyle = "margin: 8px 0; margin-left: 20px;"
	itemStyle = "margin-bottom: 4px;"
	codeStyle = "font-family: monospace; background-color: #f0f0f0; padding: 2px 4px;"

	placeholder = "<p>Resume content</p>"
)

var headingStyles = map[int]string{2: h2Style, 3: h3Style, 4: h4Style}

// RenderHTML renders the document body without the outer container.
func RenderHTML(doc *Document) string {
	var b strings.Builder
	for _, n := range doc.Blocks {
		renderNode(&b, n)
	}
	return b.String()
}

func renderNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Text:
		b.WriteString(escapeText(v.Value))
	case *Markup:
		b.WriteString(v.Value)
	case *Bold:
		wrap(b, "<strong>", "</strong>", v.Children)
	case *Italic:
		wrap(b, "<em>", "</em>", v.Children)
	case *Underline:
		wrap(b, "<u>", "</u>", v.Children)
	case *Mono:
		wrap(b, `<code style="`+codeStyle+`">`, "</code>", v.Children)
	case *Group:
		renderNodes(b, v.Children)
	case *Paragraph:
		wrap(b, "<p>", "</p>", v.Children)
	case *Heading:
		tag := "h" + strconv.Itoa(v.Level)
		style := headingStyles[v.Level]
		wrap(b, "<"+tag+` style="`+style+`">`, "</"+tag+">", trimRun(v.Children))
	case *List:
		tag := "ul"
		if v.Ordered {
			tag = "ol"
		}
		b.WriteString("<" + tag + ` style="` + listStyle + `">`)
		for _, it := range v.Items {
			wrap(b, `<li style="`+itemStyle+`">`, "</li>", trimRun(it.Children))
		}
		b.WriteString("</" + tag + ">")
	case *LineBreak:
		b.WriteString("<br />")
	case *ParBreak:
		b.WriteByte(' ')
	}
}

func renderNodes(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		renderNode(b, n)
	}
}

func wrap(b *strings.Builder, open, close string, children []Node) {
	b.WriteString(open)
	renderNodes(b, children)
	b.WriteString(close)
}

// escapeText collapses ASCII whitespace runs and escapes HTML metacharacters.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '\u00a0':
			b.WriteString("&nbsp;")
		default:
			b.WriteRune(r)
		}
		space = false
	}
	return b.String()
}

func container(style, body string) string {
	return `<div style="` + style + `">` + body + "</div>"
}
