package templates

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Escape makes plain text safe to place in LaTeX source.
func Escape(s string) string { return latexEscaper.Replace(s) }

// MarkdownToLatex converts a Markdown snippet (emphasis, code spans, lists,
// paragraphs) to the LaTeX subset the transpiler understands.
func MarkdownToLatex(source string) string {
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))
	var b strings.Builder
	writeBlocks(&b, doc, src)
	return strings.TrimSpace(b.String())
}

func writeBlocks(b *strings.Builder, node ast.Node, src []byte) {
	first := true
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			if !first {
				b.WriteString("\n\n")
			}
			writeInline(b, n, src)
		case *ast.Heading:
			if !first {
				b.WriteString("\n\n")
			}
			b.WriteString(`\textbf{`)
			writeInline(b, n, src)
			b.WriteString("}")
		case *ast.List:
			env := "itemize"
			if n.IsOrdered() {
				env = "enumerate"
			}
			b.WriteString("\n\\begin{" + env + "}\n")
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				b.WriteString(`\item `)
				writeBlocks(b, item, src)
				b.WriteString("\n")
			}
			b.WriteString("\\end{" + env + "}\n")
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.WriteString(`\texttt{` + Escape(strings.TrimRight(string(seg.Value(src)), "\n")) + `}\\` + "\n")
			}
		default:
			writeInline(b, n, src)
		}
		first = false
	}
}

func writeInline(b *strings.Builder, node ast.Node, src []byte) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			b.WriteString(Escape(string(n.Segment.Value(src))))
			if n.HardLineBreak() {
				b.WriteString(`\\` + "\n")
			} else if n.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.WriteString(Escape(string(n.Value)))
		case *ast.Emphasis:
			cmd := `\textit{`
			if n.Level >= 2 {
				cmd = `\textbf{`
			}
			b.WriteString(cmd)
			writeInline(b, n, src)
			b.WriteString("}")
		case *ast.CodeSpan:
			b.WriteString(`\texttt{`)
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					b.WriteString(Escape(string(t.Segment.Value(src))))
				}
			}
			b.WriteString("}")
		case *ast.Link:
			b.WriteString(`\underline{`)
			writeInline(b, n, src)
			b.WriteString("}")
		case *ast.AutoLink:
			b.WriteString(Escape(string(n.Label(src))))
		default:
			writeInline(b, n, src)
		}
	}
}
