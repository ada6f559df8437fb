package latex

import (
	"fmt"
	"strings"
)

const (
	beginDocument = `\begin{document}`
	endDocument   = `\end{document}`
)

// Result is the outcome of a transpilation. Degraded is set when the source
// could not be parsed and HTML holds the escaped source instead.
type Result struct {
	HTML     string
	Degraded bool
	Warnings []string
}

// IsHTML reports whether content already looks like HTML.
func IsHTML(content string) bool {
	return strings.Contains(content, "<") && strings.Contains(content, ">")
}

// ToHTML converts LaTeX source to an HTML fragment. It never fails.
func ToHTML(source string) string {
	return Transpile(source).HTML
}

// Transpile converts LaTeX source to an HTML fragment wrapped in a styled
// container, falling back to escaped text when parsing fails.
func Transpile(source string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = fallback(source, fmt.Errorf("transpile: %v", r))
		}
	}()

	doc, err := Parse(ExtractBody(source))
	if err != nil {
		return fallback(source, err)
	}
	body := RenderHTML(doc)
	if strings.TrimSpace(body) == "" {
		body = placeholder
	}
	return Result{HTML: container(ContainerStyle, body), Warnings: doc.Warnings}
}

// ExtractBody returns the text between \begin{document} and \end{document}.
// Either marker may be missing.
func ExtractBody(source string) string {
	body := source
	if i := strings.Index(body, beginDocument); i >= 0 {
		body = body[i+len(beginDocument):]
	}
	if i := strings.Index(body, endDocument); i >= 0 {
		body = body[:i]
	}
	return body
}

func fallback(source string, cause error) Result {
	escaped := strings.NewReplacer("<", "&lt;", ">", "&gt;", "\n", "<br />").Replace(source)
	return Result{
		HTML:     container(FallbackStyle, escaped),
		Degraded: true,
		Warnings: []string{cause.Error()},
	}
}
