package latex

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseHTML(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func visibleText(t *testing.T, fragment string) string {
	t.Helper()
	return strings.Join(strings.Fields(parseHTML(t, fragment).Text()), " ")
}

func wrapDoc(body string) string {
	return "\\documentclass{article}\n\\usepackage{geometry}\n\\begin{document}\n" + body + "\n\\end{document}\n"
}

func TestTranspile_ItemizeProducesItemsInOrder(t *testing.T) {
	src := wrapDoc("\\begin{itemize}\n\\item First\n\\item Second\n\\item Third\n\\end{itemize}")
	doc := parseHTML(t, ToHTML(src))

	items := doc.Find("ul > li")
	if items.Length() != 3 {
		t.Fatalf("li count = %d, want 3", items.Length())
	}
	want := []string{"First", "Second", "Third"}
	items.Each(func(i int, s *goquery.Selection) {
		if got := strings.TrimSpace(s.Text()); got != want[i] {
			t.Errorf("item %d = %q, want %q", i, got, want[i])
		}
	})
	if doc.Find("ol").Length() != 0 {
		t.Fatal("itemize must not produce an ordered list")
	}
}

func TestTranspile_Enumerate(t *testing.T) {
	src := wrapDoc("\\begin{enumerate}\\item One \\item Two\\end{enumerate}")
	doc := parseHTML(t, ToHTML(src))
	if n := doc.Find("ol > li").Length(); n != 2 {
		t.Fatalf("ol li count = %d, want 2", n)
	}
}

func TestTranspile_ListItemDashAndBraces(t *testing.T) {
	src := wrapDoc("\\begin{itemize}\n\\item - Led {the} team\n\\item {\\textbf{Shipped}} v2\n\\end{itemize}")
	doc := parseHTML(t, ToHTML(src))
	items := doc.Find("li")
	if got := strings.TrimSpace(items.Eq(0).Text()); got != "Led the team" {
		t.Fatalf("first item = %q", got)
	}
	if items.Eq(1).Find("strong").Text() != "Shipped" {
		t.Fatalf("bold inside item lost: %q", items.Eq(1).Text())
	}
}

func TestTranspile_NestedList(t *testing.T) {
	src := wrapDoc("\\begin{itemize}\\item Outer \\begin{enumerate}\\item Inner\\end{enumerate}\\item Last\\end{itemize}")
	doc := parseHTML(t, ToHTML(src))
	if n := doc.Find("ul > li").Length(); n != 2 {
		t.Fatalf("outer items = %d, want 2", n)
	}
	if doc.Find("ul > li ol > li").Text() != "Inner" {
		t.Fatal("nested enumerate not rendered inside first item")
	}
}

func TestTranspile_BoldItalicNesting(t *testing.T) {
	html := ToHTML(wrapDoc(`\textbf{Senior \textit{Engineer}}`))
	if !strings.Contains(html, "<strong>Senior <em>Engineer</em></strong>") {
		t.Fatalf("nested styles lost: %s", html)
	}
}

func TestTranspile_DeepFormattingNesting(t *testing.T) {
	html := ToHTML(wrapDoc(`\textbf{a \textit{b \underline{c \texttt{d}}}}`))
	doc := parseHTML(t, html)
	if doc.Find("strong em u code").Text() != "d" {
		t.Fatalf("three levels of nesting not preserved: %s", html)
	}
}

func TestTranspile_Headings(t *testing.T) {
	html := ToHTML(wrapDoc("\\section{Experience}\n\\subsection*{Acme}\n\\subsubsection{2020}"))
	doc := parseHTML(t, html)
	h2 := doc.Find("h2")
	if h2.Text() != "Experience" {
		t.Fatalf("h2 = %q", h2.Text())
	}
	style, _ := h2.Attr("style")
	if !strings.Contains(style, "border-bottom: 2px solid #333") {
		t.Fatalf("h2 style = %q", style)
	}
	if doc.Find("h3").Text() != "Acme" || doc.Find("h4").Text() != "2020" {
		t.Fatalf("sub headings wrong: %s", html)
	}
}

func TestTranspile_SpecialCharacters(t *testing.T) {
	html := ToHTML(wrapDoc(`A \& B \$5 50\% \#1 snake\_case a~b \textbullet{} x \times y \cdot z`))
	text := parseHTML(t, html).Text()
	for _, want := range []string{"A & B", "$5", "50%", "#1", "snake_case", "a\u00a0b", "• x × y • z"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
	if !strings.Contains(html, "&amp;") || !strings.Contains(html, "&nbsp;") {
		t.Errorf("entities not emitted: %s", html)
	}
}

func TestTranspile_StripsUnsupportedConstructs(t *testing.T) {
	body := `\raggedright\Large Name \vspace{4pt} \definecolor{primary}{RGB}{10,20,30}` +
		`\textcolor{primary}{Blue} \colorbox{gray}{Boxed} \hfill end \hspace*{1em}` + "\n" +
		`\begin{minipage}[t]{0.5\textwidth}Inside\end{minipage}`
	res := Transpile(wrapDoc(body))
	text := visibleText(t, res.HTML)
	for _, gone := range []string{"4pt", "RGB", "10,20,30", "primary", "gray", "0.5", "1em", "geometry"} {
		if strings.Contains(text, gone) {
			t.Errorf("text %q still contains %q", text, gone)
		}
	}
	for _, kept := range []string{"Name", "Blue", "Boxed", "end", "Inside"} {
		if !strings.Contains(text, kept) {
			t.Errorf("text %q lost %q", text, kept)
		}
	}
	if res.Degraded {
		t.Fatal("unexpected degraded result")
	}
}

func TestTranspile_LineBreaksParagraphsComments(t *testing.T) {
	html := ToHTML(wrapDoc("First line\\\\\nsecond \\newline third % hidden note\n\nNext paragraph"))
	doc := parseHTML(t, html)
	if n := doc.Find("br").Length(); n != 2 {
		t.Fatalf("br count = %d, want 2: %s", n, html)
	}
	if n := doc.Find("p").Length(); n != 2 {
		t.Fatalf("p count = %d, want 2: %s", n, html)
	}
	if strings.Contains(html, "hidden") {
		t.Fatal("comment leaked into output")
	}
}

func TestTranspile_UnknownCommandDroppedWithWarning(t *testing.T) {
	res := Transpile(wrapDoc(`Visit \href{https://example.com}{my site} \LaTeX`))
	text := visibleText(t, res.HTML)
	if strings.Contains(text, "example.com") || !strings.Contains(text, "my site") {
		t.Fatalf("text = %q", text)
	}
	found := false
	for _, w := range res.Warnings {
		if w == `unsupported command \href dropped` {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestTranspile_StrayItemAndEmptyBody(t *testing.T) {
	if text := visibleText(t, ToHTML(`\item Hello`)); text != "• Hello" {
		t.Fatalf("stray item = %q", text)
	}
	html := ToHTML(`\documentclass{article}\begin{document}\end{document}`)
	if !strings.Contains(html, "<p>Resume content</p>") {
		t.Fatalf("empty body placeholder missing: %s", html)
	}
	if !strings.HasPrefix(html, `<div style="`+ContainerStyle+`">`) {
		t.Fatalf("container missing: %s", html)
	}
}

func TestTranspile_PlainTextIsIdempotent(t *testing.T) {
	inputs := []string{
		"Hello world",
		"Plain résumé text & more\n\nSecond paragraph",
		"a < b and c > d",
	}
	for _, in := range inputs {
		first := ToHTML(in)
		second := ToHTML(first)
		if a, b := visibleText(t, first), visibleText(t, second); a != b {
			t.Errorf("visible text changed for %q:\n first=%q\nsecond=%q", in, a, b)
		}
	}
}

func TestTranspile_FallbackOnExcessiveNesting(t *testing.T) {
	src := "<x>" + strings.Repeat("{", MaxDepth+10) + "deep" + strings.Repeat("}", MaxDepth+10) + "\nend"
	res := Transpile(src)
	if !res.Degraded {
		t.Fatal("expected degraded result")
	}
	if !strings.HasPrefix(res.HTML, `<div style="`+FallbackStyle+`">`) {
		t.Fatalf("fallback container missing: %.80s", res.HTML)
	}
	if !strings.Contains(res.HTML, "&lt;x&gt;") || !strings.Contains(res.HTML, "<br />end") {
		t.Fatalf("fallback did not escape source: %.120s", res.HTML)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "nesting too deep") {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestIsHTML(t *testing.T) {
	tests := map[string]bool{
		"<p>hi</p>":       true,
		"a > b < c":       true,
		`\textbf{x}`:      false,
		"only < one side": false,
		"":                false,
	}
	for in, want := range tests {
		if got := IsHTML(in); got != want {
			t.Errorf("IsHTML(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestExtractBody(t *testing.T) {
	if got := ExtractBody(`pre\begin{document}body\end{document}post`); got != "body" {
		t.Fatalf("got %q", got)
	}
	if got := ExtractBody("no wrapper"); got != "no wrapper" {
		t.Fatalf("got %q", got)
	}
}

func TestTranspile_EndWithSpaceBeforeName(t *testing.T) {
	doc := parseHTML(t, ToHTML("\\begin{itemize} \\item x \\end {itemize} after"))
	if got := strings.TrimSpace(doc.Find("ul > li").Text()); got != "x" {
		t.Fatalf("item = %q, want %q", got, "x")
	}
	if got := strings.TrimSpace(doc.Find("ul + p").Text()); got != "after" {
		t.Fatalf("paragraph after list = %q, want %q", got, "after")
	}
}

func TestTranspile_BlockInsideInlineIsFlattened(t *testing.T) {
	html := ToHTML(wrapDoc(`\textbf{\section{Skills}} and \textit{\begin{itemize}\item Go \item SQL\end{itemize}}`))
	doc := parseHTML(t, html)
	if n := doc.Find("h2, ul, li").Length(); n != 0 {
		t.Fatalf("block elements inside inline markup: %s", html)
	}
	if got := doc.Find("p > strong").Text(); got != "Skills" {
		t.Fatalf("strong = %q, want %q", got, "Skills")
	}
	if got := strings.Join(strings.Fields(doc.Find("p > em").Text()), " "); got != "Go SQL" {
		t.Fatalf("em = %q, want %q", got, "Go SQL")
	}
}
