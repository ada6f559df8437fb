package templates

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/texkit/latex"
)

func TestAll_Order(t *testing.T) {
	var ids []string
	for _, tmpl := range All() {
		ids = append(ids, tmpl.ID)
	}
	assert.Equal(t, []string{"modern", "minimalist", "creative", "professional"}, ids)
}

func TestGet(t *testing.T) {
	tmpl, err := Get("professional")
	require.NoError(t, err)
	assert.Equal(t, "Professional", tmpl.Name)
	assert.Equal(t, CategoryProfessional, tmpl.Category)

	_, err = Get("baroque")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestGenerate_EveryTemplateTranspiles(t *testing.T) {
	for _, tmpl := range All() {
		t.Run(tmpl.ID, func(t *testing.T) {
			src, err := tmpl.Generate(SampleData())
			require.NoError(t, err)

			report := latex.Validate(src)
			assert.True(t, report.IsValid, "validation errors: %v", report.Errors)

			res := latex.Transpile(src)
			require.False(t, res.Degraded, "warnings: %v", res.Warnings)

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, doc.Find("h2").Length(), 4)

			text := strings.Join(strings.Fields(doc.Text()), " ")
			for _, want := range []string{"John Doe", "Tech Company Inc.", "40%", "University of Technology", "E-Commerce Platform"} {
				assert.Contains(t, text, want)
			}
			assert.NotContains(t, text, "<<")
		})
	}
}

func TestGenerate_OptionalSectionsAreOmitted(t *testing.T) {
	data := SampleData()
	data.Summary = ""
	data.Certifications = nil
	data.Projects = nil

	tmpl, err := Get("minimalist")
	require.NoError(t, err)
	src, err := tmpl.Generate(data)
	require.NoError(t, err)

	assert.NotContains(t, src, "Professional Summary")
	assert.NotContains(t, src, "Certifications")
	assert.NotContains(t, src, "Projects")
	assert.Contains(t, src, "Professional Experience")
}

func TestGenerate_EscapesUserText(t *testing.T) {
	data := SampleData()
	data.FullName = "R&D_Lead {50%}"

	tmpl, err := Get("modern")
	require.NoError(t, err)
	src, err := tmpl.Generate(data)
	require.NoError(t, err)
	assert.Contains(t, src, `R\&D\_Lead \{50\%\}`)
	assert.Contains(t, latex.ToHTML(src), "R&amp;D_Lead {50%}")
}

func TestGenerate_NilData(t *testing.T) {
	tmpl, err := Get("creative")
	require.NoError(t, err)
	_, err = tmpl.Generate(nil)
	assert.Error(t, err)
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"50% & $5_x #1", `50\% \& \$5\_x \#1`},
		{"{a}", `\{a\}`},
		{`C:\dir`, `C:\textbackslash{}dir`},
		{"~^", `\textasciitilde{}\textasciicircum{}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.in), tt.in)
	}
}

func TestMarkdownToLatex(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"inline", "**bold** and *it* `code`", `\textbf{bold} and \textit{it} \texttt{code}`},
		{"soft break", "line one\nline two", "line one line two"},
		{"list", "- a\n- b", "\\begin{itemize}\n\\item a\n\\item b\n\\end{itemize}"},
		{"ordered", "1. a\n2. b", "\\begin{enumerate}\n\\item a\n\\item b\n\\end{enumerate}"},
		{"paragraphs", "one\n\ntwo", "one\n\ntwo"},
		{"heading", "# Title", `\textbf{Title}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarkdownToLatex(tt.in))
		})
	}
}
