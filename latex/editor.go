package latex

// CompletionKind is the editor's item kind code. All LaTeX snippets share one kind.
type CompletionKind int

const KindCommand CompletionKind = 5

type Completion struct {
	Label      string         `json:"label"`
	Kind       CompletionKind `json:"kind"`
	InsertText string         `json:"insertText"`
}

func cmd(label, insert string) Completion {
	return Completion{Label: label, Kind: KindCommand, InsertText: insert}
}

// Completions lists editor snippets for the supported commands. $1, $2 mark
// tab stops.
func Completions() []Completion {
	return []Completion{
		// text formatting
		cmd(`\textbf`, `\textbf{$1}`),
		cmd(`\textit`, `\textit{$1}`),
		cmd(`\underline`, `\underline{$1}`),
		cmd(`\texttt`, `\texttt{$1}`),

		// sections
		cmd(`\section`, `\section{$1}`),
		cmd(`\subsection`, `\subsection{$1}`),
		cmd(`\subsubsection`, `\subsubsection{$1}`),

		// lists
		cmd(`\begin{itemize}`, "\\begin{itemize}\n\\item $1\n\\end{itemize}"),
		cmd(`\begin{enumerate}`, "\\begin{enumerate}\n\\item $1\n\\end{enumerate}"),

		cmd(`\begin{tabular}`, "\\begin{tabular}{$1}\n$2\n\\end{tabular}"),

		cmd(`\bullet`, `\bullet`),
		cmd(`\cdot`, `\cdot`),
		cmd(`\times`, `\times`),

		cmd(`\color`, `\color{$1}`),
		cmd(`\textcolor`, `\textcolor{$1}{$2}`),

		// spacing
		cmd(`\vspace`, `\vspace{$1}`),
		cmd(`\hspace`, `\hspace{$1}`),
		cmd(`\\`, `\\`),
		cmd(`\par`, `\par`),

		// alignment
		cmd(`\center`, `\center{$1}`),
		cmd(`\raggedleft`, `\raggedleft{$1}`),
		cmd(`\raggedright`, `\raggedright{$1}`),

		// document structure
		cmd(`\documentclass`, `\documentclass{article}`),
		cmd(`\usepackage`, `\usepackage{$1}`),
		cmd(`\begin{document}`, "\\begin{document}\n$1\n\\end{document}"),
	}
}

type CommentRule struct {
	LineComment string `json:"lineComment"`
}

type Pair struct {
	Open  string   `json:"open"`
	Close string   `json:"close"`
	NotIn []string `json:"notIn,omitempty"`
}

// LanguageSettings holds bracket and comment rules for an editor.
type LanguageSettings struct {
	Comments         CommentRule `json:"comments"`
	Brackets         [][2]string `json:"brackets"`
	AutoClosingPairs []Pair      `json:"autoClosingPairs"`
	SurroundingPairs []Pair      `json:"surroundingPairs"`
}

func LanguageConfig() LanguageSettings {
	brackets := [][2]string{{"{", "}"}, {"[", "]"}, {"(", ")"}}
	ls := LanguageSettings{
		Comments: CommentRule{LineComment: "%"},
		Brackets: brackets,
	}
	for _, br := range brackets {
		ls.AutoClosingPairs = append(ls.AutoClosingPairs, Pair{Open: br[0], Close: br[1], NotIn: []string{"string"}})
		ls.SurroundingPairs = append(ls.SurroundingPairs, Pair{Open: br[0], Close: br[1]})
	}
	return ls
}

type ThemeRule struct {
	Token      string `json:"token"`
	Foreground string `json:"foreground"`
}

type Theme struct {
	Base    string            `json:"base"`
	Inherit bool              `json:"inherit"`
	Rules   []ThemeRule       `json:"rules"`
	Colors  map[string]string `json:"colors"`
}

// SyntaxTheme returns the dark highlighting theme for LaTeX sources.
func SyntaxTheme() Theme {
	return Theme{
		Base:    "vs-dark",
		Inherit: true,
		Rules: []ThemeRule{
			{Token: "keyword", Foreground: "569CD6"},  // commands
			{Token: "string", Foreground: "CE9178"},   // brace content
			{Token: "comment", Foreground: "6A9955"},  // % comments
			{Token: "number", Foreground: "B5CEA8"},
			{Token: "variable", Foreground: "9CDCFE"},
		},
		Colors: map[string]string{
			"editor.background":           "#1e1e1e",
			"editor.foreground":           "#d4d4d4",
			"editorLineNumber.foreground": "#858585",
			"editorCursor.foreground":     "#aeafad",
		},
	}
}
