package latex

import (
	"errors"
	"fmt"
	"strings"
)

// MaxDepth bounds group and environment nesting.
const MaxDepth = 128

var ErrTooDeep = errors.New("latex: nesting too deep")

// ignored commands take no argument and produce no output.
var ignored = map[string]bool{
	"raggedright": true, "raggedleft": true, "raggedcenter": true, "centering": true,
	"tiny": true, "scriptsize": true, "footnotesize": true, "small": true, "normalsize": true,
	"large": true, "Large": true, "LARGE": true, "huge": true, "Huge": true,
	"vfill": true, "hfill": true, "noindent": true, "indent": true,
	"newpage": true, "clearpage": true, "pagebreak": true, "maketitle": true,
	"bfseries": true, "itshape": true, "ttfamily": true, "normalfont": true,
}

var symbols = map[string]string{
	"textbullet":      "•",
	"bullet":          "•",
	"cdot":            "•",
	"times":           "×",
	"&":               "&",
	"$":               "$",
	"%":               "%",
	"#":               "#",
	"_":               "_",
	"{":               "{",
	"}":               "}",
	" ":               " ",
	",":               " ",
	";":               " ",
	"quad":            " ",
	"qquad":           " ",
	"textbar":         "|",
	"textbackslash":   "\\",
	"textasciitilde":  "~",
	"textasciicircum": "^",
	"ldots":           "…",
	"dots":            "…",
	"LaTeX":           "LaTeX",
	"TeX":             "TeX",
}

// Parse builds a Document from a LaTeX fragment.
func Parse(src string) (doc *Document, err error) {
	p := &parser{toks: Tokenize(src), seen: map[string]bool{}}
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}
			doc, err = nil, pe.err
		}
	}()
	nodes := p.seq(nil)
	return &Document{Blocks: buildBlocks(nodes), Warnings: p.warnings}, nil
}

type parseError struct{ err error }

type parser struct {
	toks     []Token
	pos      int
	depth    int
	warnings []string
	seen     map[string]bool
}

func (p *parser) fail(err error) { panic(parseError{err}) }

func (p *parser) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.seen[msg] {
		return
	}
	p.seen[msg] = true
	p.warnings = append(p.warnings, msg)
}

func (p *parser) eof() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() Token { return p.toks[p.pos] }

// seq parses nodes until stop reports true for the next token or input ends.
// The stopping token is not consumed.
func (p *parser) seq(stop func(Token) bool) []Node {
	p.depth++
	if p.depth > MaxDepth {
		p.fail(ErrTooDeep)
	}
	defer func() { p.depth-- }()

	var nodes []Node
	for !p.eof() {
		if stop != nil && stop(p.peek()) {
			break
		}
		if n := p.node(); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (p *parser) node() Node {
	tok := p.peek()
	p.pos++
	switch tok.Type {
	case TokenText:
		return &Text{Value: tok.Value}
	case TokenMarkup:
		return &Markup{Value: tok.Value}
	case TokenTie:
		return &Text{Value: "\u00a0"}
	case TokenParBreak:
		return &ParBreak{}
	case TokenBeginOpt, TokenEndOpt:
		return &Text{Value: tok.Value}
	case TokenBeginGroup:
		children := p.seq(isEndGroup)
		p.expectEndGroup()
		return &Group{Children: children}
	case TokenEndGroup:
		return nil
	case TokenCommand:
		return p.command(tok)
	}
	return nil
}

func (p *parser) command(tok Token) Node {
	name := tok.Value
	switch name {
	case "textbf":
		return &Bold{Children: p.inlineArg()}
	case "textit", "emph":
		return &Italic{Children: p.inlineArg()}
	case "underline":
		return &Underline{Children: p.inlineArg()}
	case "texttt":
		return &Mono{Children: p.inlineArg()}
	case "textcolor", "colorbox":
		p.skipOptional()
		p.skipArg()
		return &Group{Children: p.arg()}
	case "color":
		p.skipOptional()
		p.skipArg()
		return nil
	case "section":
		p.skipOptional()
		return &Heading{Level: 2, Children: p.inlineArg()}
	case "subsection":
		p.skipOptional()
		return &Heading{Level: 3, Children: p.inlineArg()}
	case "subsubsection":
		p.skipOptional()
		return &Heading{Level: 4, Children: p.inlineArg()}
	case "begin":
		return p.environment()
	case "end":
		p.warnf("unmatched \\end{%s} dropped", p.rawArg())
		return nil
	case "item":
		p.skipOptional()
		return &Text{Value: "• "}
	case "\\":
		p.skipOptional()
		return &LineBreak{}
	case "newline", "linebreak":
		return &LineBreak{}
	case "par":
		return &ParBreak{}
	case "definecolor":
		p.skipArg()
		p.skipOptional()
		p.skipArg()
		p.skipArg()
		return nil
	case "vspace", "hspace":
		p.skipArg()
		return nil
	case "documentclass", "usepackage":
		p.skipOptional()
		p.skipArg()
		return nil
	}
	if s, ok := symbols[name]; ok {
		return &Text{Value: s}
	}
	if ignored[name] || !isLetter(name[0]) {
		return nil
	}
	p.warnf("unsupported command \\%s dropped", name)
	p.skipOptional()
	p.skipArg()
	return nil
}

func (p *parser) environment() Node {
	name := p.rawArg()
	switch name {
	case "itemize":
		return p.list(name, false)
	case "enumerate":
		return p.list(name, true)
	case "minipage":
		for p.skipOptional() {
		}
		p.skipArg()
	case "tabular", "tabularx", "tabular*":
		if name != "tabular" {
			p.skipArg()
		}
		p.skipOptional()
		p.skipArg()
	case "document", "center", "flushleft", "flushright", "quote", "quotation":
	default:
		p.warnf("environment %s rendered as plain content", name)
	}
	children := p.seq(p.endOf(name))
	p.closeEnv(name)
	return &Group{Children: children}
}

func (p *parser) list(name string, ordered bool) Node {
	l := &List{Ordered: ordered}
	end := p.endOf(name)
	stop := func(t Token) bool { return isCommand(t, "item") || end(t) }

	if lead := p.seq(stop); !isBlank(lead) {
		p.warnf("text before first \\item in %s dropped", name)
	}
	for !p.eof() && isCommand(p.peek(), "item") {
		p.pos++
		p.skipOptional()
		item := &Item{Children: p.seq(stop)}
		trimDash(item)
		if !isBlank(item.Children) {
			l.Items = append(l.Items, item)
		}
	}
	p.closeEnv(name)
	return l
}

// trimDash removes a leading "-" bullet typed by hand inside an item.
func trimDash(item *Item) {
	for i, n := range item.Children {
		t, ok := n.(*Text)
		if !ok {
			return
		}
		s := strings.TrimLeft(t.Value, " \t\r\n")
		if s == "" {
			continue
		}
		if strings.HasPrefix(s, "-") {
			t.Value = strings.TrimLeft(s[1:], " \t\r\n")
		}
		item.Children = item.Children[i:]
		return
	}
}

func (p *parser) endOf(name string) func(Token) bool {
	return func(t Token) bool {
		return isCommand(t, "end") && p.envNameAt(p.pos+1) == name
	}
}

func (p *parser) closeEnv(name string) {
	if p.eof() {
		p.warnf("environment %s not closed", name)
		return
	}
	p.pos++ // \end
	p.rawArg()
}

// envNameAt reads "{name}" starting at token i without consuming it.
// Leading whitespace is skipped, as rawArg does.
func (p *parser) envNameAt(i int) string {
	for i < len(p.toks) && p.toks[i].Type == TokenText && strings.TrimSpace(p.toks[i].Value) == "" {
		i++
	}
	if i+2 >= len(p.toks) || p.toks[i].Type != TokenBeginGroup || p.toks[i+2].Type != TokenEndGroup {
		return ""
	}
	return strings.TrimSpace(p.toks[i+1].Value)
}

func (p *parser) skipSpace() {
	for !p.eof() {
		t := p.peek()
		if t.Type != TokenText || strings.TrimSpace(t.Value) != "" {
			return
		}
		p.pos++
	}
}

// arg parses a mandatory brace argument. A missing argument yields nil.
func (p *parser) arg() []Node {
	save := p.pos
	p.skipSpace()
	if p.eof() || p.peek().Type != TokenBeginGroup {
		p.pos = save
		return nil
	}
	p.pos++
	children := p.seq(isEndGroup)
	p.expectEndGroup()
	return children
}

// inlineArg parses a brace argument that may only hold inline content.
func (p *parser) inlineArg() []Node {
	return flattenInline(p.arg())
}

// rawArg consumes a brace argument and returns its text.
func (p *parser) rawArg() string {
	save := p.pos
	p.skipSpace()
	if p.eof() || p.peek().Type != TokenBeginGroup {
		p.pos = save
		return ""
	}
	start := p.pos + 1
	p.skipBalanced(TokenBeginGroup, TokenEndGroup)
	end := p.pos
	if end > start && p.toks[end-1].Type == TokenEndGroup {
		end--
	}
	var b strings.Builder
	for _, t := range p.toks[start:end] {
		b.WriteString(t.Value)
	}
	return strings.TrimSpace(b.String())
}

func (p *parser) skipArg() {
	save := p.pos
	p.skipSpace()
	if p.eof() || p.peek().Type != TokenBeginGroup {
		p.pos = save
		return
	}
	p.skipBalanced(TokenBeginGroup, TokenEndGroup)
}

// skipOptional consumes a bracketed optional argument and reports whether one was present.
func (p *parser) skipOptional() bool {
	save := p.pos
	p.skipSpace()
	if p.eof() || p.peek().Type != TokenBeginOpt {
		p.pos = save
		return false
	}
	p.skipBalanced(TokenBeginOpt, TokenEndOpt)
	return true
}

func (p *parser) skipBalanced(open, close TokenType) {
	depth := 0
	for !p.eof() {
		t := p.peek()
		p.pos++
		switch t.Type {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *parser) expectEndGroup() {
	if p.eof() {
		p.warnf("unclosed brace group")
		return
	}
	p.pos++
}

func isEndGroup(t Token) bool { return t.Type == TokenEndGroup }

func isCommand(t Token, name string) bool { return t.Type == TokenCommand && t.Value == name }

// buildBlocks groups inline runs into paragraphs, split at paragraph breaks
// and around headings and lists. Groups holding block content are flattened.
func buildBlocks(nodes []Node) []Node {
	var blocks, run []Node
	flush := func() {
		if !isBlank(run) {
			blocks = append(blocks, &Paragraph{Children: trimRun(run)})
		}
		run = nil
	}
	var walk func([]Node)
	walk = func(ns []Node) {
		for _, n := range ns {
			switch v := n.(type) {
			case *ParBreak:
				flush()
			case *Heading, *List:
				flush()
				blocks = append(blocks, n)
			case *Group:
				if containsBlock(v.Children) {
					walk(v.Children)
					continue
				}
				run = append(run, n)
			default:
				run = append(run, n)
			}
		}
	}
	walk(nodes)
	flush()
	return blocks
}

// trimRun strips leading and trailing whitespace and line breaks from a paragraph.
func trimRun(run []Node) []Node {
	for len(run) > 0 {
		if _, ok := run[0].(*LineBreak); ok {
			run = run[1:]
			continue
		}
		t, ok := run[0].(*Text)
		if !ok {
			break
		}
		t.Value = strings.TrimLeft(t.Value, " \t\r\n")
		if t.Value != "" {
			break
		}
		run = run[1:]
	}
	for len(run) > 0 {
		last := run[len(run)-1]
		if _, ok := last.(*LineBreak); ok {
			run = run[:len(run)-1]
			continue
		}
		t, ok := last.(*Text)
		if !ok {
			break
		}
		t.Value = strings.TrimRight(t.Value, " \t\r\n")
		if t.Value != "" {
			break
		}
		run = run[:len(run)-1]
	}
	return run
}
