package latex

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type TokenType int

const (
	TokenText       TokenType = iota // run of ordinary characters
	TokenCommand                     // \name or a control symbol such as \& or \\
	TokenBeginGroup                  // '{'
	TokenEndGroup                    // '}'
	TokenBeginOpt                    // '['
	TokenEndOpt                      // ']'
	TokenTie                         // '~'
	TokenParBreak                    // blank line
	TokenMarkup                      // literal HTML tag or entity passed through untouched
)

type Token struct {
	Type  TokenType
	Value string
	Star  bool // command carried a trailing '*'
	Pos   int
}

var (
	tagPattern    = regexp.MustCompile(`^</?[A-Za-z][A-Za-z0-9]*(\s[^<>]*)?/?>`)
	entityPattern = regexp.MustCompile(`^&(#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|[A-Za-z][A-Za-z0-9]{1,31});`)
)

// Tokenize splits LaTeX source into tokens. Comments are dropped and runs of
// whitespace containing two or more newlines become a single TokenParBreak.
func Tokenize(src string) []Token {
	lx := lexer{src: src}
	lx.run()
	return lx.tokens
}

type lexer struct {
	src    string
	pos    int
	text   strings.Builder
	start  int
	tokens []Token
}

func (lx *lexer) emit(t Token) {
	lx.flush()
	lx.tokens = append(lx.tokens, t)
}

func (lx *lexer) flush() {
	if lx.text.Len() == 0 {
		return
	}
	lx.tokens = append(lx.tokens, Token{Type: TokenText, Value: lx.text.String(), Pos: lx.start})
	lx.text.Reset()
}

func (lx *lexer) appendText(s string) {
	if lx.text.Len() == 0 {
		lx.start = lx.pos
	}
	lx.text.WriteString(s)
}

func (lx *lexer) run() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch c {
		case '\\':
			lx.command()
		case '{':
			lx.emit(Token{Type: TokenBeginGroup, Value: "{", Pos: lx.pos})
			lx.pos++
		case '}':
			lx.emit(Token{Type: TokenEndGroup, Value: "}", Pos: lx.pos})
			lx.pos++
		case '[':
			lx.emit(Token{Type: TokenBeginOpt, Value: "[", Pos: lx.pos})
			lx.pos++
		case ']':
			lx.emit(Token{Type: TokenEndOpt, Value: "]", Pos: lx.pos})
			lx.pos++
		case '~':
			lx.emit(Token{Type: TokenTie, Value: "~", Pos: lx.pos})
			lx.pos++
		case '%':
			lx.comment()
		case '\n':
			lx.newline()
		case '<':
			lx.markup(tagPattern, "<")
		case '&':
			lx.markup(entityPattern, "&")
		default:
			_, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
			lx.appendText(lx.src[lx.pos : lx.pos+size])
			lx.pos += size
		}
	}
	lx.flush()
}

func (lx *lexer) command() {
	start := lx.pos
	lx.pos++ // backslash
	if lx.pos >= len(lx.src) {
		return
	}
	if !isLetter(lx.src[lx.pos]) {
		_, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		lx.emit(Token{Type: TokenCommand, Value: lx.src[lx.pos : lx.pos+size], Pos: start})
		lx.pos += size
		return
	}
	end := lx.pos
	for end < len(lx.src) && isLetter(lx.src[end]) {
		end++
	}
	tok := Token{Type: TokenCommand, Value: lx.src[lx.pos:end], Pos: start}
	lx.pos = end
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '*' {
		tok.Star = true
		lx.pos++
	}
	lx.emit(tok)
}

// comment skips to the end of the line, newline included.
func (lx *lexer) comment() {
	nl := strings.IndexByte(lx.src[lx.pos:], '\n')
	if nl < 0 {
		lx.pos = len(lx.src)
		return
	}
	// a blank line right after the comment still ends the paragraph
	if rest := strings.TrimLeft(lx.src[lx.pos+nl+1:], " \t\r"); strings.HasPrefix(rest, "\n") {
		lx.pos += nl
		return
	}
	lx.pos += nl + 1
}

func (lx *lexer) newline() {
	end := lx.pos
	newlines := 0
scan:
	for end < len(lx.src) {
		switch lx.src[end] {
		case '\n':
			newlines++
		case ' ', '\t', '\r':
		default:
			break scan
		}
		end++
	}
	if newlines >= 2 {
		lx.emit(Token{Type: TokenParBreak, Pos: lx.pos})
		lx.pos = end
		return
	}
	lx.appendText("\n")
	lx.pos++
}

func (lx *lexer) markup(re *regexp.Regexp, literal string) {
	if m := re.FindString(lx.src[lx.pos:]); m != "" {
		lx.emit(Token{Type: TokenMarkup, Value: m, Pos: lx.pos})
		lx.pos += len(m)
		return
	}
	lx.appendText(literal)
	lx.pos++
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
