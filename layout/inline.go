package layout

import (
	"strings"

	"github.com/go-text/typesetting/segmenter"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// span is a run of text sharing one computed style. br marks a forced break.
type span struct {
	text  string
	style Style
	br    bool
}

func collectInline(n *html.Node, st Style, out *[]span) {
	switch n.Type {
	case html.TextNode:
		*out = append(*out, span{text: n.Data, style: st})
		return
	case html.ElementNode:
	default:
		return
	}
	if skipNode(n) {
		return
	}
	if n.DataAtom == atom.Br {
		*out = append(*out, span{br: true, style: st})
		return
	}
	cs := computeStyle(n, st)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectInline(c, cs, out)
	}
}

// collapse applies white-space: normal across spans and splits them into
// lines at forced breaks.
func collapse(spans []span) [][]span {
	var groups [][]span
	var cur []span
	space := true // suppress leading whitespace
	for _, s := range spans {
		if s.br {
			groups = append(groups, cur)
			cur = nil
			space = true
			continue
		}
		var b strings.Builder
		for _, r := range s.text {
			if r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == '\f' {
				if !space {
					b.WriteByte(' ')
				}
				space = true
				continue
			}
			b.WriteRune(r)
			space = false
		}
		if b.Len() > 0 {
			cur = append(cur, span{text: b.String(), style: s.style})
		}
	}
	return append(groups, cur)
}

// piece is the part of a word that falls in one span.
type piece struct {
	text  string
	style Style
	width float64
}

type word struct {
	pieces  []piece
	width   float64
	trimmed float64 // width without trailing spaces
}

// inline breaks spans into line boxes of at most width pixels.
func (e *Engine) inline(spans []span, block Style, x, width float64) {
	if len(spans) == 0 {
		return
	}
	groups := collapse(spans)
	blank := true
	for _, g := range groups {
		if len(g) > 0 {
			blank = false
		}
	}
	if blank && len(groups) == 1 {
		return
	}

	for i, g := range groups {
		if len(g) == 0 {
			// a forced break with nothing after it ends the block without an empty line
			if i < len(groups)-1 {
				e.emitLine(nil, block, x)
			}
			continue
		}
		e.wrap(e.words(g), block, x, width)
	}
}

// words splits a line group at Unicode line-break opportunities.
func (e *Engine) words(group []span) []word {
	var runes []rune
	var owner []int
	for i, s := range group {
		for _, r := range s.text {
			runes = append(runes, r)
			owner = append(owner, i)
		}
	}

	var seg segmenter.Segmenter
	seg.Init(runes)
	iter := seg.LineIterator()

	var words []word
	for iter.Next() {
		line := iter.Line()
		var w word
		start := line.Offset
		end := line.Offset + len(line.Text)
		for start < end {
			j := start
			for j < end && owner[j] == owner[start] {
				j++
			}
			st := group[owner[start]].style
			text := string(runes[start:j])
			pw := e.m.Advance(text, st.Font(), st.FontSize)
			w.pieces = append(w.pieces, piece{text: text, style: st, width: pw})
			w.width += pw
			start = j
		}
		w.trimmed = w.width
		if n := len(w.pieces); n > 0 {
			last := w.pieces[n-1]
			if t := strings.TrimRight(last.text, " "); t != last.text {
				w.trimmed = w.width - last.width + e.m.Advance(t, last.style.Font(), last.style.FontSize)
			}
		}
		words = append(words, w)
	}
	return words
}

func (e *Engine) wrap(words []word, block Style, x, maxWidth float64) {
	var line []piece
	lineWidth := 0.0

	flushLine := func() {
		e.emitLine(line, block, x)
		line = nil
		lineWidth = 0
	}

	for _, w := range words {
		if len(line) > 0 && lineWidth+w.trimmed > maxWidth {
			flushLine()
		}
		if len(line) == 0 && w.trimmed > maxWidth {
			// Character-level wrapping for words longer than the line
			for _, p := range w.pieces {
				var sub strings.Builder
				subWidth := 0.0
				for _, r := range p.text {
					rw := e.m.Advance(string(r), p.style.Font(), p.style.FontSize)
					if lineWidth+subWidth+rw > maxWidth && (sub.Len() > 0 || len(line) > 0) {
						if sub.Len() > 0 {
							line = append(line, piece{text: sub.String(), style: p.style, width: subWidth})
						}
						flushLine()
						sub.Reset()
						subWidth = 0
					}
					sub.WriteRune(r)
					subWidth += rw
				}
				if sub.Len() > 0 {
					line = append(line, piece{text: sub.String(), style: p.style, width: subWidth})
					lineWidth += subWidth
				}
			}
			continue
		}
		line = append(line, w.pieces...)
		lineWidth += w.width
	}
	if len(line) > 0 {
		flushLine()
	}
}

// emitLine places one line box at the cursor. A nil line is an empty line
// holding only the block's strut.
func (e *Engine) emitLine(line []piece, block Style, x float64) {
	e.settle()

	// trailing spaces hang past the line end
	if n := len(line); n > 0 {
		last := line[n-1]
		if t := strings.TrimRight(last.text, " "); t != last.text {
			if t == "" {
				line = line[:n-1]
			} else {
				last.width = e.m.Advance(t, last.style.Font(), last.style.FontSize)
				last.text = t
				line[n-1] = last
			}
		}
	}

	strut := e.m.Metrics(block.Font(), block.FontSize)
	height := block.FontSize * block.LineHeight
	ascent, descent := strut.Ascent, strut.Descent
	for _, p := range line {
		if h := p.style.FontSize * block.LineHeight; h > height {
			height = h
		}
		m := e.m.Metrics(p.style.Font(), p.style.FontSize)
		if m.Ascent > ascent {
			ascent = m.Ascent
		}
		if m.Descent > descent {
			descent = m.Descent
		}
	}
	if minHeight := ascent + descent; height < minHeight {
		height = minHeight
	}
	baseline := e.cursorY + (height-(ascent+descent))/2 + ascent

	if e.marker != nil {
		mk := *e.marker
		mk.Baseline = baseline
		mk.Ascent, mk.Descent = ascent, descent
		e.res.Runs = append(e.res.Runs, mk)
		e.marker = nil
	}

	cx := x
	for _, p := range line {
		if p.style.Background != nil && strings.TrimSpace(p.text) != "" {
			e.res.Rects = append(e.res.Rects, Rect{
				X:     cx - 2,
				Y:     baseline - ascent - 1,
				W:     p.width + 4,
				H:     ascent + descent + 2,
				Color: *p.style.Background,
			})
		}
		if strings.TrimSpace(p.text) != "" || p.style.Underline {
			e.res.Runs = append(e.res.Runs, Run{
				X:         cx,
				Baseline:  baseline,
				Width:     p.width,
				Ascent:    ascent,
				Descent:   descent,
				Text:      p.text,
				Font:      p.style.Font(),
				Size:      p.style.FontSize,
				Color:     p.style.Color,
				Underline: p.style.Underline,
			})
		}
		cx += p.width
	}

	e.cursorY += height
	e.res.Lines++
}
