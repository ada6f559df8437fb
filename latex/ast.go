package latex

import "strings"

// Node is an element of the parsed document tree.
type Node interface {
	node()
}

// Document is the parse result. Blocks holds only Paragraph, Heading and
// List nodes.
type Document struct {
	Blocks   []Node
	Warnings []string
}

type Text struct{ Value string }

// Markup is literal HTML found in the source and emitted unchanged.
type Markup struct{ Value string }

type Bold struct{ Children []Node }
type Italic struct{ Children []Node }
type Underline struct{ Children []Node }
type Mono struct{ Children []Node }

// Group is a brace group or an unwrapped environment; it adds no markup.
type Group struct{ Children []Node }

type Heading struct {
	Level    int // 2..4
	Children []Node
}

type List struct {
	Ordered bool
	Items   []*Item
}

type Item struct{ Children []Node }

type LineBreak struct{}

type ParBreak struct{}

type Paragraph struct{ Children []Node }

func (*Text) node()      {}
func (*Markup) node()    {}
func (*Bold) node()      {}
func (*Italic) node()    {}
func (*Underline) node() {}
func (*Mono) node()      {}
func (*Group) node()     {}
func (*Heading) node()   {}
func (*List) node()      {}
func (*Item) node()      {}
func (*LineBreak) node() {}
func (*ParBreak) node()  {}
func (*Paragraph) node() {}

func containsBlock(nodes []Node) bool {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Heading, *List, *Paragraph:
			return true
		case *Group:
			if containsBlock(v.Children) {
				return true
			}
		}
	}
	return false
}

// flattenInline rewrites block nodes found inside inline markup as plain
// inline runs. Headings and paragraphs keep their children; list items are
// separated by spaces.
func flattenInline(nodes []Node) []Node {
	if !containsBlock(nodes) {
		return nodes
	}
	out := make([]Node, 0, len(nodes))
	space := func() { out = append(out, &Text{Value: " "}) }
	for _, n := range nodes {
		switch v := n.(type) {
		case *Heading:
			out = append(out, flattenInline(v.Children)...)
		case *Paragraph:
			out = append(out, flattenInline(v.Children)...)
		case *List:
			for i, item := range v.Items {
				if i > 0 {
					space()
				}
				out = append(out, flattenInline(item.Children)...)
			}
		case *ParBreak:
			space()
		case *Group:
			out = append(out, &Group{Children: flattenInline(v.Children)})
		default:
			out = append(out, n)
		}
	}
	return out
}

// isBlank reports whether nodes render to nothing but whitespace.
func isBlank(nodes []Node) bool {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Text:
			if strings.TrimSpace(v.Value) != "" {
				return false
			}
		case *ParBreak:
		case *Group:
			if !isBlank(v.Children) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// TextContent concatenates the text of nodes without markup.
func TextContent(nodes []Node) string {
	var out []byte
	var walk func([]Node)
	walk = func(ns []Node) {
		for _, n := range ns {
			switch v := n.(type) {
			case *Text:
				out = append(out, v.Value...)
			case *Bold:
				walk(v.Children)
			case *Italic:
				walk(v.Children)
			case *Underline:
				walk(v.Children)
			case *Mono:
				walk(v.Children)
			case *Group:
				walk(v.Children)
			case *Heading:
				walk(v.Children)
			case *Paragraph:
				walk(v.Children)
			case *Item:
				walk(v.Children)
			case *List:
				for _, it := range v.Items {
					walk(it.Children)
				}
			}
		}
	}
	walk(nodes)
	return string(out)
}
