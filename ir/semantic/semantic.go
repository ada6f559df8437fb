package semantic

import "time"

// Document is the semantic representation of a generated PDF.
type Document struct {
	Pages []*Page
	Info  *DocumentInfo
	Lang  string
}

// Page is a single page with its resources and content operations.
type Page struct {
	Index     int
	MediaBox  Rectangle
	Resources *Resources
	Contents  []ContentStream
}

// Width returns the media box width in points.
func (p *Page) Width() float64 { return p.MediaBox.URX - p.MediaBox.LLX }

// Height returns the media box height in points.
func (p *Page) Height() float64 { return p.MediaBox.URY - p.MediaBox.LLY }

// ContentStream holds the decoded operations of one page content stream.
type ContentStream struct {
	Operations []Operation
}

// Operation is a content stream operator with its operands.
type Operation struct {
	Operator string
	Operands []Operand
}

type Operand interface {
	operand()
	Type() string
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand()     {}
func (NumberOperand) Type() string { return "number" }

type NameOperand struct{ Value string }

func (NameOperand) operand()     {}
func (NameOperand) Type() string { return "name" }

// Resources lists the named resources a page references.
type Resources struct {
	XObjects map[string]XObject
}

// XObject describes a referenced image object.
type XObject struct {
	Subtype          string // Image
	Width            int
	Height           int
	ColorSpace       string // DeviceRGB or DeviceGray
	BitsPerComponent int
	Data             []byte
	Interpolate      bool
}

// Image is an alias for XObject for image convenience APIs.
type Image = XObject

// Rectangle represents a PDF rectangle.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

type DocumentInfo struct {
	Title        string
	Author       string
	Subject      string
	Creator      string
	Producer     string
	Keywords     []string
	CreationDate time.Time
}
