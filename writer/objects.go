package writer

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// object is the subset of PDF object syntax the serializer emits.
type object interface {
	appendTo(b *bytes.Buffer)
}

type objectRef struct{ num int }

func (r objectRef) appendTo(b *bytes.Buffer) { fmt.Fprintf(b, "%d 0 R", r.num) }

type name string

func (n name) appendTo(b *bytes.Buffer) {
	b.WriteByte('/')
	b.WriteString(string(n))
}

type integer int64

func (i integer) appendTo(b *bytes.Buffer) { b.WriteString(strconv.FormatInt(int64(i), 10)) }

type realNum float64

func (r realNum) appendTo(b *bytes.Buffer) { b.WriteString(formatNumber(float64(r))) }

type boolean bool

func (v boolean) appendTo(b *bytes.Buffer) {
	if v {
		b.WriteString("true")
		return
	}
	b.WriteString("false")
}

type literal string

func (s literal) appendTo(b *bytes.Buffer) { b.WriteString(escapeString(string(s))) }

type hexString []byte

func (h hexString) appendTo(b *bytes.Buffer) { fmt.Fprintf(b, "<%X>", []byte(h)) }

type array []object

func (a array) appendTo(b *bytes.Buffer) {
	b.WriteByte('[')
	for i, it := range a {
		if i > 0 {
			b.WriteByte(' ')
		}
		it.appendTo(b)
	}
	b.WriteByte(']')
}

type dict map[string]object

func (d dict) appendTo(b *bytes.Buffer) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("<<")
	for _, k := range keys {
		b.WriteString("/" + k + " ")
		d[k].appendTo(b)
	}
	b.WriteString(">>")
}

// stream is a dictionary plus payload; Length is filled in on serialization.
type stream struct {
	dict dict
	data []byte
}

func (s stream) appendTo(b *bytes.Buffer) {
	s.dict["Length"] = integer(len(s.data))
	s.dict.appendTo(b)
	b.WriteString("\nstream\n")
	b.Write(s.data)
	b.WriteString("\nendstream")
}

func serializeObject(num int, obj object) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d 0 obj\n", num)
	obj.appendTo(&buf)
	buf.WriteString("\nendobj\n")
	return buf.Bytes()
}
