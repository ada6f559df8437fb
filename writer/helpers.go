package writer

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zlib"

	"github.com/wudi/texkit/ir/semantic"
)

func pdfVersion(cfg Config) string {
	if cfg.Version == "" {
		return string(PDF17)
	}
	return string(cfg.Version)
}

func fileID(doc *semantic.Document, cfg Config) [2][]byte {
	seed := deterministicIDSeed(doc, cfg)
	if cfg.Deterministic {
		return [2][]byte{seed, seed}
	}
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		id = seed
	}
	idB := make([]byte, len(id))
	copy(idB, id)
	return [2][]byte{id, idB}
}

func deterministicIDSeed(doc *semantic.Document, cfg Config) []byte {
	h := sha256.New()
	h.Write([]byte(pdfVersion(cfg)))
	if doc.Info != nil {
		h.Write([]byte(doc.Info.Title))
		h.Write([]byte(doc.Info.Author))
		h.Write([]byte(doc.Info.Subject))
		h.Write([]byte(doc.Info.Creator))
		h.Write([]byte(doc.Info.Producer))
		if len(doc.Info.Keywords) > 0 {
			h.Write([]byte(strings.Join(doc.Info.Keywords, ",")))
		}
	}
	h.Write([]byte(strconv.Itoa(len(doc.Pages))))
	for _, p := range doc.Pages {
		h.Write([]byte(formatNumber(p.Width())))
		h.Write([]byte(formatNumber(p.Height())))
	}
	return h.Sum(nil)[:16]
}

// formatNumber prints a real without exponent and without trailing zeros.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// escapeString renders a PDF literal string.
func escapeString(s string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c > 0x7e {
				fmt.Fprintf(&b, "\\%03o", c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}

// textString encodes metadata text as PDFDocEncoding when ASCII, otherwise UTF-16BE with BOM.
func textString(s string) object {
	ascii := true
	for _, r := range s {
		if r > 0x7e {
			ascii = false
			break
		}
	}
	if ascii {
		return literal(s)
	}
	buf := []byte{0xFE, 0xFF}
	for _, r := range s {
		if r > 0xFFFF {
			r1, r2 := utf16Surrogates(r)
			buf = append(buf, byte(r1>>8), byte(r1), byte(r2>>8), byte(r2))
			continue
		}
		buf = append(buf, byte(r>>8), byte(r))
	}
	return hexString(buf)
}

func utf16Surrogates(r rune) (rune, rune) {
	r -= 0x10000
	return 0xD800 + (r>>10)&0x3FF, 0xDC00 + r&0x3FF
}

func pdfDate(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("D:%s%c%02d'%02d'", t.Format("20060102150405"), sign, offset/3600, (offset%3600)/60)
}

func flate(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeOperations serializes content stream operations.
func encodeOperations(ops []semantic.Operation) []byte {
	var buf bytes.Buffer
	for _, op := range ops {
		for _, operand := range op.Operands {
			switch v := operand.(type) {
			case semantic.NumberOperand:
				buf.WriteString(formatNumber(v.Value))
			case semantic.NameOperand:
				buf.WriteString("/" + v.Value)
			}
			buf.WriteByte(' ')
		}
		buf.WriteString(op.Operator)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
