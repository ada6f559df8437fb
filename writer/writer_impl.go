package writer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/wudi/texkit/ir/semantic"
	"github.com/wudi/texkit/observability"
)

// ErrEmptyDocument is returned when a document without pages is written.
var ErrEmptyDocument = errors.New("document has no pages")

type impl struct {
	logger observability.Logger
}

// countingWriter tracks the byte offset needed for the xref table.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}

func (w *impl) Write(ctx context.Context, doc *semantic.Document, out io.Writer, cfg Config) error {
	if doc == nil || len(doc.Pages) == 0 {
		return ErrEmptyDocument
	}
	start := time.Now()

	objects := make(map[int]object)
	objNum := 1
	next := func() int {
		n := objNum
		objNum++
		return n
	}

	catalogNum := next()
	pagesNum := next()
	infoNum := 0
	if doc.Info != nil {
		infoNum = next()
		objects[infoNum] = infoDict(doc.Info)
	}

	// Image XObjects are shared between pages by resource name.
	imageNums := make(map[string]int)
	pageNums := make([]int, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		xobjects := dict{}
		if p.Resources != nil {
			names := make([]string, 0, len(p.Resources.XObjects))
			for n := range p.Resources.XObjects {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				num, ok := imageNums[n]
				if !ok {
					num = next()
					img, err := imageStream(p.Resources.XObjects[n], cfg)
					if err != nil {
						return fmt.Errorf("encode image %s: %w", n, err)
					}
					objects[num] = img
					imageNums[n] = num
				}
				xobjects[n] = objectRef{num}
			}
		}

		var content []byte
		for _, cs := range p.Contents {
			content = append(content, encodeOperations(cs.Operations)...)
		}
		contentNum := next()
		contentStream, err := newStream(dict{}, content, cfg)
		if err != nil {
			return fmt.Errorf("encode content for page %d: %w", p.Index, err)
		}
		objects[contentNum] = contentStream

		pageNum := next()
		resources := dict{"ProcSet": array{name("PDF"), name("ImageC")}}
		if len(xobjects) > 0 {
			resources["XObject"] = xobjects
		}
		objects[pageNum] = dict{
			"Type":   name("Page"),
			"Parent": objectRef{pagesNum},
			"MediaBox": array{
				realNum(p.MediaBox.LLX), realNum(p.MediaBox.LLY),
				realNum(p.MediaBox.URX), realNum(p.MediaBox.URY),
			},
			"Resources": resources,
			"Contents":  objectRef{contentNum},
		}
		pageNums = append(pageNums, pageNum)
	}

	kids := make(array, 0, len(pageNums))
	for _, n := range pageNums {
		kids = append(kids, objectRef{n})
	}
	objects[pagesNum] = dict{
		"Type":  name("Pages"),
		"Count": integer(len(pageNums)),
		"Kids":  kids,
	}
	catalog := dict{
		"Type":  name("Catalog"),
		"Pages": objectRef{pagesNum},
	}
	if doc.Lang != "" {
		catalog["Lang"] = textString(doc.Lang)
	}
	objects[catalogNum] = catalog

	cw := &countingWriter{w: out}
	fmt.Fprintf(cw, "%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", pdfVersion(cfg))

	maxObjNum := objNum - 1
	offsets := make([]int64, maxObjNum+1)
	for num := 1; num <= maxObjNum; num++ {
		offsets[num] = cw.n
		if _, err := cw.Write(serializeObject(num, objects[num])); err != nil {
			return fmt.Errorf("write object %d: %w", num, err)
		}
	}

	xrefOffset := cw.n
	fmt.Fprintf(cw, "xref\n0 %d\n", maxObjNum+1)
	io.WriteString(cw, "0000000000 65535 f \n")
	for num := 1; num <= maxObjNum; num++ {
		fmt.Fprintf(cw, "%010d 00000 n \n", offsets[num])
	}

	ids := fileID(doc, cfg)
	trailer := dict{
		"Size": integer(maxObjNum + 1),
		"Root": objectRef{catalogNum},
		"ID":   array{hexString(ids[0]), hexString(ids[1])},
	}
	if infoNum != 0 {
		trailer["Info"] = objectRef{infoNum}
	}
	io.WriteString(cw, "trailer\n")
	cw.Write(serializeTrailer(trailer))
	fmt.Fprintf(cw, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	if cw.err != nil {
		return fmt.Errorf("write pdf: %w", cw.err)
	}

	w.logger.Debug("pdf written",
		observability.Int("pages", len(doc.Pages)),
		observability.Int("objects", maxObjNum),
		observability.Int64("bytes", cw.n),
		observability.Duration("elapsed", time.Since(start)))
	return nil
}

func serializeTrailer(d dict) []byte {
	var b bytes.Buffer
	d.appendTo(&b)
	return b.Bytes()
}

func newStream(d dict, data []byte, cfg Config) (stream, error) {
	if cfg.Compress && len(data) > 0 {
		compressed, err := flate(data, cfg.Compression)
		if err != nil {
			return stream{}, err
		}
		d["Filter"] = name("FlateDecode")
		data = compressed
	}
	return stream{dict: d, data: data}, nil
}

func imageStream(img semantic.XObject, cfg Config) (stream, error) {
	colorSpace := img.ColorSpace
	if colorSpace == "" {
		colorSpace = "DeviceRGB"
	}
	bpc := img.BitsPerComponent
	if bpc == 0 {
		bpc = 8
	}
	d := dict{
		"Type":             name("XObject"),
		"Subtype":          name("Image"),
		"Width":            integer(img.Width),
		"Height":           integer(img.Height),
		"ColorSpace":       name(colorSpace),
		"BitsPerComponent": integer(bpc),
	}
	if img.Interpolate {
		d["Interpolate"] = boolean(true)
	}
	return newStream(d, img.Data, cfg)
}

func infoDict(info *semantic.DocumentInfo) dict {
	d := dict{}
	if info.Title != "" {
		d["Title"] = textString(info.Title)
	}
	if info.Author != "" {
		d["Author"] = textString(info.Author)
	}
	if info.Subject != "" {
		d["Subject"] = textString(info.Subject)
	}
	if info.Creator != "" {
		d["Creator"] = textString(info.Creator)
	}
	if info.Producer != "" {
		d["Producer"] = textString(info.Producer)
	}
	if len(info.Keywords) > 0 {
		d["Keywords"] = textString(strings.Join(info.Keywords, ", "))
	}
	if !info.CreationDate.IsZero() {
		d["CreationDate"] = literal(pdfDate(info.CreationDate))
	}
	return d
}
