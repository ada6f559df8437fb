package builder

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/wudi/texkit/ir/semantic"
)

func TestBuilder_DrawImageSharesXObjectAcrossPages(t *testing.T) {
	b := NewBuilder()
	img := &semantic.Image{Width: 2, Height: 2, ColorSpace: "DeviceRGB", BitsPerComponent: 8, Data: make([]byte, 12)}

	b.NewPage(200, 300).DrawImage(img, 0, 10, 200, 400, ImageOptions{}).Finish()
	b.NewPage(200, 300).DrawImage(img, 0, 310, 200, 400, ImageOptions{Interpolate: true}).Finish()

	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build doc: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected two pages, got %d", len(doc.Pages))
	}
	for i, page := range doc.Pages {
		if page.Index != i {
			t.Fatalf("page %d has index %d", i, page.Index)
		}
		xobj, ok := page.Resources.XObjects["Im1"]
		if !ok {
			t.Fatalf("page %d missing shared image resource", i)
		}
		if xobj.Subtype != "Image" {
			t.Fatalf("unexpected subtype %q", xobj.Subtype)
		}
		ops := page.Contents[0].Operations
		want := []string{"q", "cm", "Do", "Q"}
		if len(ops) != len(want) {
			t.Fatalf("page %d ops = %d, want %d", i, len(ops), len(want))
		}
		for j, op := range want {
			if ops[j].Operator != op {
				t.Fatalf("op %d = %s, want %s", j, ops[j].Operator, op)
			}
		}
	}
	cm := doc.Pages[1].Contents[0].Operations[1].Operands
	if y := cm[5].(semantic.NumberOperand).Value; y != 310 {
		t.Fatalf("cm y offset = %v, want 310", y)
	}
}

func TestBuilder_DrawRectangleFill(t *testing.T) {
	b := NewBuilder()
	b.NewPage(100, 100).DrawRectangle(0, 0, 100, 100, RectOptions{FillColor: White}).Finish()
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build doc: %v", err)
	}
	ops := doc.Pages[0].Contents[0].Operations
	if ops[1].Operator != "rg" || ops[2].Operator != "re" || ops[3].Operator != "f" {
		t.Fatalf("unexpected fill ops: %+v", ops)
	}
}

func TestBuilder_BuildWithoutPages(t *testing.T) {
	if _, err := NewBuilder().Build(); !errors.Is(err, ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
}

func TestFromImage_FlattensAlphaOntoWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 0, color.NRGBA{A: 0})

	img := FromImage(src)
	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("unexpected size %dx%d", img.Width, img.Height)
	}
	if img.ColorSpace != "DeviceRGB" || img.BitsPerComponent != 8 {
		t.Fatalf("unexpected color model %s/%d", img.ColorSpace, img.BitsPerComponent)
	}
	want := []byte{255, 0, 0, 255, 255, 255}
	for i, v := range want {
		if img.Data[i] != v {
			t.Fatalf("pixel byte %d = %d, want %d", i, img.Data[i], v)
		}
	}
}
