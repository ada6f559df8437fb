package fonts

import (
	"testing"

	xfont "golang.org/x/image/font"
)

func TestStyleFor(t *testing.T) {
	tests := []struct {
		bold, italic, mono bool
		want               Style
	}{
		{false, false, false, Regular},
		{true, false, false, Bold},
		{false, true, false, Italic},
		{true, true, false, BoldItalic},
		{false, true, true, Mono},
		{true, false, true, MonoBold},
	}
	for _, tt := range tests {
		if got := StyleFor(tt.bold, tt.italic, tt.mono); got != tt.want {
			t.Errorf("StyleFor(%v,%v,%v) = %s, want %s", tt.bold, tt.italic, tt.mono, got, tt.want)
		}
	}
}

func TestDefaultRegistryFacesAndMetrics(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	for _, style := range []Style{Regular, Bold, Italic, BoldItalic, Mono, MonoBold} {
		face, err := reg.NewFace(style, 20)
		if err != nil {
			t.Fatalf("%s face: %v", style, err)
		}
		if adv := xfont.MeasureString(face, "Hello"); adv <= 0 {
			t.Errorf("%s measured %v", style, adv)
		}
		face.Close()
	}
	m, err := reg.Metrics(Regular, 20)
	if err != nil {
		t.Fatal(err)
	}
	if m.Ascent <= 0 || m.Descent <= 0 || m.Height < m.Ascent {
		t.Fatalf("implausible metrics %+v", m)
	}
}

func TestRegistryFallsBackToRegular(t *testing.T) {
	base, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	r := NewRegistry()
	if _, err := r.NewFace(Bold, 10); err == nil {
		t.Fatal("expected error on empty registry")
	}
	if err := r.Register(Regular, base.data[Regular]); err != nil {
		t.Fatal(err)
	}
	face, err := r.NewFace(Bold, 10)
	if err != nil {
		t.Fatalf("fallback face: %v", err)
	}
	face.Close()
	if err := r.Register(Italic, nil); err == nil {
		t.Fatal("expected error for empty font data")
	}
}
